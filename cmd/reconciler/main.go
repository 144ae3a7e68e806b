package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/device-loans/internal/command"
	"github.com/example/device-loans/internal/config"
	"github.com/example/device-loans/internal/infrastructure/kafka"
	"github.com/example/device-loans/internal/infrastructure/store"
	"github.com/example/device-loans/internal/reconcile"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("[Reconciler] Failed to load configuration: %v", err)
	}

	log.Println("[Reconciler] ========================================")
	log.Println("[Reconciler] Device Loans - Availability Reconciler")
	log.Println("[Reconciler] ========================================")
	log.Printf("[Reconciler] Kafka: %v", cfg.Kafka.Brokers)
	log.Printf("[Reconciler] Topic: %s", cfg.Kafka.EventsTopic)
	log.Printf("[Reconciler] Group: %s", cfg.Kafka.ConsumerGroup)
	log.Printf("[Reconciler] Storage: %s", cfg.Storage)

	stores, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("[Reconciler] Failed to open stores: %v", err)
	}
	defer stores.Close()

	var notifier command.Notifier
	if cfg.Kafka.ChangesTopic != "" {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ChangesTopic)
		defer producer.Close()
		notifier = producer
	}

	cmdHandler := command.NewHandler(stores.Devices, stores.Items, notifier)

	registry := prometheus.NewRegistry()
	metrics := reconcile.NewMetrics(registry)
	reconciler := reconcile.NewReconciler(cmdHandler, stores.Ledger, metrics)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	go func() {
		log.Printf("[Reconciler] Metrics on %s/metrics", cfg.MetricsAddr)
		if err := http.ListenAndServe(cfg.MetricsAddr, metricsMux); err != nil {
			log.Printf("[Reconciler] Metrics server error: %v", err)
		}
	}()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic, cfg.Kafka.ConsumerGroup)
	defer consumer.Close()

	go func() {
		log.Println("[Reconciler] Starting event consumer...")
		if err := consumer.Consume(ctx, reconciler.HandleMessage); err != nil {
			if ctx.Err() == nil {
				log.Printf("[Reconciler] Consumer error: %v", err)
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Reconciler] Shutting down...")
	cancel()
}
