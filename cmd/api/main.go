package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/device-loans/internal/api"
	"github.com/example/device-loans/internal/auth"
	"github.com/example/device-loans/internal/command"
	"github.com/example/device-loans/internal/config"
	"github.com/example/device-loans/internal/infrastructure/kafka"
	"github.com/example/device-loans/internal/infrastructure/store"
	"github.com/example/device-loans/internal/query"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("[API] Failed to load configuration: %v", err)
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("[API] JWT_SECRET is required")
	}
	if len(cfg.Auth.JWTSecret) < 32 {
		log.Fatal("[API] JWT_SECRET must be at least 32 characters long")
	}

	log.Println("[API] ========================================")
	log.Println("[API] Device Loans - API")
	log.Println("[API] ========================================")
	log.Printf("[API] Storage: %s", cfg.Storage)
	log.Printf("[API] Listen:  %s", cfg.HTTPAddr)

	stores, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("[API] Failed to open stores: %v", err)
	}
	defer stores.Close()

	// Change notifications are optional; with no changes topic the API
	// simply runs without them.
	var notifier command.Notifier
	if cfg.Kafka.ChangesTopic != "" && len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.ChangesTopic)
		defer producer.Close()
		notifier = producer
		log.Printf("[API] Publishing change notifications to %s", cfg.Kafka.ChangesTopic)
	}

	cmdHandler := command.NewHandler(stores.Devices, stores.Items, notifier)
	queryHandler := query.NewHandler(stores.Devices, stores.Items)
	jwtService := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenExpiry)

	router := api.NewRouter(api.RouterConfig{
		Handlers:     api.NewHandlers(cmdHandler, queryHandler),
		AuthHandlers: api.NewAuthHandlers(jwtService, cfg.Auth.Clients),
		JWTService:   jwtService,
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		log.Printf("[API] Server started on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("[API] Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[API] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)
}
