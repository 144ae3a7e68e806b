package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/example/device-loans/internal/config"
	"github.com/example/device-loans/internal/email"
	"github.com/example/device-loans/internal/infrastructure/kafka"
	"github.com/example/device-loans/internal/notification"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("[Notifier] Failed to load configuration: %v", err)
	}

	smtpHost := getEnv("SMTP_HOST", "localhost")
	smtpPort := getEnv("SMTP_PORT", "1025")
	emailFrom := getEnv("EMAIL_FROM", "noreply@device-loans.local")
	alertTo := getEnv("ALERT_TO", "ops@device-loans.local")
	threshold, err := strconv.Atoi(getEnv("ALERT_THRESHOLD", "0"))
	if err != nil {
		log.Fatalf("[Notifier] Invalid ALERT_THRESHOLD: %v", err)
	}

	log.Println("[Notifier] ========================================")
	log.Println("[Notifier] Device Loans - Stock Alert Notifier")
	log.Println("[Notifier] ========================================")
	log.Printf("[Notifier] Kafka: %v", cfg.Kafka.Brokers)
	log.Printf("[Notifier] Topic: %s", cfg.Kafka.ChangesTopic)
	log.Printf("[Notifier] Alerting %s at threshold %d", alertTo, threshold)

	emailSvc := email.NewService(smtpHost, smtpPort, emailFrom)
	handler := notification.NewHandler(emailSvc, alertTo, threshold)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.ChangesTopic, "stock-notifier")
	defer consumer.Close()

	go func() {
		log.Println("[Notifier] Starting change consumer...")
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil {
			if ctx.Err() == nil {
				log.Printf("[Notifier] Consumer error: %v", err)
			}
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[Notifier] Shutting down...")
	cancel()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
