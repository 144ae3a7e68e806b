package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/example/device-loans/internal/command"
	"github.com/example/device-loans/internal/config"
	"github.com/example/device-loans/internal/event"
	"github.com/example/device-loans/internal/infrastructure/kafka"
	"github.com/example/device-loans/internal/infrastructure/store"
)

type seedDevice struct {
	id          string
	name        string
	description string
	count       int
}

var seedDevices = []seedDevice{
	{"device-1001", "USB-C Cable 1m", "Standard 1 meter USB-C charging cable", 25},
	{"device-1002", "Wireless Mouse", "Bluetooth wireless mouse", 12},
	{"device-1003", "Mechanical Keyboard", "Tenkeyless mechanical keyboard", 8},
	{"device-1004", "1080p Webcam", "Full HD webcam with built-in microphone", 5},
	{"device-1005", "Portable SSD 1TB", "External 1TB solid state drive", 3},
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("[Seed] Failed to load configuration: %v", err)
	}

	log.Println("[Seed] ========================================")
	log.Println("[Seed] Device Loans - Seed Data")
	log.Println("[Seed] ========================================")
	log.Printf("[Seed] Storage: %s", cfg.Storage)

	stores, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("[Seed] Failed to open stores: %v", err)
	}
	defer stores.Close()

	handler := command.NewHandler(stores.Devices, stores.Items, nil)

	for _, sd := range seedDevices {
		count := sd.count
		_, err := handler.CreateDevice(ctx, command.CreateDevice{
			ID:          sd.id,
			Name:        sd.name,
			Description: sd.description,
			Count:       &count,
		})
		switch {
		case err == command.ErrDeviceExists:
			log.Printf("[Seed] Device %s already exists, skipping", sd.id)
		case err != nil:
			log.Fatalf("[Seed] Failed to create device %s: %v", sd.id, err)
		default:
			log.Printf("[Seed] Created device %s (%s, count=%d)", sd.id, sd.name, sd.count)
		}
	}

	items := []command.CreateInventoryItem{
		{ID: "item-2001", Name: "HDMI Adapter", Description: "USB-C to HDMI adapter"},
		{ID: "item-2002", Name: "Laptop Stand", Description: "Adjustable aluminium laptop stand"},
		{ID: "item-2003", Name: "Conference Speaker", Description: "Portable USB conference speaker", Status: "reserved"},
	}
	for _, cmd := range items {
		if _, err := handler.CreateInventoryItem(ctx, cmd); err != nil {
			log.Printf("[Seed] Failed to create item %s: %v", cmd.ID, err)
			continue
		}
		log.Printf("[Seed] Created item %s (%s)", cmd.ID, cmd.Name)
	}

	if os.Getenv("PUBLISH_SAMPLE_EVENTS") == "true" {
		publishSampleEvents(ctx, cfg)
	}

	log.Println("[Seed] Done")
}

// publishSampleEvents pushes a small reservation lifecycle onto the
// events topic so a running reconciler has something to chew on.
func publishSampleEvents(ctx context.Context, cfg *config.Config) {
	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
	defer producer.Close()

	reservationID := "reservation-" + uuid.New().String()
	now := time.Now().UTC().Format(time.RFC3339)

	envelopes := []event.Envelope{
		{
			ID:      uuid.New().String(),
			Type:    event.TypeReservationCreated,
			Subject: reservationID,
			Time:    now,
			Data: event.ReservationData{
				ReservationID: reservationID,
				DeviceModelID: "device-1002",
				NewStatus:     "created",
				OccurredAt:    now,
			},
		},
		{
			ID:      uuid.New().String(),
			Type:    event.TypeReservationCollected,
			Subject: reservationID,
			Time:    now,
			Data: event.ReservationData{
				ReservationID: reservationID,
				DeviceModelID: "device-1002",
				NewStatus:     "collected",
				OccurredAt:    now,
			},
		},
	}

	if err := producer.Publish(ctx, reservationID, envelopes); err != nil {
		log.Printf("[Seed] Failed to publish sample events: %v", err)
		return
	}
	log.Printf("[Seed] Published %d sample events for %s", len(envelopes), reservationID)
}
