package command

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/device-loans/internal/domain/device"
	"github.com/example/device-loans/internal/domain/item"
	"github.com/example/device-loans/internal/infrastructure/store"
)

var ErrDeviceExists = errors.New("device already exists")

// Change notification event types published after successful writes.
const (
	EventDeviceCreated       = "device.created"
	EventDeviceUpdated       = "device.updated"
	EventDeviceDeleted       = "device.deleted"
	EventDeviceCountAdjusted = "device.count_adjusted"
	EventItemCreated         = "inventory_item.created"
)

// DeviceChange is the notification published to the changes topic.
type DeviceChange struct {
	Type   string        `json:"type"`
	Device device.Device `json:"device"`
	At     time.Time     `json:"at"`
}

// ItemChange is the inventory-item counterpart of DeviceChange.
type ItemChange struct {
	Type string             `json:"type"`
	Item item.InventoryItem `json:"item"`
	At   time.Time          `json:"at"`
}

// Notifier publishes change notifications. *kafka.Producer satisfies it.
type Notifier interface {
	Publish(ctx context.Context, key string, event any) error
}

// Handler executes the write-side use cases against the injected
// stores. It owns no state of its own.
type Handler struct {
	devices  store.DeviceStore
	items    store.ItemStore
	notifier Notifier // nil disables change notifications

	now   func() time.Time
	newID func(prefix string) string
}

func NewHandler(devices store.DeviceStore, items store.ItemStore, notifier Notifier) *Handler {
	return &Handler{
		devices:  devices,
		items:    items,
		notifier: notifier,
		now:      time.Now,
		newID: func(prefix string) string {
			return fmt.Sprintf("%s-%s", prefix, uuid.New().String())
		},
	}
}

func (h *Handler) CreateDevice(ctx context.Context, cmd CreateDevice) (device.Device, error) {
	id := cmd.ID
	if id == "" {
		id = h.newID("device")
	} else {
		if _, err := h.devices.GetByID(ctx, id); err == nil {
			return device.Device{}, ErrDeviceExists
		} else if !errors.Is(err, device.ErrNotFound) {
			return device.Device{}, err
		}
	}

	count := 1
	if cmd.Count != nil {
		count = *cmd.Count
	}

	d, err := device.New(id, cmd.Name, cmd.Description, count, h.now())
	if err != nil {
		return device.Device{}, err
	}

	if err := h.devices.Save(ctx, d); err != nil {
		return device.Device{}, err
	}

	h.notifyDevice(ctx, EventDeviceCreated, d)
	return d, nil
}

func (h *Handler) UpdateDevice(ctx context.Context, cmd UpdateDevice) (device.Device, error) {
	cur, err := h.devices.GetByID(ctx, cmd.ID)
	if err != nil {
		return device.Device{}, err
	}

	next := cur
	if cmd.Name != nil {
		next.Name = *cmd.Name
	}
	if cmd.Description != nil {
		next.Description = *cmd.Description
	}
	if cmd.Count != nil {
		next.Count = *cmd.Count
	}
	next.UpdatedAt = h.now()
	next.Version = cur.Version + 1

	if err := next.Validate(); err != nil {
		return device.Device{}, err
	}

	if err := h.devices.Update(ctx, next, cur.Version); err != nil {
		return device.Device{}, err
	}

	h.notifyDevice(ctx, EventDeviceUpdated, next)
	return next, nil
}

func (h *Handler) DeleteDevice(ctx context.Context, cmd DeleteDevice) error {
	d, err := h.devices.GetByID(ctx, cmd.ID)
	if err != nil {
		return err
	}

	if err := h.devices.Delete(ctx, cmd.ID); err != nil {
		return err
	}

	h.notifyDevice(ctx, EventDeviceDeleted, d)
	return nil
}

func (h *Handler) CreateInventoryItem(ctx context.Context, cmd CreateInventoryItem) (item.InventoryItem, error) {
	id := cmd.ID
	if id == "" {
		id = h.newID("item")
	}

	status := item.StatusAvailable
	if cmd.Status != "" {
		status = item.Status(cmd.Status)
	}

	it, err := item.New(id, cmd.Name, cmd.Description, status, h.now())
	if err != nil {
		return item.InventoryItem{}, err
	}

	if err := h.items.Save(ctx, it); err != nil {
		return item.InventoryItem{}, err
	}

	if h.notifier != nil {
		change := ItemChange{Type: EventItemCreated, Item: it, At: it.UpdatedAt}
		if err := h.notifier.Publish(ctx, it.ID, change); err != nil {
			log.Printf("[Command] Failed to publish %s for %s: %v", EventItemCreated, it.ID, err)
		}
	}
	return it, nil
}

// notifyDevice publishes a change notification. Notifications are
// best-effort: a publish failure never rolls back the store write.
func (h *Handler) notifyDevice(ctx context.Context, eventType string, d device.Device) {
	if h.notifier == nil {
		return
	}
	change := DeviceChange{Type: eventType, Device: d, At: h.now()}
	if err := h.notifier.Publish(ctx, d.ID, change); err != nil {
		log.Printf("[Command] Failed to publish %s for %s: %v", eventType, d.ID, err)
	}
}
