package query

import (
	"context"

	"github.com/example/device-loans/internal/domain/device"
	"github.com/example/device-loans/internal/domain/item"
	"github.com/example/device-loans/internal/infrastructure/store"
)

// Handler serves the read side: thin pass-throughs to the stores.
type Handler struct {
	devices store.DeviceStore
	items   store.ItemStore
}

func NewHandler(devices store.DeviceStore, items store.ItemStore) *Handler {
	return &Handler{devices: devices, items: items}
}

func (h *Handler) GetDevice(ctx context.Context, id string) (device.Device, error) {
	return h.devices.GetByID(ctx, id)
}

func (h *Handler) ListDevices(ctx context.Context) ([]device.Device, error) {
	return h.devices.List(ctx)
}

func (h *Handler) GetInventoryItem(ctx context.Context, id string) (item.InventoryItem, error) {
	return h.items.GetByID(ctx, id)
}

func (h *Handler) ListInventoryItems(ctx context.Context) ([]item.InventoryItem, error) {
	return h.items.List(ctx)
}
