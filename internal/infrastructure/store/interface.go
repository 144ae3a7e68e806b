package store

import (
	"context"
	"errors"

	"github.com/example/device-loans/internal/domain/device"
	"github.com/example/device-loans/internal/domain/item"
	"github.com/example/device-loans/internal/domain/ledger"
)

// ErrVersionConflict is returned by conditional updates when another
// writer changed the record between the caller's read and write.
var ErrVersionConflict = errors.New("version conflict")

// DeviceStore persists device pool records.
type DeviceStore interface {
	// GetByID fetches a device. Returns device.ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (device.Device, error)

	// List returns all devices.
	List(ctx context.Context) ([]device.Device, error)

	// Save upserts a device unconditionally. Used on the create path.
	Save(ctx context.Context, d device.Device) error

	// Update writes d only if the stored version still equals
	// expectedVersion. Returns ErrVersionConflict when a concurrent
	// writer got there first, device.ErrNotFound if the record is gone.
	Update(ctx context.Context, d device.Device, expectedVersion int) error

	// Delete removes a device. No-op if it does not exist.
	Delete(ctx context.Context, id string) error
}

// ItemStore persists individual inventory items.
type ItemStore interface {
	GetByID(ctx context.Context, id string) (item.InventoryItem, error)
	List(ctx context.Context) ([]item.InventoryItem, error)
	Save(ctx context.Context, it item.InventoryItem) error
	Delete(ctx context.Context, id string) error
}

// LedgerStore is the idempotency ledger for consumed events.
type LedgerStore interface {
	// Has reports whether eventID already has a processed record.
	Has(ctx context.Context, eventID string) (bool, error)

	// MarkProcessed durably records that rec.ID has been applied.
	// Marking the same id twice is a no-op, not an error.
	MarkProcessed(ctx context.Context, rec ledger.Record) error
}
