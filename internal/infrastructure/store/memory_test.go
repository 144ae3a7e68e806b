package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/device-loans/internal/domain/device"
	"github.com/example/device-loans/internal/domain/item"
	"github.com/example/device-loans/internal/domain/ledger"
)

func testDevice(t *testing.T, id string, count, version int) device.Device {
	t.Helper()
	return device.Device{
		ID:          id,
		Name:        "Device " + id,
		Description: "Test device",
		Count:       count,
		Version:     version,
		UpdatedAt:   time.Now(),
	}
}

func TestMemoryDeviceStore_SaveAndGet(t *testing.T) {
	s := NewMemoryDeviceStore()
	ctx := context.Background()
	d := testDevice(t, "device-1", 5, 1)

	require.NoError(t, s.Save(ctx, d))

	got, err := s.GetByID(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, d, got)
}

func TestMemoryDeviceStore_GetByID_NotFound(t *testing.T) {
	s := NewMemoryDeviceStore()

	_, err := s.GetByID(context.Background(), "device-missing")

	assert.ErrorIs(t, err, device.ErrNotFound)
}

func TestMemoryDeviceStore_List(t *testing.T) {
	s := NewMemoryDeviceStore(
		testDevice(t, "device-1", 5, 1),
		testDevice(t, "device-2", 3, 1),
	)

	devices, err := s.List(context.Background())

	require.NoError(t, err)
	assert.Len(t, devices, 2)
}

func TestMemoryDeviceStore_Update_VersionMatch(t *testing.T) {
	s := NewMemoryDeviceStore(testDevice(t, "device-1", 5, 1))
	ctx := context.Background()

	next := testDevice(t, "device-1", 4, 2)
	require.NoError(t, s.Update(ctx, next, 1))

	got, err := s.GetByID(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Count)
	assert.Equal(t, 2, got.Version)
}

func TestMemoryDeviceStore_Update_VersionConflict(t *testing.T) {
	s := NewMemoryDeviceStore(testDevice(t, "device-1", 5, 3))
	ctx := context.Background()

	next := testDevice(t, "device-1", 4, 2)
	err := s.Update(ctx, next, 1)

	assert.ErrorIs(t, err, ErrVersionConflict)

	// Conflicting write changed nothing.
	got, err := s.GetByID(ctx, "device-1")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Count)
	assert.Equal(t, 3, got.Version)
}

func TestMemoryDeviceStore_Update_NotFound(t *testing.T) {
	s := NewMemoryDeviceStore()

	err := s.Update(context.Background(), testDevice(t, "device-1", 4, 2), 1)

	assert.ErrorIs(t, err, device.ErrNotFound)
}

func TestMemoryDeviceStore_Update_ConcurrentWritersOneWins(t *testing.T) {
	s := NewMemoryDeviceStore(testDevice(t, "device-1", 5, 1))
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var successes, conflicts int

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Update(ctx, testDevice(t, "device-1", 4, 2), 1)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case err == ErrVersionConflict:
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 9, conflicts)
}

func TestMemoryDeviceStore_Delete(t *testing.T) {
	s := NewMemoryDeviceStore(testDevice(t, "device-1", 5, 1))
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, "device-1"))

	_, err := s.GetByID(ctx, "device-1")
	assert.ErrorIs(t, err, device.ErrNotFound)
}

func TestMemoryItemStore_CRUD(t *testing.T) {
	s := NewMemoryItemStore()
	ctx := context.Background()

	it, err := item.New("item-1", "HDMI Adapter", "USB-C to HDMI adapter", item.StatusAvailable, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, it))

	got, err := s.GetByID(ctx, "item-1")
	require.NoError(t, err)
	assert.Equal(t, it, got)

	items, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, s.Delete(ctx, "item-1"))
	_, err = s.GetByID(ctx, "item-1")
	assert.ErrorIs(t, err, item.ErrNotFound)
}

func TestMemoryLedgerStore_HasAndMark(t *testing.T) {
	s := NewMemoryLedgerStore()
	ctx := context.Background()

	processed, err := s.Has(ctx, "evt-1")
	require.NoError(t, err)
	assert.False(t, processed)

	rec := ledger.Record{
		ID:          "evt-1",
		ProcessedAt: time.Now(),
		Type:        "reservation.collected",
		Subject:     "reservation-1",
	}
	require.NoError(t, s.MarkProcessed(ctx, rec))

	processed, err = s.Has(ctx, "evt-1")
	require.NoError(t, err)
	assert.True(t, processed)
}

func TestMemoryLedgerStore_DuplicateMarkFirstWriteWins(t *testing.T) {
	s := NewMemoryLedgerStore()
	ctx := context.Background()

	first := ledger.Record{ID: "evt-1", ProcessedAt: time.Now(), Type: "reservation.collected"}
	require.NoError(t, s.MarkProcessed(ctx, first))

	second := ledger.Record{ID: "evt-1", ProcessedAt: time.Now().Add(time.Hour), Type: "reservation.returned"}
	require.NoError(t, s.MarkProcessed(ctx, second))

	assert.Equal(t, first, s.records["evt-1"])
}
