package store

import (
	"context"
	"sync"

	"github.com/example/device-loans/internal/domain/device"
	"github.com/example/device-loans/internal/domain/item"
	"github.com/example/device-loans/internal/domain/ledger"
)

// MemoryDeviceStore is an in-memory DeviceStore for tests and local dev.
// Not durable; safe for concurrent use within one process.
type MemoryDeviceStore struct {
	mu      sync.RWMutex
	devices map[string]device.Device
}

func NewMemoryDeviceStore(initial ...device.Device) *MemoryDeviceStore {
	s := &MemoryDeviceStore{devices: make(map[string]device.Device)}
	for _, d := range initial {
		s.devices[d.ID] = d
	}
	return s
}

func (s *MemoryDeviceStore) GetByID(_ context.Context, id string) (device.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.devices[id]
	if !ok {
		return device.Device{}, device.ErrNotFound
	}
	return d, nil
}

func (s *MemoryDeviceStore) List(_ context.Context) ([]device.Device, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]device.Device, 0, len(s.devices))
	for _, d := range s.devices {
		out = append(out, d)
	}
	return out, nil
}

func (s *MemoryDeviceStore) Save(_ context.Context, d device.Device) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.devices[d.ID] = d
	return nil
}

func (s *MemoryDeviceStore) Update(_ context.Context, d device.Device, expectedVersion int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.devices[d.ID]
	if !ok {
		return device.ErrNotFound
	}
	if cur.Version != expectedVersion {
		return ErrVersionConflict
	}
	s.devices[d.ID] = d
	return nil
}

func (s *MemoryDeviceStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.devices, id)
	return nil
}

// MemoryItemStore is an in-memory ItemStore for tests and local dev.
type MemoryItemStore struct {
	mu    sync.RWMutex
	items map[string]item.InventoryItem
}

func NewMemoryItemStore(initial ...item.InventoryItem) *MemoryItemStore {
	s := &MemoryItemStore{items: make(map[string]item.InventoryItem)}
	for _, it := range initial {
		s.items[it.ID] = it
	}
	return s
}

func (s *MemoryItemStore) GetByID(_ context.Context, id string) (item.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return item.InventoryItem{}, item.ErrNotFound
	}
	return it, nil
}

func (s *MemoryItemStore) List(_ context.Context) ([]item.InventoryItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]item.InventoryItem, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	return out, nil
}

func (s *MemoryItemStore) Save(_ context.Context, it item.InventoryItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[it.ID] = it
	return nil
}

func (s *MemoryItemStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, id)
	return nil
}

// MemoryLedgerStore is an in-memory LedgerStore for tests and local dev.
type MemoryLedgerStore struct {
	mu      sync.RWMutex
	records map[string]ledger.Record
}

func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{records: make(map[string]ledger.Record)}
}

func (s *MemoryLedgerStore) Has(_ context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.records[eventID]
	return ok, nil
}

func (s *MemoryLedgerStore) MarkProcessed(_ context.Context, rec ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// First write wins; a duplicate mark is absorbed silently.
	if _, ok := s.records[rec.ID]; ok {
		return nil
	}
	s.records[rec.ID] = rec
	return nil
}
