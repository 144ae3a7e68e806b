package item

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("inventory item not found")

// Status tracks where an individual inventory item currently is.
type Status string

const (
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
	StatusLoaned    Status = "loaned"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusLoaned:
		return true
	}
	return false
}

// ValidationError reports which field of an item failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid inventory item %s: %s", e.Field, e.Message)
}

// InventoryItem is a single trackable unit, as opposed to a Device
// which models an interchangeable pool.
type InventoryItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// New validates the fields and returns an InventoryItem.
func New(id, name, description string, status Status, updatedAt time.Time) (InventoryItem, error) {
	it := InventoryItem{
		ID:          id,
		Name:        name,
		Description: description,
		Status:      status,
		UpdatedAt:   updatedAt,
	}
	if err := it.Validate(); err != nil {
		return InventoryItem{}, err
	}
	return it, nil
}

// Validate checks the invariants every persisted item must hold.
func (it InventoryItem) Validate() error {
	if strings.TrimSpace(it.ID) == "" {
		return &ValidationError{Field: "id", Message: "must be a non-empty string"}
	}
	if strings.TrimSpace(it.Name) == "" {
		return &ValidationError{Field: "name", Message: "must be a non-empty string"}
	}
	if strings.TrimSpace(it.Description) == "" {
		return &ValidationError{Field: "description", Message: "must be a non-empty string"}
	}
	if !it.Status.Valid() {
		return &ValidationError{Field: "status", Message: "must be one of: available, reserved, loaned"}
	}
	if it.UpdatedAt.IsZero() {
		return &ValidationError{Field: "updatedAt", Message: "must be a valid timestamp"}
	}
	return nil
}
