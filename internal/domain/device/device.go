package device

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("device not found")
	ErrNegativeCount = errors.New("device count would go negative")
)

// ValidationError reports which field of a device failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid device %s: %s", e.Field, e.Message)
}

// Device is one device model in the shared lending pool.
// Count is the number of units currently available for collection.
// Version increments on every write and backs conditional updates.
type Device struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Count       int       `json:"count"`
	Version     int       `json:"version"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// New validates the fields and returns a Device with version 1.
func New(id, name, description string, count int, updatedAt time.Time) (Device, error) {
	d := Device{
		ID:          id,
		Name:        name,
		Description: description,
		Count:       count,
		Version:     1,
		UpdatedAt:   updatedAt,
	}
	if err := d.Validate(); err != nil {
		return Device{}, err
	}
	return d, nil
}

// Validate checks the invariants every persisted device must hold.
func (d Device) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return &ValidationError{Field: "id", Message: "must be a non-empty string"}
	}
	if strings.TrimSpace(d.Name) == "" {
		return &ValidationError{Field: "name", Message: "must be a non-empty string"}
	}
	if strings.TrimSpace(d.Description) == "" {
		return &ValidationError{Field: "description", Message: "must be a non-empty string"}
	}
	if d.Count < 0 {
		return &ValidationError{Field: "count", Message: "must be greater than or equal to 0"}
	}
	if d.UpdatedAt.IsZero() {
		return &ValidationError{Field: "updatedAt", Message: "must be a valid timestamp"}
	}
	return nil
}
