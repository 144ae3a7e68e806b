package ledger

import "time"

// Record marks one event id as fully applied. Its presence means
// "do not reapply this event". Records are written exactly once,
// after the device mutation for the event has been persisted, and
// are never updated or deleted.
type Record struct {
	ID          string    `json:"id"`
	ProcessedAt time.Time `json:"processedAt"`
	Type        string    `json:"type,omitempty"`
	Subject     string    `json:"subject,omitempty"`
}
