package event

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Reservation lifecycle event types delivered by the reservation service.
// Only collected/returned adjust availability; the rest are recognized so
// consumers can log them, but carry no side effects here.
const (
	TypeReservationCreated   = "reservation.created"
	TypeReservationCollected = "reservation.collected"
	TypeReservationReturned  = "reservation.returned"
	TypeReservationCancelled = "reservation.cancelled"
)

// CountDeltas maps an event type to the availability delta it implies:
// a collected device leaves the pool, a returned device re-enters it.
// Event types absent from this table are ignored by the reconciler.
// Future lifecycle transitions become new entries, not new conditionals.
var CountDeltas = map[string]int{
	TypeReservationCollected: -1,
	TypeReservationReturned:  +1,
}

// ReservationData is the payload of a reservation lifecycle envelope.
// NewStatus duplicates what the type already says and is used for
// logging only; ReservationID is carried through for audit.
type ReservationData struct {
	ReservationID string `json:"reservationId"`
	DeviceModelID string `json:"deviceModelId"`
	NewStatus     string `json:"newStatus"`
	OccurredAt    string `json:"occurredAt,omitempty"`
}

// Envelope is one event message as delivered by the transport.
// ID is the producer-assigned idempotency key.
type Envelope struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Subject string          `json:"subject,omitempty"`
	Time    string          `json:"time,omitempty"`
	Data    ReservationData `json:"data"`
}

// Decode parses a delivery payload, which may be either a JSON array of
// envelopes or a single JSON object.
func Decode(payload []byte) ([]Envelope, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty event payload")
	}

	if trimmed[0] == '[' {
		var envs []Envelope
		if err := json.Unmarshal(trimmed, &envs); err != nil {
			return nil, fmt.Errorf("decode event batch: %w", err)
		}
		return envs, nil
	}

	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return []Envelope{env}, nil
}
