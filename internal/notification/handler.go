package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/device-loans/internal/command"
	"github.com/example/device-loans/internal/email"
)

// Handler watches device change notifications and alerts operations
// when a model's availability falls to the threshold. Alert failures
// are logged, never retried: the changes stream is advisory.
type Handler struct {
	emailService *email.Service
	alertTo      string
	threshold    int
}

func NewHandler(emailSvc *email.Service, alertTo string, threshold int) *Handler {
	return &Handler{
		emailService: emailSvc,
		alertTo:      alertTo,
		threshold:    threshold,
	}
}

// HandleEvent processes one change notification from Kafka.
func (h *Handler) HandleEvent(ctx context.Context, key, value []byte) error {
	var change command.DeviceChange
	if err := json.Unmarshal(value, &change); err != nil {
		log.Printf("[Notifier] Failed to unmarshal change notification: %v", err)
		return nil
	}

	if change.Type != command.EventDeviceCountAdjusted {
		return nil
	}
	if change.Device.Count > h.threshold {
		return nil
	}

	log.Printf("[Notifier] Device %s down to %d available, alerting %s",
		change.Device.ID, change.Device.Count, h.alertTo)

	if err := h.emailService.SendStockAlert(h.alertTo, change.Device.ID, change.Device.Name, change.Device.Count); err != nil {
		log.Printf("[Notifier] Failed to send stock alert for %s: %v", change.Device.ID, err)
	}
	return nil
}
