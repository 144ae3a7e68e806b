package reconcile

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/device-loans/internal/domain/device"
	"github.com/example/device-loans/internal/domain/ledger"
	"github.com/example/device-loans/internal/event"
	"github.com/example/device-loans/internal/infrastructure/store"
)

// DeltaApplier mutates a device's available count. *command.Handler
// implements it.
type DeltaApplier interface {
	ApplyCountDelta(ctx context.Context, deviceID string, delta int) (device.Device, error)
}

// Reconciler consumes reservation lifecycle events and keeps device
// availability counts in sync. It owns no persistent state; the ledger
// absorbs duplicate deliveries and the applier enforces the
// non-negativity invariant.
type Reconciler struct {
	applier DeltaApplier
	ledger  store.LedgerStore
	metrics *Metrics
	now     func() time.Time
}

// NewReconciler wires a reconciler. metrics may be nil.
func NewReconciler(applier DeltaApplier, ledgerStore store.LedgerStore, metrics *Metrics) *Reconciler {
	return &Reconciler{
		applier: applier,
		ledger:  ledgerStore,
		metrics: metrics,
		now:     time.Now,
	}
}

// HandleMessage adapts one transport delivery (a JSON array or a single
// JSON object) into a batch. An undecodable payload is dropped: there
// is nothing to assert about it and redelivery would fail identically.
func (r *Reconciler) HandleMessage(ctx context.Context, key, value []byte) error {
	envs, err := event.Decode(value)
	if err != nil {
		log.Printf("[Reconciler] Dropping undecodable delivery (key=%s): %v", key, err)
		r.metrics.EventSkipped(SkipMalformed)
		return nil
	}
	return r.HandleBatch(ctx, envs)
}

// HandleBatch processes envelopes strictly in delivery order. Skips
// (malformed, irrelevant, already processed) are resolved locally and
// never surface. The first real failure aborts the batch with an error
// so the transport redelivers the unprocessed remainder; events marked
// before the failure are absorbed by the ledger on redelivery.
func (r *Reconciler) HandleBatch(ctx context.Context, envs []event.Envelope) error {
	if len(envs) == 0 {
		log.Printf("[Reconciler] Received no events")
		return nil
	}

	for _, env := range envs {
		if env.ID == "" || env.Type == "" {
			log.Printf("[Reconciler] Skipping malformed event (id=%q, type=%q)", env.ID, env.Type)
			r.metrics.EventSkipped(SkipMalformed)
			continue
		}

		delta, relevant := event.CountDeltas[env.Type]
		if !relevant {
			log.Printf("[Reconciler] Ignoring unrelated event type %s (id=%s)", env.Type, env.ID)
			r.metrics.EventSkipped(SkipIrrelevant)
			continue
		}

		processed, err := r.ledger.Has(ctx, env.ID)
		if err != nil {
			r.metrics.BatchFailed()
			return fmt.Errorf("ledger check for event %s: %w", env.ID, err)
		}
		if processed {
			log.Printf("[Reconciler] Skipping already-processed event %s", env.ID)
			r.metrics.EventSkipped(SkipDuplicate)
			continue
		}

		data := env.Data
		if data.DeviceModelID == "" || data.ReservationID == "" || data.NewStatus == "" {
			log.Printf("[Reconciler] Skipping event %s with missing data fields (subject=%q)", env.ID, env.Subject)
			r.metrics.EventSkipped(SkipMalformed)
			continue
		}

		log.Printf("[Reconciler] Applying delta %d for event %s (reservation=%s, device=%s, status=%s)",
			delta, env.ID, data.ReservationID, data.DeviceModelID, data.NewStatus)

		d, err := r.applier.ApplyCountDelta(ctx, data.DeviceModelID, delta)
		if err != nil {
			// Surfaces to the transport, whose redelivery is the only
			// retry mechanism this consumer has.
			r.metrics.BatchFailed()
			return fmt.Errorf("apply delta %d for event %s (device %s): %w",
				delta, env.ID, data.DeviceModelID, err)
		}

		rec := ledger.Record{
			ID:          env.ID,
			ProcessedAt: r.now(),
			Type:        env.Type,
			Subject:     env.Subject,
		}
		if err := r.ledger.MarkProcessed(ctx, rec); err != nil {
			// The device write already landed. Failing here means
			// redelivery reapplies the delta; availability over strict
			// exactly-once.
			r.metrics.BatchFailed()
			return fmt.Errorf("mark event %s processed: %w", env.ID, err)
		}

		r.metrics.EventProcessed(env.Type)
		log.Printf("[Reconciler] Event %s processed, device %s count now %d", env.ID, d.ID, d.Count)
	}

	return nil
}
