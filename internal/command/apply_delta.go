package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/device-loans/internal/domain/device"
	"github.com/example/device-loans/internal/infrastructure/store"
)

// maxDeltaAttempts bounds the read-modify-write retry when a concurrent
// writer bumps the device version between our read and write.
const maxDeltaAttempts = 5

// ApplyCountDelta adjusts a device's available count by delta,
// rejecting any change that would take the count below zero. The count
// the rest of the batch observes includes this write, so callers must
// apply deltas for one batch sequentially.
func (h *Handler) ApplyCountDelta(ctx context.Context, deviceID string, delta int) (device.Device, error) {
	var lastErr error
	for attempt := 0; attempt < maxDeltaAttempts; attempt++ {
		cur, err := h.devices.GetByID(ctx, deviceID)
		if err != nil {
			return device.Device{}, err
		}

		candidate := cur.Count + delta
		if candidate < 0 {
			return device.Device{}, fmt.Errorf(
				"cannot apply delta %d to device %q: count would become %d: %w",
				delta, deviceID, candidate, device.ErrNegativeCount)
		}

		next := cur
		next.Count = candidate
		next.UpdatedAt = h.now()
		next.Version = cur.Version + 1

		err = h.devices.Update(ctx, next, cur.Version)
		if err == nil {
			h.notifyDevice(ctx, EventDeviceCountAdjusted, next)
			return next, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return device.Device{}, err
		}
		// Lost the race; re-read and recompute from the fresh count.
		lastErr = err
	}

	return device.Device{}, fmt.Errorf(
		"apply delta %d to device %q: gave up after %d attempts: %w",
		delta, deviceID, maxDeltaAttempts, lastErr)
}
