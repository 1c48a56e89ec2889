package cache

import (
	"context"
	"time"

	"github.com/hourglass-dev/timetube/internal/domain/model"
)

// SlotCache defines the interface for the hot read cache in front of the
// durable slot store. Implementations handle serialization transparently.
type SlotCache interface {
	// Get retrieves a slot by its "HH:MM" key.
	// Returns nil, nil if the slot is not cached (cache miss).
	Get(ctx context.Context, slotTime string) (*model.TimeSlot, error)

	// Set stores a slot with the specified TTL.
	Set(ctx context.Context, slot *model.TimeSlot, ttl time.Duration) error

	// Delete removes a slot from the cache.
	// Returns nil if the slot was not cached.
	Delete(ctx context.Context, slotTime string) error
}
