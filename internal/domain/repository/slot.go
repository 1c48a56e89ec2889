package repository

import (
	"context"

	"github.com/hourglass-dev/timetube/internal/domain/model"
)

// SlotRepository defines the persistence contract for the slot cache.
// Implementations should be provided by the infrastructure layer (e.g., PostgreSQL).
//
// Capacity is not enforced here: callers upsert first and then evict in a
// loop until Count is back under their configured cap, so the store may be
// transiently over capacity between the two calls.
type SlotRepository interface {
	// Get retrieves the slot for a canonical "HH:MM" key.
	// Returns ErrSlotNotFound if no slot exists for that minute.
	Get(ctx context.Context, slotTime string) (*model.TimeSlot, error)

	// Upsert inserts or replaces the slot keyed by slot.Time.
	// On replace the stored CreatedAt is preserved and UpdatedAt is
	// refreshed; the write is durable before Upsert returns.
	Upsert(ctx context.Context, slot *model.TimeSlot) error

	// Count returns the total number of stored slots.
	Count(ctx context.Context) (int, error)

	// EvictOldest removes exactly one slot with the minimum CreatedAt,
	// breaking ties by key order. No-op when the store is empty.
	EvictOldest(ctx context.Context) error

	// Range returns slots whose time lies in the closed interval
	// [start, end], wrap-aware: when start > end the interval wraps past
	// midnight (time >= start OR time <= end) and results are ordered
	// from start onward; otherwise results ascend by time. Capped at limit.
	Range(ctx context.Context, start, end string, limit int) ([]*model.TimeSlot, error)

	// List returns slots ascending by time, paginated by limit and offset.
	List(ctx context.Context, limit, offset int) ([]*model.TimeSlot, error)
}
