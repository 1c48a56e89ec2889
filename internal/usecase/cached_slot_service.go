package usecase

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hourglass-dev/timetube/internal/domain/model"
	"github.com/hourglass-dev/timetube/internal/domain/repository"
	"github.com/hourglass-dev/timetube/internal/infrastructure/cache"
	"github.com/hourglass-dev/timetube/internal/infrastructure/metrics"
)

// CachedSlotServiceConfig holds configuration for CachedSlotService.
type CachedSlotServiceConfig struct {
	// CacheTTL is the TTL for hot-cached slots. It should be much shorter
	// than the store freshness window so a slot going stale is re-resolved
	// promptly instead of being served hot until the TTL runs out.
	CacheTTL time.Duration
}

// DefaultCachedSlotServiceConfig returns the default configuration.
func DefaultCachedSlotServiceConfig() CachedSlotServiceConfig {
	return CachedSlotServiceConfig{
		CacheTTL: 5 * time.Minute,
	}
}

// cachedSlotService wraps SlotService with a hot read cache.
// It implements the decorator pattern to add caching without modifying the
// underlying resolution pipeline.
type cachedSlotService struct {
	delegate SlotService
	cache    cache.SlotCache
	sfGroup  singleflight.Group

	cacheTTL time.Duration
}

// NewCachedSlotService creates a new CachedSlotService wrapping the provided SlotService.
func NewCachedSlotService(
	delegate SlotService,
	slotCache cache.SlotCache,
	cfg CachedSlotServiceConfig,
) SlotService {
	return &cachedSlotService{
		delegate: delegate,
		cache:    slotCache,
		cacheTTL: cfg.CacheTTL,
	}
}

// Resolve retrieves a slot with caching.
// Uses singleflight to prevent a stampede of identical searches when
// concurrent requests arrive for the same uncached minute.
func (s *cachedSlotService) Resolve(ctx context.Context, input ResolveInput) (*model.TimeSlot, error) {
	// Canonicalize up front so "9:05" and "09:05" share one cache key
	// and one singleflight group.
	minuteOfDay, err := model.ToMinutes(input.Time)
	if err != nil {
		return nil, err
	}
	input.Time = model.FromMinutes(minuteOfDay)

	if input.SkipCache {
		// Bypass requests force a re-resolution; refresh the hot cache
		// with the outcome so subsequent reads see the new slot.
		slot, err := s.delegate.Resolve(ctx, input)
		if err != nil {
			return nil, err
		}
		s.store(ctx, slot)
		return slot, nil
	}

	result, err, shared := s.sfGroup.Do(input.Time, func() (any, error) {
		return s.resolveWithCache(ctx, input)
	})

	if shared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	if err != nil {
		return nil, err
	}
	return result.(*model.TimeSlot), nil
}

// resolveWithCache implements the cache-aside pattern.
func (s *cachedSlotService) resolveWithCache(ctx context.Context, input ResolveInput) (*model.TimeSlot, error) {
	slot, err := s.cache.Get(ctx, input.Time)
	if err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusError).Inc()
		slog.Warn("cache get failed, falling back to resolution",
			"time", input.Time,
			"error", err,
		)
	}

	if slot != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit).Inc()
		return slot, nil
	}
	if err == nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss).Inc()
	}

	slot, err = s.delegate.Resolve(ctx, input)
	if err != nil {
		return nil, err
	}

	s.store(ctx, slot)
	return slot, nil
}

// store writes a slot to the hot cache. Errors are logged, not propagated.
func (s *cachedSlotService) store(ctx context.Context, slot *model.TimeSlot) {
	if err := s.cache.Set(ctx, slot, s.cacheTTL); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusError).Inc()
		slog.Warn("failed to cache slot",
			"time", slot.Time,
			"error", err,
		)
		return
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess).Inc()
}

// Window delegates to the underlying service. Windowed listings read the
// durable store directly; per-minute hot caching would multiply round trips
// without saving any provider calls.
func (s *cachedSlotService) Window(ctx context.Context, input WindowInput) (*WindowOutput, error) {
	return s.delegate.Window(ctx, input)
}

// ScheduleRefresh delegates to the underlying service.
func (s *cachedSlotService) ScheduleRefresh(ctx context.Context, input RefreshInput) ([]repository.RefreshTask, error) {
	return s.delegate.ScheduleRefresh(ctx, input)
}
