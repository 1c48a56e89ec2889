package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hourglass-dev/timetube/internal/domain/model"
	"github.com/hourglass-dev/timetube/internal/domain/repository"
	"github.com/hourglass-dev/timetube/internal/infrastructure/metrics"
	"github.com/hourglass-dev/timetube/internal/search"
)

var (
	// ErrNoVideoFound is returned when no candidate survives title matching
	// and availability verification. This is a "not found" outcome for the
	// caller, not a pipeline failure.
	ErrNoVideoFound = errors.New("no video found for requested time")

	// ErrRefreshDisabled is returned when refresh scheduling is requested
	// but no task queue is configured.
	ErrRefreshDisabled = errors.New("refresh queue not configured")
)

// ResolveInput contains the input parameters for resolving a slot.
type ResolveInput struct {
	// Time is the requested clock time. "H:MM" and "HH:MM" are accepted;
	// the resolved slot is always keyed by the canonical form.
	Time string

	// SkipCache forces a full re-resolution even when a fresh slot exists.
	SkipCache bool
}

// WindowInput contains the input parameters for a windowed listing.
type WindowInput struct {
	Time string // window center
	Span int    // half-width in minutes; the window covers 2*Span minutes
	Page int    // 1-based; page p shifts the center by (p-1)*Span minutes
}

// WindowEntry is one minute of a windowed listing. Slot is nil for minutes
// that have no stored resolution.
type WindowEntry struct {
	Time string
	Slot *model.TimeSlot
}

// Cached reports whether this minute has a stored resolution.
func (e WindowEntry) Cached() bool {
	return e.Slot != nil
}

// WindowOutput contains the result of a windowed listing.
type WindowOutput struct {
	Entries    []WindowEntry
	Total      int // total addressable slots (minutes per day)
	Page       int
	Limit      int // entries per page (2*Span)
	CenterTime string
}

// RefreshInput contains the input parameters for scheduling refresh tasks.
type RefreshInput struct {
	Time string
	Span int
}

// SlotService defines the interface for slot resolution business logic.
type SlotService interface {
	// Resolve returns the video for a minute of the day, searching the
	// external provider when no fresh slot is stored.
	Resolve(ctx context.Context, input ResolveInput) (*model.TimeSlot, error)

	// Window returns one entry per minute of the window around a center
	// time, with stored slots attached and misses left empty.
	Window(ctx context.Context, input WindowInput) (*WindowOutput, error)

	// ScheduleRefresh publishes one refresh task per minute of the window.
	// Returns the published tasks.
	ScheduleRefresh(ctx context.Context, input RefreshInput) ([]repository.RefreshTask, error)
}

// SlotServiceConfig holds configuration for SlotService.
type SlotServiceConfig struct {
	// Capacity is the maximum number of slots retained in the store.
	Capacity int
	// FreshFor is how long a stored slot answers without re-searching.
	FreshFor time.Duration
	// DefaultSpan is the window half-width used when the caller passes none.
	DefaultSpan int
}

// DefaultSlotServiceConfig returns the default configuration.
// Capacity defaults to one slot per minute of the day.
func DefaultSlotServiceConfig() SlotServiceConfig {
	return SlotServiceConfig{
		Capacity:    model.MinutesPerDay,
		FreshFor:    model.FreshFor,
		DefaultSpan: 30,
	}
}

type slotService struct {
	repo     repository.SlotRepository
	provider search.Provider
	archive  repository.SearchArchive // nil disables archiving
	queue    repository.TaskQueue     // nil disables refresh scheduling

	capacity    int
	freshFor    time.Duration
	defaultSpan int

	// Injection points so tests can pin time and candidate selection.
	now  func() time.Time
	intn func(n int) int
}

// NewSlotService creates a new SlotService instance.
// archive and queue may be nil to disable archiving and refresh scheduling.
func NewSlotService(
	repo repository.SlotRepository,
	provider search.Provider,
	archive repository.SearchArchive,
	queue repository.TaskQueue,
	cfg SlotServiceConfig,
) SlotService {
	if cfg.Capacity <= 0 {
		cfg.Capacity = model.MinutesPerDay
	}
	if cfg.FreshFor <= 0 {
		cfg.FreshFor = model.FreshFor
	}
	if cfg.DefaultSpan <= 0 {
		cfg.DefaultSpan = DefaultSlotServiceConfig().DefaultSpan
	}
	return &slotService{
		repo:        repo,
		provider:    provider,
		archive:     archive,
		queue:       queue,
		capacity:    cfg.Capacity,
		freshFor:    cfg.FreshFor,
		defaultSpan: cfg.DefaultSpan,
		now:         time.Now,
		intn:        rand.Intn,
	}
}

// Resolve implements the resolution pipeline: check the store, on miss or
// staleness search the provider, pick a verified candidate at random, write
// it back and enforce capacity.
func (s *slotService) Resolve(ctx context.Context, input ResolveInput) (*model.TimeSlot, error) {
	minuteOfDay, err := model.ToMinutes(input.Time)
	if err != nil {
		return nil, err
	}
	target := model.FromMinutes(minuteOfDay)

	if !input.SkipCache {
		slot, err := s.repo.Get(ctx, target)
		switch {
		case err == nil:
			if slot.Fresh(s.now(), s.freshFor) {
				metrics.ResolutionsTotal.WithLabelValues(metrics.ResolutionFreshHit).Inc()
				return slot, nil
			}
			// Stale slots stay in the store; a failed refresh below
			// leaves the old answer available to direct reads.
		case !errors.Is(err, repository.ErrSlotNotFound):
			metrics.ResolutionsTotal.WithLabelValues(metrics.ResolutionError).Inc()
			return nil, fmt.Errorf("read slot: %w", err)
		}
	}

	slot, err := s.resolveRemote(ctx, target)
	if err != nil {
		if errors.Is(err, ErrNoVideoFound) {
			metrics.ResolutionsTotal.WithLabelValues(metrics.ResolutionNoResult).Inc()
		} else {
			metrics.ResolutionsTotal.WithLabelValues(metrics.ResolutionError).Inc()
		}
		return nil, err
	}

	metrics.ResolutionsTotal.WithLabelValues(metrics.ResolutionResolved).Inc()
	return slot, nil
}

// resolveRemote runs the search half of the pipeline for a canonical target.
func (s *slotService) resolveRemote(ctx context.Context, target string) (*model.TimeSlot, error) {
	variants, err := search.Variants(target)
	if err != nil {
		return nil, err
	}
	query := search.BuildQuery(variants)

	candidates, err := s.provider.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search provider: %w", err)
	}

	s.archiveResponse(ctx, target, query, candidates)

	var matching []search.Candidate
	for _, c := range candidates {
		if search.Matches(c.Title, target) {
			matching = append(matching, c)
		}
	}
	if len(matching) == 0 {
		return nil, ErrNoVideoFound
	}

	chosen, ok := s.selectVerified(ctx, matching)
	if !ok {
		return nil, ErrNoVideoFound
	}

	slot, err := model.NewTimeSlot(target, chosen.VideoID, search.WatchURL(chosen.VideoID), chosen.Title, 0, chosen.ThumbnailURL)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, slot); err != nil {
		return nil, fmt.Errorf("store slot: %w", err)
	}

	if err := s.enforceCapacity(ctx); err != nil {
		// The slot itself is already durable; losing an eviction round
		// only leaves the store transiently over capacity.
		slog.Warn("capacity enforcement failed",
			"time", target,
			"error", err,
		)
	}

	return slot, nil
}

// selectVerified draws candidates uniformly at random without replacement
// until one passes availability verification.
func (s *slotService) selectVerified(ctx context.Context, candidates []search.Candidate) (search.Candidate, bool) {
	pool := make([]search.Candidate, len(candidates))
	copy(pool, candidates)

	for len(pool) > 0 {
		i := s.intn(len(pool))
		candidate := pool[i]
		pool[i] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]

		ok, err := s.provider.Verify(ctx, candidate.VideoID)
		if err != nil {
			slog.Warn("candidate verification failed, skipping",
				"video_id", candidate.VideoID,
				"error", err,
			)
			continue
		}
		if ok {
			return candidate, true
		}
	}
	return search.Candidate{}, false
}

// enforceCapacity evicts oldest-created slots until the store is back under
// the configured cap. The store may be transiently over capacity between
// the preceding upsert and this loop.
func (s *slotService) enforceCapacity(ctx context.Context) error {
	for {
		count, err := s.repo.Count(ctx)
		if err != nil {
			return fmt.Errorf("count slots: %w", err)
		}
		if count <= s.capacity {
			return nil
		}
		if err := s.repo.EvictOldest(ctx); err != nil {
			return fmt.Errorf("evict oldest slot: %w", err)
		}
		metrics.SlotEvictionsTotal.Inc()
	}
}

// archivePayload is the object stored per search for later analysis.
type archivePayload struct {
	Time        string             `json:"time"`
	Query       string             `json:"query"`
	Candidates  []search.Candidate `json:"candidates"`
	RetrievedAt time.Time          `json:"retrieved_at"`
}

// archiveResponse stores the raw candidate list. Strictly best-effort:
// failures are logged and never fail the resolution.
func (s *slotService) archiveResponse(ctx context.Context, target, query string, candidates []search.Candidate) {
	if s.archive == nil {
		return
	}

	payload := archivePayload{
		Time:        target,
		Query:       query,
		Candidates:  candidates,
		RetrievedAt: s.now().UTC(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("failed to marshal search archive payload",
			"time", target,
			"error", err,
		)
		return
	}

	key := s.archiveKey(target)
	if err := s.archive.Store(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		slog.Warn("failed to archive search response",
			"time", target,
			"key", key,
			"error", err,
		)
	}
}

// archiveKey builds the object key for one archived search.
// Format: searches/{HH_MM}/{uuid}.json
func (s *slotService) archiveKey(target string) string {
	return path.Join("searches", strings.ReplaceAll(target, ":", "_"), uuid.New().String()+".json")
}

// Window returns one entry per minute of the 2*Span window around the
// center, reading stored slots with a single wrap-aware range query.
func (s *slotService) Window(ctx context.Context, input WindowInput) (*WindowOutput, error) {
	center, err := model.ToMinutes(input.Time)
	if err != nil {
		return nil, err
	}

	span := input.Span
	if span <= 0 {
		span = s.defaultSpan
	}
	if span > model.MinutesPerDay/2 {
		span = model.MinutesPerDay / 2
	}
	page := input.Page
	if page < 1 {
		page = 1
	}

	center += (page - 1) * span
	start, _ := model.Window(center, span)
	count := 2 * span

	// The window covers minutes start..start+count-1; the range query
	// bound is inclusive on both ends.
	slots, err := s.repo.Range(ctx, model.FromMinutes(start), model.FromMinutes(start+count-1), count)
	if err != nil {
		return nil, fmt.Errorf("range slots: %w", err)
	}

	byTime := make(map[string]*model.TimeSlot, len(slots))
	for _, slot := range slots {
		byTime[slot.Time] = slot
	}

	entries := make([]WindowEntry, 0, count)
	for _, label := range model.Enumerate(start, count) {
		entries = append(entries, WindowEntry{Time: label, Slot: byTime[label]})
	}

	return &WindowOutput{
		Entries:    entries,
		Total:      model.MinutesPerDay,
		Page:       page,
		Limit:      count,
		CenterTime: model.FromMinutes(center),
	}, nil
}

// ScheduleRefresh publishes one refresh task per minute of the window.
func (s *slotService) ScheduleRefresh(ctx context.Context, input RefreshInput) ([]repository.RefreshTask, error) {
	if s.queue == nil {
		return nil, ErrRefreshDisabled
	}

	center, err := model.ToMinutes(input.Time)
	if err != nil {
		return nil, err
	}
	span := input.Span
	if span <= 0 {
		span = s.defaultSpan
	}
	if span > model.MinutesPerDay/2 {
		span = model.MinutesPerDay / 2
	}

	start, _ := model.Window(center, span)
	labels := model.Enumerate(start, 2*span)

	tasks := make([]repository.RefreshTask, 0, len(labels))
	for _, label := range labels {
		task := repository.RefreshTask{
			ID:   uuid.New(),
			Time: label,
		}
		if err := s.queue.PublishRefreshTask(ctx, task); err != nil {
			return tasks, fmt.Errorf("publish refresh task for %s: %w", label, err)
		}
		tasks = append(tasks, task)
	}

	return tasks, nil
}
