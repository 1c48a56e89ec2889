package usecase

import (
	"context"
	"io"
	"time"

	"github.com/hourglass-dev/timetube/internal/domain/model"
	"github.com/hourglass-dev/timetube/internal/domain/repository"
	"github.com/hourglass-dev/timetube/internal/search"
)

// mockSlotRepository provides a configurable mock for SlotRepository.
type mockSlotRepository struct {
	getFn         func(ctx context.Context, slotTime string) (*model.TimeSlot, error)
	upsertFn      func(ctx context.Context, slot *model.TimeSlot) error
	countFn       func(ctx context.Context) (int, error)
	evictOldestFn func(ctx context.Context) error
	rangeFn       func(ctx context.Context, start, end string, limit int) ([]*model.TimeSlot, error)
	listFn        func(ctx context.Context, limit, offset int) ([]*model.TimeSlot, error)
}

func (m *mockSlotRepository) Get(ctx context.Context, slotTime string) (*model.TimeSlot, error) {
	if m.getFn != nil {
		return m.getFn(ctx, slotTime)
	}
	return nil, repository.ErrSlotNotFound
}

func (m *mockSlotRepository) Upsert(ctx context.Context, slot *model.TimeSlot) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, slot)
	}
	return nil
}

func (m *mockSlotRepository) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockSlotRepository) EvictOldest(ctx context.Context) error {
	if m.evictOldestFn != nil {
		return m.evictOldestFn(ctx)
	}
	return nil
}

func (m *mockSlotRepository) Range(ctx context.Context, start, end string, limit int) ([]*model.TimeSlot, error) {
	if m.rangeFn != nil {
		return m.rangeFn(ctx, start, end, limit)
	}
	return nil, nil
}

func (m *mockSlotRepository) List(ctx context.Context, limit, offset int) ([]*model.TimeSlot, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit, offset)
	}
	return nil, nil
}

// mockProvider provides a configurable mock for search.Provider.
type mockProvider struct {
	searchFn func(ctx context.Context, query string) ([]search.Candidate, error)
	verifyFn func(ctx context.Context, videoID string) (bool, error)
}

func (m *mockProvider) Search(ctx context.Context, query string) ([]search.Candidate, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query)
	}
	return nil, nil
}

func (m *mockProvider) Verify(ctx context.Context, videoID string) (bool, error) {
	if m.verifyFn != nil {
		return m.verifyFn(ctx, videoID)
	}
	return true, nil
}

// mockSearchArchive provides a configurable mock for SearchArchive.
type mockSearchArchive struct {
	storeFn  func(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	fetchFn  func(ctx context.Context, key string) (io.ReadCloser, error)
	existsFn func(ctx context.Context, key string) (bool, error)
}

func (m *mockSearchArchive) Store(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	if m.storeFn != nil {
		return m.storeFn(ctx, key, reader, size, contentType)
	}
	return nil
}

func (m *mockSearchArchive) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, key)
	}
	return nil, repository.ErrObjectNotFound
}

func (m *mockSearchArchive) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

// mockTaskQueue provides a configurable mock for TaskQueue.
type mockTaskQueue struct {
	publishRefreshTaskFn  func(ctx context.Context, task repository.RefreshTask) error
	consumeRefreshTasksFn func(ctx context.Context, handler func(task repository.RefreshTask) error) error
}

func (m *mockTaskQueue) PublishRefreshTask(ctx context.Context, task repository.RefreshTask) error {
	if m.publishRefreshTaskFn != nil {
		return m.publishRefreshTaskFn(ctx, task)
	}
	return nil
}

func (m *mockTaskQueue) ConsumeRefreshTasks(ctx context.Context, handler func(task repository.RefreshTask) error) error {
	if m.consumeRefreshTasksFn != nil {
		return m.consumeRefreshTasksFn(ctx, handler)
	}
	return nil
}

func (m *mockTaskQueue) Close() error {
	return nil
}

// mockSlotCache provides a configurable mock for cache.SlotCache.
type mockSlotCache struct {
	getFn    func(ctx context.Context, slotTime string) (*model.TimeSlot, error)
	setFn    func(ctx context.Context, slot *model.TimeSlot, ttl time.Duration) error
	deleteFn func(ctx context.Context, slotTime string) error
}

func (m *mockSlotCache) Get(ctx context.Context, slotTime string) (*model.TimeSlot, error) {
	if m.getFn != nil {
		return m.getFn(ctx, slotTime)
	}
	return nil, nil
}

func (m *mockSlotCache) Set(ctx context.Context, slot *model.TimeSlot, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, slot, ttl)
	}
	return nil
}

func (m *mockSlotCache) Delete(ctx context.Context, slotTime string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, slotTime)
	}
	return nil
}

// mockSlotService provides a configurable mock for SlotService.
type mockSlotService struct {
	resolveFn         func(ctx context.Context, input ResolveInput) (*model.TimeSlot, error)
	windowFn          func(ctx context.Context, input WindowInput) (*WindowOutput, error)
	scheduleRefreshFn func(ctx context.Context, input RefreshInput) ([]repository.RefreshTask, error)
}

func (m *mockSlotService) Resolve(ctx context.Context, input ResolveInput) (*model.TimeSlot, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, input)
	}
	return nil, nil
}

func (m *mockSlotService) Window(ctx context.Context, input WindowInput) (*WindowOutput, error) {
	if m.windowFn != nil {
		return m.windowFn(ctx, input)
	}
	return nil, nil
}

func (m *mockSlotService) ScheduleRefresh(ctx context.Context, input RefreshInput) ([]repository.RefreshTask, error) {
	if m.scheduleRefreshFn != nil {
		return m.scheduleRefreshFn(ctx, input)
	}
	return nil, nil
}
