package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hourglass-dev/timetube/internal/domain/model"
	"github.com/hourglass-dev/timetube/internal/domain/repository"
)

// RefreshService defines the interface for processing refresh tasks.
// It is consumed by the worker service via TaskQueue.ConsumeRefreshTasks.
type RefreshService interface {
	// HandleRefreshTask resolves the task's minute if no fresh slot is
	// stored. A returned error causes the queue to republish the task
	// with an incremented retry count.
	HandleRefreshTask(ctx context.Context, task repository.RefreshTask) error
}

// RefreshServiceConfig holds configuration for RefreshService.
type RefreshServiceConfig struct {
	// MaxRetries bounds how often a failed task is reattempted before
	// being dropped.
	MaxRetries int
}

// DefaultRefreshServiceConfig returns the default configuration.
func DefaultRefreshServiceConfig() RefreshServiceConfig {
	return RefreshServiceConfig{
		MaxRetries: 3,
	}
}

type refreshService struct {
	slots      SlotService
	maxRetries int
}

// NewRefreshService creates a new RefreshService instance.
func NewRefreshService(slots SlotService, cfg RefreshServiceConfig) RefreshService {
	return &refreshService{
		slots:      slots,
		maxRetries: cfg.MaxRetries,
	}
}

// HandleRefreshTask resolves one minute of the day.
//
// Terminal outcomes return nil so the task is acked and not republished:
// a fresh or newly resolved slot, a minute with no valid candidate, an
// unparseable time, and a task over the retry cap. Provider and store
// failures return an error and go back to the queue.
func (s *refreshService) HandleRefreshTask(ctx context.Context, task repository.RefreshTask) error {
	if task.RetryCount > s.maxRetries {
		slog.Warn("dropping refresh task after max retries",
			"task_id", task.ID,
			"time", task.Time,
			"retry_count", task.RetryCount,
		)
		return nil
	}

	slot, err := s.slots.Resolve(ctx, ResolveInput{Time: task.Time})
	if err != nil {
		if errors.Is(err, ErrNoVideoFound) {
			slog.Info("no video found for refresh task",
				"task_id", task.ID,
				"time", task.Time,
			)
			return nil
		}
		if errors.Is(err, model.ErrInvalidTime) {
			// Bad input cannot succeed on retry.
			slog.Warn("dropping refresh task with invalid time",
				"task_id", task.ID,
				"time", task.Time,
			)
			return nil
		}
		return fmt.Errorf("resolve %s: %w", task.Time, err)
	}

	slog.Info("refreshed slot",
		"task_id", task.ID,
		"time", slot.Time,
		"video_id", slot.VideoID,
	)
	return nil
}
