package repository

import (
	"context"

	"github.com/google/uuid"
)

// RefreshTask asks the worker to resolve a video for one minute of the day.
type RefreshTask struct {
	ID         uuid.UUID `json:"id"`
	Time       string    `json:"time"`
	RetryCount int       `json:"retry_count"`
}

// TaskQueue defines the interface for the refresh-task queue.
// Implementations should be provided by the infrastructure layer (e.g., RabbitMQ).
type TaskQueue interface {
	// PublishRefreshTask sends a refresh task to the queue.
	// Used by the API server to schedule prefetching of a time window.
	PublishRefreshTask(ctx context.Context, task RefreshTask) error

	// ConsumeRefreshTasks starts consuming refresh tasks from the queue.
	// The handler is called for each received task; a handler error causes
	// the task to be republished with an incremented retry count.
	// Used by the worker service.
	ConsumeRefreshTasks(ctx context.Context, handler func(task RefreshTask) error) error

	// Close gracefully closes the connection to the queue.
	Close() error
}
