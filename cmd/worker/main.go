package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/hourglass-dev/timetube/internal/config"
	"github.com/hourglass-dev/timetube/internal/domain/repository"
	"github.com/hourglass-dev/timetube/internal/infrastructure/cache"
	"github.com/hourglass-dev/timetube/internal/infrastructure/postgres"
	"github.com/hourglass-dev/timetube/internal/infrastructure/queue"
	"github.com/hourglass-dev/timetube/internal/infrastructure/storage"
	"github.com/hourglass-dev/timetube/internal/search"
	"github.com/hourglass-dev/timetube/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()
	logger.Info("connected to PostgreSQL")

	queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer queueClient.Close()
	logger.Info("connected to RabbitMQ")

	// Redis keeps worker refreshes visible to API reads without waiting
	// out the hot-cache TTL.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("connected to Redis")

	var archive repository.SearchArchive
	if cfg.Archive.Enabled {
		archiveClient, err := storage.NewClient(ctx, storage.ClientConfig{
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Bucket:    cfg.Archive.Bucket,
			UseSSL:    cfg.Archive.UseSSL,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to MinIO: %w", err)
		}
		archive = archiveClient
		logger.Info("connected to MinIO", slog.String("bucket", cfg.Archive.Bucket))
	}

	provider := search.NewYouTubeClient(search.YouTubeConfig{
		APIKey:          cfg.YouTube.APIKey,
		SecondaryAPIKey: cfg.YouTube.SecondaryAPIKey,
		MaxResults:      cfg.YouTube.MaxResults,
		Timeout:         cfg.YouTube.Timeout,
	})

	slotRepo := postgres.NewSlotRepository(pgClient.Pool())
	slotSvc := usecase.NewSlotService(slotRepo, provider, archive, nil, usecase.SlotServiceConfig{
		Capacity:    cfg.Slots.Capacity,
		FreshFor:    cfg.Slots.Freshness,
		DefaultSpan: cfg.Slots.DefaultSpan,
	})
	cachedSvc := usecase.NewCachedSlotService(slotSvc, cache.NewRedisSlotCache(redisClient), usecase.CachedSlotServiceConfig{
		CacheTTL: cfg.Redis.TTL,
	})
	refreshSvc := usecase.NewRefreshService(cachedSvc, usecase.RefreshServiceConfig{
		MaxRetries: cfg.Worker.MaxRetries,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// WaitGroup to track in-flight tasks
	var wg sync.WaitGroup

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting worker, consuming refresh tasks")
		err := queueClient.ConsumeRefreshTasks(ctx, func(task repository.RefreshTask) error {
			wg.Add(1)
			defer wg.Done()

			logger.Info("processing refresh task",
				slog.String("task_id", task.ID.String()),
				slog.String("time", task.Time),
				slog.Int("retry_count", task.RetryCount),
			)

			if err := refreshSvc.HandleRefreshTask(ctx, task); err != nil {
				logger.Error("refresh task failed",
					slog.String("task_id", task.ID.String()),
					slog.String("time", task.Time),
					slog.Int("retry_count", task.RetryCount),
					slog.String("error", err.Error()),
				)
				return err
			}
			return nil
		})
		if err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("consumer error: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down worker", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	// Cancel the main context to stop consuming new messages
	cancel()

	// Wait for in-flight tasks to complete (or timeout)
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("all in-flight tasks completed")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, some tasks may not have completed")
	}

	logger.Info("worker stopped")
	return nil
}
