package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hourglass-dev/timetube/internal/api/handler"
	"github.com/hourglass-dev/timetube/internal/api/middleware"
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

	if err := postgres.Migrate(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("database migrations applied")

	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()
	logger.Info("connected to PostgreSQL")

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

	queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer queueClient.Close()
	logger.Info("connected to RabbitMQ")

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
	slotSvc := usecase.NewSlotService(slotRepo, provider, archive, queueClient, usecase.SlotServiceConfig{
		Capacity:    cfg.Slots.Capacity,
		FreshFor:    cfg.Slots.Freshness,
		DefaultSpan: cfg.Slots.DefaultSpan,
	})
	cachedSvc := usecase.NewCachedSlotService(slotSvc, cache.NewRedisSlotCache(redisClient), usecase.CachedSlotServiceConfig{
		CacheTTL: cfg.Redis.TTL,
	})

	r := setupRouter(logger, handler.NewSlotHandler(cachedSvc))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func setupRouter(logger *slog.Logger, slots *handler.SlotHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/video", slots.Get)
	r.Get("/videos", slots.Window)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/refresh", slots.Refresh)
	})

	return r
}
