package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/diya-thabet/hirfa/internal/cache"
	"github.com/diya-thabet/hirfa/internal/config"
	"github.com/diya-thabet/hirfa/internal/database"
	"github.com/diya-thabet/hirfa/internal/log"
	"github.com/diya-thabet/hirfa/internal/queue"
	"github.com/diya-thabet/hirfa/internal/repository"
	"github.com/diya-thabet/hirfa/internal/service"
	"github.com/diya-thabet/hirfa/internal/storage"
	"github.com/diya-thabet/hirfa/internal/tasks"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadWorker()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, log.WithLevel(cfg.Logging.Level))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect postgres")
	}
	defer dbPool.Close()

	client, err := cache.NewRedisClient(ctx, cfg.Redis.RedisOptions())
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}

	users := repository.NewUserRepository(dbPool)
	jobs := repository.NewJobRepository(dbPool)
	bids := repository.NewBidRepository(dbPool)

	// The worker only recomputes and sweeps, so nothing it calls publishes.
	reviews := service.NewReviewService(repository.NewReviewRepository(dbPool), jobs, bids, users, nil, logger)
	community := service.NewCommunityService(repository.NewStoryRepository(dbPool), cfg.Marketplace.StoryTTL, logger)
	media := service.NewMediaService(repository.NewMediaRepository(dbPool), objectStore, nil,
		cfg.Security.MediaSecret, cfg.Marketplace.MaxUploadBytes, logger)

	processor := tasks.NewProcessor(reviews, community, media, logger)
	consumer := queue.NewConsumer(client, queue.Options{
		Stream:            cfg.Redis.Stream,
		Group:             cfg.Redis.Group,
		Consumer:          cfg.Redis.Consumer,
		ClaimInterval:     cfg.Queues.ClaimInterval,
		VisibilityTimeout: cfg.Queues.VisibilityTimeout,
	}, logger, processor)

	logger.Info().Str("stream", cfg.Redis.Stream).Str("consumer", cfg.Redis.Consumer).Msg("worker started")
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("consumer stopped unexpectedly")
	}
	logger.Info().Msg("worker exited")
}
