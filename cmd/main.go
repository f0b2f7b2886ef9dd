package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/RishiKendai/quill/internal/api"
	"github.com/RishiKendai/quill/internal/config"
	"github.com/RishiKendai/quill/internal/configs/env"
	"github.com/RishiKendai/quill/internal/infra/mongo"
	redisInfra "github.com/RishiKendai/quill/internal/infra/redis"
	"github.com/RishiKendai/quill/internal/ingest"
	"github.com/RishiKendai/quill/internal/logger"
	"github.com/RishiKendai/quill/internal/metrics"
	"github.com/RishiKendai/quill/internal/plagiarism"
	"github.com/RishiKendai/quill/internal/repository"
	"github.com/RishiKendai/quill/internal/stream"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file, continuing with system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	logger.Init(cfg.LogLevel, cfg.LogPretty)
	log.Info().
		Int("ngram_size", cfg.NgramSize).
		Int("window_size", cfg.WindowSize).
		Msg("Starting quill server")

	metrics.InitPrometheus()
	metricsServer := api.StartServer("metrics", api.MetricsHandler(), cfg.MetricsPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoClient, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MongoDB client")
	}
	defer mongoClient.Close(context.Background())

	redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Redis client")
	}
	defer redisClient.Close()

	mongoRepo := repository.NewMongoRepository(mongoClient)
	if err := mongoRepo.EnsureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to ensure MongoDB indexes")
	}

	documentsRepo := repository.NewDocumentsRepository(mongoRepo)
	resultsRepo := repository.NewResultsRepository(mongoRepo)

	setCache, err := plagiarism.NewSetCache(cfg.NgramSize, cfg.WindowSize, cfg.CacheMaxDocuments)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create fingerprint cache")
	}

	ingestSvc := ingest.NewService(setCache, documentsRepo)

	retryHandler := stream.NewRetryHandler(redisClient.Client, cfg.RedisDeadLetterKey, cfg.MaxRetries)

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	consumerName := fmt.Sprintf("consumer-%s-%d-%s", hostname, os.Getpid(), uuid.New().String()[:8])
	consumer := stream.NewConsumer(
		redisClient.Client,
		cfg.RedisStreamKey,
		cfg.RedisConsumerGroup,
		consumerName,
		ingestSvc,
		retryHandler,
		cfg.StreamRetentionDuration,
	)

	workerPool := plagiarism.NewWorkerPool(ctx, cfg.Workers)
	defer workerPool.Close()
	log.Info().Int("workers", workerPool.Size()).Msg("Worker pool started")

	statusTracker := plagiarism.NewStatusTracker(redisClient.Client, cfg.StatusTTL)
	scanner := plagiarism.NewScanner(documentsRepo, resultsRepo, statusTracker, workerPool, setCache, plagiarism.Options{
		MinSharedHashes:   cfg.MinSharedHashes,
		FingerprintCutoff: cfg.FingerprintCutoff,
		SignificantScore:  cfg.SignificantScore,
	})

	router := api.SetupRoutes(ctx, cfg, api.Dependencies{
		Documents: documentsRepo,
		Reports:   resultsRepo,
		Status:    statusTracker,
		Scanner:   scanner,
		Ingest:    ingestSvc,
	})

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("Redis consumer error")
		}
	}()
	log.Info().Str("consumer_name", consumerName).Msg("Redis consumer started")

	srv := api.StartServer("api", router, cfg.ServerPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gracefully...")

	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down API server")
	}

	cancel()
	select {
	case <-consumerDone:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Redis consumer did not stop in time")
	}

	if err := api.ShutdownServer(metricsServer, 5*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
}
