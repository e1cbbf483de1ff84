package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/lawn-quote-service/internal/config"
	"github.com/lawn-quote-service/internal/engine/estimation"
	"github.com/lawn-quote-service/internal/pkg/logger"
	"github.com/lawn-quote-service/internal/pkg/metrics"
	"github.com/lawn-quote-service/internal/repository/cache"
	"github.com/lawn-quote-service/internal/repository/postgres"
	redisRepo "github.com/lawn-quote-service/internal/repository/redis"
	"github.com/lawn-quote-service/internal/usecase"
	"github.com/lawn-quote-service/internal/worker"
	estimationWorker "github.com/lawn-quote-service/internal/worker/estimation"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Quote Estimation Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("batch_size", cfg.Worker.BatchSize),
		zap.Int("concurrency", cfg.Worker.Concurrency),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.Duration("claim_idle", cfg.Worker.ClaimIdle),
	)

	collector, err := metrics.NewCollector(nil)
	if err != nil {
		log.Fatal("Failed to register metrics", zap.Error(err))
	}

	// 3. Connect to PostgreSQL (настройки цен аккаунтов)
	db, err := postgres.New(context.Background(), &cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	if err := collector.Register(db.StatsCollector()); err != nil {
		log.Warn("Failed to register PostgreSQL pool metrics", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Initialize repositories
	settingsRepo := postgres.NewPricingSettingsRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)
	sessionRepo := cache.NewSessionRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	// 6. Initialize use cases
	pricingUC := usecase.NewPricingUseCase(settingsRepo, cfg.Pricing, log)
	sessionUC := usecase.NewSessionUseCase(sessionRepo, log, cfg.Cache.SessionTTL)
	estimationUC := usecase.NewEstimationUseCase(
		estimation.NewEstimator(cfg.Estimation),
		estimation.NewGenerator(cfg.Estimation),
		cacheRepo,
		sessionUC,
		pricingUC,
		collector,
		log,
		cfg.Cache.EstimateCacheTTL,
	)

	// 7. Initialize workers
	quoteWorker := estimationWorker.NewEstimationWorker(
		streamRepo,
		estimationUC,
		cfg.Worker,
		collector,
		log,
	)

	// 8. Create worker manager and register workers
	workerManager := worker.NewWorkerManager(log, worker.DefaultShutdownTimeout)
	workerManager.Register(quoteWorker)

	// 9. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
