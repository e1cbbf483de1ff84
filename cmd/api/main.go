package main

// @title Lawn Quote Service API
// @version 1.0.0
// @description Оценка площади газона по адресу, ручное рисование зон и расчёт квот на стрижку по шкале цен аккаунта.
// @description
// @description Основные возможности:
// @description - Автоматическая оценка площади газона и полигоны двора
// @description - Сессии ручного рисования и редактирования зон
// @description - Маржинальная шкала цен и единая ставка за кв. фут
// @description - Квоты, воронка продаж и учёт использования по тарифу

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/lawn-quote-service/docs/swagger"
	"github.com/lawn-quote-service/internal/config"
	httpDelivery "github.com/lawn-quote-service/internal/delivery/http"
	"github.com/lawn-quote-service/internal/delivery/http/handler"
	"github.com/lawn-quote-service/internal/engine/estimation"
	"github.com/lawn-quote-service/internal/pkg/logger"
	"github.com/lawn-quote-service/internal/pkg/metrics"
	"github.com/lawn-quote-service/internal/repository/cache"
	"github.com/lawn-quote-service/internal/repository/postgres"
	redisRepo "github.com/lawn-quote-service/internal/repository/redis"
	"github.com/lawn-quote-service/internal/usecase"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Lawn Quote Service")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
	)

	collector, err := metrics.NewCollector(nil)
	if err != nil {
		log.Fatal("Failed to register metrics", zap.Error(err))
	}

	// 3. Connect to PostgreSQL
	db, err := postgres.New(context.Background(), &cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	if err := collector.Register(db.StatsCollector()); err != nil {
		log.Warn("Failed to register PostgreSQL pool metrics", zap.Error(err))
	}

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	log.Info("Redis connected")

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}
	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 6. Initialize Repositories
	quoteRepo := postgres.NewQuoteRepository(db)
	settingsRepo := postgres.NewPricingSettingsRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)
	sessionRepo := cache.NewSessionRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	log.Info("Repositories initialized")

	// 7. Initialize Use Cases
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

	quoteUC := usecase.NewQuoteUseCase(
		quoteRepo,
		streamRepo,
		sessionUC,
		pricingUC,
		collector,
		log,
	)

	log.Info("Use cases initialized")

	// 8. Initialize HTTP Handlers
	handlers := httpDelivery.Handlers{
		Health: handler.NewHealthHandler(map[string]handler.HealthChecker{
			"postgres": db,
			"redis":    redisClient,
		}, log),
		Estimate: handler.NewEstimateHandler(estimationUC, log),
		Session:  handler.NewSessionHandler(sessionUC, log),
		Pricing:  handler.NewPricingHandler(pricingUC, log),
		Quote:    handler.NewQuoteHandler(quoteUC, log),
	}

	// 9. Initialize HTTP Server
	server := httpDelivery.NewServer(cfg, log, collector, handlers)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 10. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if err := db.Close(); err != nil {
		log.Error("Failed to close PostgreSQL", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		log.Error("Failed to close Redis", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
