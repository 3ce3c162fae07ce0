package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpAdapter "github.com/peopleops/leaveledger/internal/adapter/http"
	"github.com/peopleops/leaveledger/internal/adapter/http/handler"
	"github.com/peopleops/leaveledger/internal/adapter/http/middleware"
	postgresRepo "github.com/peopleops/leaveledger/internal/adapter/repository/postgres"
	redisRepo "github.com/peopleops/leaveledger/internal/adapter/repository/redis"
	"github.com/peopleops/leaveledger/internal/infrastructure/config"
	"github.com/peopleops/leaveledger/internal/infrastructure/eventpublisher"
	"github.com/peopleops/leaveledger/internal/infrastructure/logger"
	"github.com/peopleops/leaveledger/internal/infrastructure/logging"
	"github.com/peopleops/leaveledger/internal/infrastructure/metrics"
	"github.com/peopleops/leaveledger/internal/infrastructure/postgres"
	"github.com/peopleops/leaveledger/internal/infrastructure/redis"
	"github.com/peopleops/leaveledger/internal/infrastructure/worker"
	"github.com/peopleops/leaveledger/internal/usecase"
)

func main() {
	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	slogger := logging.New(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	requestLogger := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx := context.Background()

	// Connect to PostgreSQL
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	appMetrics := metrics.New()

	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool)
	balanceRepo := postgresRepo.NewBalanceRepository(pool)
	timeOffRepo := postgresRepo.NewTimeOffRepository(pool)
	assignmentRepo := postgresRepo.NewAssignmentRepository(pool)
	employeeRepo := postgresRepo.NewEmployeeRepository(pool)
	policyRepo := postgresRepo.NewPolicyRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)
	cache := redisRepo.NewCache(redisClient)
	queue := redisRepo.NewJobQueue(redisClient, cfg.QueueKey)
	idGen := postgresRepo.NewULIDGenerator()
	retrier := postgresRepo.NewRetrier()

	// Initialize use cases
	creationUC := usecase.NewBalanceCreationUseCase(balanceRepo, employeeRepo, assignmentRepo, policyRepo, outboxRepo, idGen, appMetrics)
	cascadeUC := usecase.NewCascadeUseCase(txManager, balanceRepo, timeOffRepo, assignmentRepo, policyRepo, outboxRepo, queue, idGen, appMetrics)
	balanceUC := usecase.NewBalanceUseCase(txManager, balanceRepo, creationUC, cascadeUC)
	timeOffUC := usecase.NewTimeOffUseCase(txManager, timeOffRepo, balanceRepo, employeeRepo, outboxRepo, idGen, creationUC, cascadeUC, appMetrics)
	assignmentUC := usecase.NewAssignmentUseCase(txManager, assignmentRepo, policyRepo, employeeRepo, balanceRepo, outboxRepo, idGen, creationUC, cascadeUC, appMetrics)
	contractEndUC := usecase.NewContractEndUseCase(txManager, employeeRepo, assignmentRepo, timeOffRepo, balanceRepo, policyRepo, outboxRepo, idGen, creationUC, cascadeUC, appMetrics)
	overviewUC := usecase.NewOverviewUseCase(balanceRepo, assignmentRepo, policyRepo, employeeRepo, cache, cfg.MinutesPerDay)

	// Initialize handlers
	balanceHandler := handler.NewBalanceHandler(balanceUC, overviewUC)
	timeOffHandler := handler.NewTimeOffHandler(timeOffUC)
	assignmentHandler := handler.NewAssignmentHandler(assignmentUC)
	contractEndHandler := handler.NewContractEndHandler(contractEndUC)
	healthHandler := handler.NewHealthHandler(pool, redisClient)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	// Create router
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		BalanceHandler:     balanceHandler,
		TimeOffHandler:     timeOffHandler,
		AssignmentHandler:  assignmentHandler,
		ContractEndHandler: contractEndHandler,
		HealthHandler:      healthHandler,
		IdempotencyStore:   idempotencyStore,
		RateLimiter:        rateLimiter,
		Logger:             requestLogger,
	})

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				rateLimiter.CleanupLimiters(time.Hour)
			}
		}
	}()

	// Start the recompute worker pool
	recomputeWorker := worker.New(worker.Config{
		Queue:       queue,
		Runner:      cascadeUC,
		Retrier:     retrier,
		Logger:      slogger,
		Metrics:     appMetrics,
		Concurrency: cfg.WorkerConcurrency,
		PollTimeout: cfg.WorkerPollTimeout,
	})
	go func() {
		if err := recomputeWorker.Start(workerCtx); err != nil && workerCtx.Err() == nil {
			log.Error().Err(err).Msg("recompute worker stopped")
		}
	}()

	// Start the outbox publisher
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: outboxRepo,
		Publisher:  eventpublisher.NewLogPublisher(slogger),
		Logger:     slogger,
		Metrics:    appMetrics,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
	})
	go func() {
		if err := publisher.Start(workerCtx); err != nil && workerCtx.Err() == nil {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	stopWorkers()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
