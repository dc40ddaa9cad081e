package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/clinsim-backend/internal/alert"
	"github.com/stemsi/clinsim-backend/internal/clock"
	"github.com/stemsi/clinsim-backend/internal/config"
	"github.com/stemsi/clinsim-backend/internal/database"
	"github.com/stemsi/clinsim-backend/internal/evaluator"
	"github.com/stemsi/clinsim-backend/internal/handler"
	"github.com/stemsi/clinsim-backend/internal/logger"
	"github.com/stemsi/clinsim-backend/internal/middleware"
	"github.com/stemsi/clinsim-backend/internal/narrative"
	"github.com/stemsi/clinsim-backend/internal/notification"
	"github.com/stemsi/clinsim-backend/internal/repository"
	"github.com/stemsi/clinsim-backend/internal/router"
	"github.com/stemsi/clinsim-backend/internal/scenario"
	"github.com/stemsi/clinsim-backend/internal/service"
	"github.com/stemsi/clinsim-backend/internal/session"
	"github.com/stemsi/clinsim-backend/internal/validator"
	"github.com/stemsi/clinsim-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Clinical Simulation Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL (optional) ──────────────────────────────
	var pool *pgxpool.Pool
	if cfg.NeedsPostgres() {
		p, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Warn().Err(err).Msg("PostgreSQL unavailable; scenario DB and report persistence disabled")
		} else {
			pool = p
			defer pool.Close()
		}
	}

	// ─── Connect to Redis (optional) ───────────────────────────────────
	var rdb *redis.Client
	if cfg.NeedsRedis() {
		r, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable; falling back to in-memory components")
		} else {
			rdb = r
			defer rdb.Close()
		}
	}

	// ─── Notifications ─────────────────────────────────────────────────
	var sink notification.Sink = notification.NewMemorySink()
	if cfg.NotificationBackend == config.NotificationBackendRedis && rdb != nil {
		sink = notification.NewRedisSink(rdb, cfg.NotificationTTL)
	}
	broker := notification.NewBroker(sink)

	// ─── Scenario Resolution ───────────────────────────────────────────
	// Database rows shadow the built-in catalog.
	var resolvers []scenario.Resolver
	if cfg.UseScenarioDB && pool != nil {
		resolvers = append(resolvers, scenario.NewDBResolver(repository.NewScenarioRepository(pool)))
	}
	resolvers = append(resolvers, scenario.DefaultCatalog())
	var resolver scenario.Resolver = scenario.NewChainResolver(resolvers...)
	if rdb != nil && cfg.ScenarioCacheTTL > 0 {
		resolver = scenario.NewCachedResolver(resolver, rdb, cfg.ScenarioCacheTTL, log)
	}

	// ─── Briefings ─────────────────────────────────────────────────────
	var primary narrative.Narrator
	if cfg.OpenAIAPIKey != "" {
		primary = narrative.NewOpenAINarrator(cfg.OpenAIAPIKey, cfg.OpenAIModel, "")
	}
	narrator := narrative.NewResilient(primary, narrative.StaticNarrator{}, cfg.NarrativeTimeout, log)

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	var reports service.ReportSink
	if cfg.PersistReports && rdb != nil && pool != nil {
		reports = worker.NewReportQueue(rdb)
		reportWorker := worker.NewReportWorker(repository.NewReportRepository(pool), rdb, log)
		workers.Add(1)
		go func() {
			defer workers.Done()
			reportWorker.Start(workerCtx)
		}()
	}

	// ─── Initialize Engine ─────────────────────────────────────────────
	clk := clock.New()
	store := session.NewMemoryStore()
	scheduler := alert.NewScheduler(clk, store, broker, log)
	svc := service.NewSimulationService(store, resolver, evaluator.NewKeyword(), scheduler, broker, reports, narrator, clk, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Simulation:   handler.NewSimulationHandler(svc, log),
		Notification: handler.NewNotificationHandler(svc),
		WS:           handler.NewWSHandler(svc, broker, log, cfg.AllowedOrigins),
		System:       handler.NewSystemHandler(pool, rdb, svc, log),
	}

	var limiter *middleware.RateLimiter
	stopCleanup := make(chan struct{})
	if cfg.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
		limiter.StartCleanup(stopCleanup)
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, limiter, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	close(stopCleanup)

	// 2. Stop alert and timeout timers; active sessions are abandoned.
	svc.Shutdown()

	// 3. Stop background workers and wait for queues to drain.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
