package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"media-favorites/internal/adapter/api/rest"
	"media-favorites/internal/adapter/cache/redis"
	"media-favorites/internal/adapter/events/kafka"
	repo "media-favorites/internal/adapter/storage/postgres"
	"media-favorites/internal/config"
	"media-favorites/internal/core/ports"
	"media-favorites/internal/core/service"
	"media-favorites/internal/observability"
)

// -- MAIN --

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load .env file
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, relying on environment variables")
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Init Tracing
	tpShutdown, err := observability.InitTracerProvider(ctx, "media-favorites", cfg.OtelExporterEndpoint)
	if err != nil {
		logger.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := tpShutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", "error", err)
		}
	}()

	// Init DB
	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("Unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// Run Migrations (Apply on Startup)
	if err := repo.RunMigrations(ctx, dbPool, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Metrics: DB Stats Poller
	observability.StartDBStatsCollector(ctx, dbPool)

	checks := map[string]rest.HealthCheck{"postgres": dbPool.Ping}

	// Init Cache
	var cache ports.Cache = redis.Noop{}
	if cfg.RedisAddr != "" {
		redisAdapter := redis.NewAdapter(cfg.RedisAddr, cfg.CacheTTL)
		defer redisAdapter.Close()
		cache = redisAdapter
		checks["redis"] = redisAdapter.Ping
	} else {
		logger.Warn("REDIS_ADDR not set, favorites snapshot cache disabled")
	}
	// Wrap with metrics
	cache = observability.NewInstrumentedCache(cache)

	// Init Events
	var events ports.EventPublisher = kafka.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafka.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("failed to close kafka writer", "error", err)
			}
		}()
		events = publisher
		logger.Info("publishing favorite events", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	// Repository Init
	favRepo := repo.NewRepository(dbPool)
	userRepo := repo.NewUserRepository(dbPool)

	// Service Init
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL)
	favSvc := observability.NewInstrumentedFavoriteService(service.NewService(favRepo, cache, events, logger))
	userSvc := service.NewUserService(userRepo, favSvc, logger)

	// Init Handlers
	favHandler := rest.NewHandler(favSvc, logger)
	authHandler := rest.NewAuthHandler(authSvc, logger)
	userHandler := rest.NewUserHandler(userSvc, logger)

	// Init Router
	router := rest.NewRouter(favHandler, authHandler, userHandler, authSvc, rest.Health(logger, checks), logger,
		rest.RequestID, rest.Logger(logger), rest.Recovery(logger), observability.Middleware)

	// Add /metrics endpoint
	// Note: Usually /metrics is on a separate admin port or protected, adding to main mux for simplicity
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful Shutdown
	go func() {
		logger.Info("Starting server", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
