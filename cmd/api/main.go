package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/task-tracker/internal/advisory"
	httptransport "github.com/spec-kit/task-tracker/internal/api/http"
	"github.com/spec-kit/task-tracker/internal/api/http/handlers"
	"github.com/spec-kit/task-tracker/internal/auth"
	"github.com/spec-kit/task-tracker/internal/cache"
	"github.com/spec-kit/task-tracker/internal/config"
	"github.com/spec-kit/task-tracker/internal/events"
	"github.com/spec-kit/task-tracker/internal/observability"
	"github.com/spec-kit/task-tracker/internal/persistence"
	"github.com/spec-kit/task-tracker/internal/repository"
	"github.com/spec-kit/task-tracker/internal/service"
	"github.com/spec-kit/task-tracker/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	userRepo, taskRepo := repositories(pg, logger)

	var redis *persistence.Redis
	if cfg.Cache.Backend == "redis" {
		redis = persistence.NewRedis(cfg.Redis, logger)
		defer redis.Close()
	}

	metrics := observability.NewMetrics()
	store, err := cacheStore(cfg.Cache, redis)
	if err != nil {
		logger.Fatal("failed to build cache store", zap.Error(err))
	}
	logger.Info("response cache ready", zap.String("backend", cfg.Cache.Backend))

	dispatcher := worker.NewEventWorker(events.NewInMemoryDispatcher(), 256, logger)
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger), dispatcher)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret)
	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		Tokens:     tokens,
		TokenTTL:   cfg.Auth.TokenTTL(),
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger,
	})
	taskService := service.NewTaskService(service.TaskDependencies{
		TaskRepo:   taskRepo,
		Cache:      cache.New(store, logger, metrics),
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	advisoryService := service.NewAdvisoryService(
		advisory.New(ctx, cfg.Advisory, logger),
		taskService,
		cfg.Advisory.Timeout(),
		logger,
	)

	if cfg.Seed.DemoData {
		if err := service.SeedDemoData(ctx, userRepo, authService, taskService, logger); err != nil {
			logger.Fatal("failed to seed demo data", zap.Error(err))
		}
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env != "development",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tasks:          handlers.NewTasksHandler(taskService),
		AI:             handlers.NewAIHandler(advisoryService),
		Metrics:        handlers.NewMetricsHandler(metrics),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, userRepo, logger),
		LoginRateLimit: cfg.App.LoginRateLimit,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		logger.Warn("event worker did not drain", zap.Error(err))
	}
}

// repositories picks Postgres when a pool is configured and in-memory storage otherwise.
func repositories(pg *persistence.Postgres, logger *zap.Logger) (repository.UserRepository, repository.TaskRepository) {
	if pool := pg.PoolHandle(); pool != nil {
		return repository.NewUserRepository(pool), repository.NewTaskRepository(pool)
	}
	logger.Warn("running on in-memory repositories; data is lost on restart")
	return repository.NewMemoryUserRepository(), repository.NewMemoryTaskRepository()
}

func cacheStore(cfg config.CacheConfig, redis *persistence.Redis) (cache.Store, error) {
	policies := cache.Policies{
		cache.RegionCollection: {Capacity: cfg.Collection.Capacity, TTL: cfg.Collection.TTL()},
		cache.RegionEntity:     {Capacity: cfg.Entity.Capacity, TTL: cfg.Entity.TTL()},
		cache.RegionStats:      {Capacity: cfg.Stats.Capacity, TTL: cfg.Stats.TTL()},
	}
	if redis != nil {
		return cache.NewRedisStore(redis.Client, cfg.KeyPrefix, policies)
	}
	return cache.NewMemoryStore(policies)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
