package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/complaint-desk/internal/api/http"
	"github.com/spec-kit/complaint-desk/internal/api/http/handlers"
	"github.com/spec-kit/complaint-desk/internal/auth"
	"github.com/spec-kit/complaint-desk/internal/config"
	"github.com/spec-kit/complaint-desk/internal/directory"
	"github.com/spec-kit/complaint-desk/internal/events"
	"github.com/spec-kit/complaint-desk/internal/notification"
	"github.com/spec-kit/complaint-desk/internal/observability"
	"github.com/spec-kit/complaint-desk/internal/persistence"
	"github.com/spec-kit/complaint-desk/internal/repository"
	"github.com/spec-kit/complaint-desk/internal/service"
	"github.com/spec-kit/complaint-desk/internal/simulator"
	"github.com/spec-kit/complaint-desk/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	lite, err := persistence.OpenSQLite(ctx, cfg.SQLite, logger)
	if err != nil {
		logger.Fatal("failed to open sqlite", zap.Error(err))
	}
	defer lite.Close()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	bundle, err := directory.LoadFile(cfg.Directory.Path)
	if err != nil {
		logger.Fatal("failed to load directory", zap.String("path", cfg.Directory.Path), zap.Error(err))
	}

	var (
		taskRepo   repository.TaskRepository
		userRepo   repository.UserRepository
		remembered repository.RememberedStore
	)
	switch {
	case pg.Enabled():
		taskRepo = repository.NewTaskRepository(pg.PoolHandle())
		userRepo = repository.NewUserRepository(pg.PoolHandle())
	case lite.Enabled():
		taskRepo = repository.NewSQLiteTaskRepository(lite.DB)
		userRepo = repository.NewSQLiteUserRepository(lite.DB)
	default:
		taskRepo = repository.NewMemoryTaskRepository()
		userRepo = repository.NewMemoryUserRepository()
	}
	if redis.Enabled() {
		remembered = repository.NewRedisRememberedStore(redis.Client, redis.Prefix)
	} else {
		remembered = repository.NewMemoryRememberedStore()
	}

	metrics := observability.NewMetrics()
	center := notification.NewCenter(cfg.Notification)
	defer center.Close()
	sim := simulator.New(simulator.ProfileFromConfig(cfg.Simulator),
		simulator.WithLogger(logger),
		simulator.WithMetrics(metrics))
	dispatcher := events.NewInMemoryDispatcher(logger)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:      userRepo,
		Remembered:    remembered,
		Simulator:     sim,
		Notifications: center,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	taskService := service.NewTaskService(service.TaskDependencies{
		TaskRepo:      taskRepo,
		Workers:       bundle.Workers,
		Catalog:       bundle.Catalog,
		Simulator:     sim,
		Notifications: center,
		Dispatcher:    dispatcher,
		Logger:        logger,
		Metrics:       metrics,
		ReceiptTTL:    cfg.Notification.ReceiptTTL(),
	})
	outbound := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(outbound, center, logger)

	if cfg.Directory.SeedAccounts {
		if err := authService.SeedAccounts(ctx, bundle.Accounts); err != nil {
			logger.Fatal("failed to seed accounts", zap.Error(err))
		}
		logger.Info("demo accounts seeded", zap.Int("count", len(bundle.Accounts)))
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, lite, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Complaints:     handlers.NewComplaintsHandler(taskService, bundle.Catalog),
		Tasks:          handlers.NewTasksHandler(taskService),
		Workers:        handlers.NewWorkersHandler(bundle.Workers),
		Notifications:  handlers.NewNotificationsHandler(center),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
