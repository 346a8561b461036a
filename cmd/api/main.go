package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/behnamfe76/user-auth-service/internal/api/http"
	"github.com/behnamfe76/user-auth-service/internal/api/http/handlers"
	"github.com/behnamfe76/user-auth-service/internal/auth"
	"github.com/behnamfe76/user-auth-service/internal/config"
	"github.com/behnamfe76/user-auth-service/internal/events"
	"github.com/behnamfe76/user-auth-service/internal/observability"
	"github.com/behnamfe76/user-auth-service/internal/persistence"
	"github.com/behnamfe76/user-auth-service/internal/repository"
	"github.com/behnamfe76/user-auth-service/internal/service"
	"github.com/behnamfe76/user-auth-service/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	tokens, err := auth.NewTokenCodec(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Fatal("failed to init token codec", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	userService := service.NewUserService(cfg.Auth, service.UserDependencies{
		UserRepo:         repository.NewUserRepository(pg.PoolHandle()),
		LoginAttemptRepo: repository.NewLoginAttemptRepository(redis.Client),
		Hasher:           auth.NewBcryptHasher(cfg.Auth.BcryptCost),
		Tokens:           tokens,
		Dispatcher:       dispatcher,
		Logger:           logger,
	})
	authMiddleware := auth.NewMiddleware(auth.NewAuthenticator(tokens), logger, metrics)

	app := httptransport.NewApp(logger, metrics)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
		"postgres": pg,
		"redis":    redis,
	}, metrics)
	usersHandler := handlers.NewUsersHandler(userService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Users:          usersHandler,
		AuthMiddleware: authMiddleware,
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
