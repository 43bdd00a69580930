package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"storefront/internal/application/usecases"
	"storefront/internal/application/validation"
	"storefront/internal/infrastructure/auth"
	"storefront/internal/infrastructure/cache"
	"storefront/internal/infrastructure/config"
	"storefront/internal/infrastructure/db"
	"storefront/internal/infrastructure/http/handlers"
	"storefront/internal/infrastructure/http/server"
	"storefront/internal/infrastructure/messaging/kafka"
	"storefront/internal/infrastructure/persistence/postgres"
	"storefront/internal/infrastructure/storage"

	"golang.org/x/crypto/bcrypt"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", err)
		}
	}()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	sqldb, err := db.NewDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("DB connection failed", zap.Error(err))
	}
	defer func() {
		if err := sqldb.Close(); err != nil {
			logger.Error("Failed to close DB connection", zap.Error(err))
		}
	}()

	if err := db.RunMigrations(sqldb, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	redisCache := cache.NewCache(cfg.Redis, logger)
	defer func() {
		_ = redisCache.Close()
	}()

	files, err := storage.NewLocalStorage(cfg.Upload, logger)
	if err != nil {
		logger.Fatal("Failed to prepare upload storage", zap.Error(err))
	}

	products := postgres.NewProductRepository(sqldb, logger)
	users := postgres.NewUserRepository(sqldb, logger)
	uow := postgres.NewUnitOfWork(sqldb, logger)
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	tokens := auth.NewJWTIssuer(cfg.Auth.SecretKey, cfg.Auth.TokenTTL)
	validator := validation.NewValidator()

	placeOrderUC := usecases.NewPlaceOrderUseCase(uow, redisCache, validator, logger)
	authenticateUC := usecases.NewAuthenticateUseCase(users, hasher, tokens, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	if cfg.Kafka.Enabled {
		wg.Add(1)
		go kafka.NewOrderConsumer(cfg.Kafka, placeOrderUC, logger).Run(ctx, &wg)
	}

	srv := server.NewServer(server.Handlers{
		Auth: handlers.NewAuthHandler(
			usecases.NewRegisterUserUseCase(users, hasher, validator, logger), authenticateUC, logger),
		Products: handlers.NewProductHandler(
			usecases.NewCreateProductUseCase(products, files, redisCache, validator, logger),
			usecases.NewDeleteProductUseCase(products, files, redisCache, logger),
			usecases.NewGetProductUseCase(products, logger),
			usecases.NewListProductsUseCase(products, redisCache, cfg.Cache.ProductsTTL, logger),
			cfg.Upload.MaxFileSize,
			logger,
		),
		Orders: handlers.NewOrderHandler(placeOrderUC, logger),
		Users:  handlers.NewUserHandler(usecases.NewDeleteUserUseCase(uow, files, redisCache, logger), logger),
		Health: handlers.NewHealthHandler(logger,
			handlers.HealthCheck{Name: "postgres", Required: true, Ping: sqldb.PingContext},
			handlers.HealthCheck{Name: "redis", Ping: redisCache.Ping},
		),
	}, authenticateUC, logger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(":" + cfg.HTTP.Port)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down HTTP server", zap.Error(err))
	}

	wg.Wait()
	logger.Info("Service stopped")
}
