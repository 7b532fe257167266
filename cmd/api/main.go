package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attire-store/internal/auth"
	"attire-store/internal/config"
	"attire-store/internal/database"
	"attire-store/internal/handler"
	"attire-store/internal/model"
	"attire-store/internal/payment"
	"attire-store/internal/repository"
	"attire-store/internal/router"
	"attire-store/internal/service"
	"attire-store/internal/storage"

	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting attire-store API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	// Initialize image storage with S3 and local fallback
	var imageStore storage.Store
	uploadsDir := ""
	if cfg.S3.Enabled {
		imageStore, err = storage.NewS3Store(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 image store, falling back to local file system")
			imageStore = storage.NewLocalStore(cfg.Store.UploadsDir, logger)
			uploadsDir = cfg.Store.UploadsDir
		}
	} else {
		imageStore = storage.NewLocalStore(cfg.Store.UploadsDir, logger)
		uploadsDir = cfg.Store.UploadsDir
		logger.Info().Msg("using local file system for product images (S3 disabled)")
	}

	// Initialize payment dispatcher; the gateway handler is only available
	// when a Stripe key is configured.
	handlers := map[model.PaymentMethod]payment.Handler{
		model.PaymentMethodMock: payment.NewMockHandler(logger),
	}
	if cfg.Stripe.APIKey != "" {
		handlers[model.PaymentMethodGateway] = payment.NewStripeHandler(payment.StripeConfig{
			APIKey:  cfg.Stripe.APIKey,
			Timeout: cfg.Stripe.Timeout,
		}, logger)
	} else {
		logger.Warn().Msg("no Stripe API key configured, gateway payments unavailable")
	}
	dispatcher := payment.NewDispatcher(handlers, logger)

	// Initialize token provider
	tokens := auth.NewTokenProvider(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Initialize Redis for rate limiting (optional)
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn().Err(err).Msg("failed to connect to Redis, rate limiting disabled")
			redisClient = nil
		}
	}

	// Initialize services
	productService := service.NewProductService(productRepo, imageStore, cfg.Store.Currency, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, userRepo, dispatcher, cfg.Store.Currency, logger)
	authService := service.NewAuthService(userRepo, tokens, logger)

	// Initialize HTTP handlers
	productHandler := handler.NewProductHandler(productService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	authHandler := handler.NewAuthHandler(authService, logger)
	adminHandler := handler.NewAdminHandler(productService, orderService, logger)

	// Initialize router
	mux := router.New(router.Config{
		Products:   productHandler,
		Orders:     orderHandler,
		Auth:       authHandler,
		Admin:      adminHandler,
		Tokens:     tokens,
		Redis:      redisClient,
		UploadsDir: uploadsDir,
		Logger:     logger,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
