package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stylecore/internal/catalog"
	"stylecore/internal/config"
	"stylecore/internal/handler"
	"stylecore/internal/middleware"
	"stylecore/internal/repository"
	"stylecore/internal/router"
	"stylecore/internal/service"
	"stylecore/internal/store"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting stylecore API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL when configured and reachable, otherwise the JSON file.
	dispatcher := store.NewDispatcher(logger,
		store.PostgresOpener(cfg.Database, logger),
		store.FileOpener(cfg.Store.DataFile, logger),
	)
	if err := dispatcher.Open(ctx); err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer dispatcher.Close()
	logger.Info().Str("backend", dispatcher.Mode()).Msg("storage backend selected")

	repos := repository.New(dispatcher, logger)
	txm := repository.NewTxManager(dispatcher, logger)

	if cfg.Seed.File != "" {
		if err := seedCatalogue(ctx, cfg, txm, logger); err != nil {
			return err
		}
	}

	productService := service.NewProductService(repos.Products, logger)
	cartService := service.NewCartService(repos.Cart, repos.Products, logger)
	wishlistService := service.NewWishlistService(repos.Users, repos.Products, logger)
	orderService := service.NewOrderService(txm, repos.Orders, logger)
	userService := service.NewUserService(repos.Users, repos.Addresses, logger)

	handlers := router.Handlers{
		Products: handler.NewProductHandler(productService, logger),
		Cart:     handler.NewCartHandler(cartService, wishlistService, logger),
		Orders:   handler.NewOrderHandler(orderService, logger),
		Users:    handler.NewUserHandler(userService, handler.LogNotifier{Logger: logger}, logger),
	}

	limiter := middleware.NewRateLimiter(ctx, cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logger)
	mux := router.New(handlers, dispatcher, limiter, cfg.Auth.APIKey, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// seedCatalogue upserts the configured catalogue file, reading it from S3
// when enabled and from the local filesystem otherwise.
func seedCatalogue(ctx context.Context, cfg *config.Config, txm repository.TxManager, logger zerolog.Logger) error {
	fileLoader := catalog.NewFileLoader(logger)

	var s3Loader catalog.Loader
	if cfg.S3.Enabled {
		l, err := catalog.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 loader, falling back to local file system only")
		} else {
			s3Loader = l
		}
	}

	loader := catalog.NewFallbackLoader(s3Loader, fileLoader, cfg.S3.Prefix, cfg.S3.Enabled, logger)

	n, err := catalog.NewSeeder(loader, txm, logger).Seed(ctx, cfg.Seed.File)
	if err != nil {
		return fmt.Errorf("failed to seed catalogue from %s: %w", cfg.Seed.File, err)
	}
	logger.Info().Int("products", n).Str("source", cfg.Seed.File).Msg("catalogue seeded")
	return nil
}
