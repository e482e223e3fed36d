package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"svc/internal/api"
	"svc/internal/commit"
	"svc/internal/config"
	"svc/internal/logging"
	"svc/internal/middleware"
	"svc/internal/repo"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load(config.Path())
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	// Initialize logger
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer logger.Sync()

	scheme, err := commit.ParseScheme(cfg.IDScheme)
	if err != nil {
		logger.Fatal("invalid id scheme", zap.Error(err))
	}

	// Open the served repository, creating it on first start
	opts := repo.Options{
		Logger:    logger.Logger,
		Scheme:    scheme,
		CacheSize: cfg.Storage.CacheSize,
		InMemory:  cfg.Storage.InMemory,
	}
	r, err := repo.Open(cfg.Storage.Root, opts)
	if errors.Is(err, repo.ErrNotRepository) {
		r, err = repo.Init(cfg.Storage.Root, opts)
	}
	if err != nil {
		logger.Fatal("failed to open repository", zap.Error(err))
	}
	defer r.Close()

	// Set up router
	mux := http.NewServeMux()
	api.NewHandler(r, logger).Register(mux)

	// Apply middleware
	handler := middleware.Chain(
		mux,
		middleware.Logger(logger),
		middleware.RequestID,
		middleware.Recover(logger),
	)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("starting server",
		zap.String("address", srv.Addr),
		zap.String("root", r.Root),
		zap.String("scheme", string(r.Scheme())))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", zap.Error(err))
	}
}
