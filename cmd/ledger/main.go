package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/retailbank/ledger/internal/config"
	"github.com/retailbank/ledger/internal/db"
	"github.com/retailbank/ledger/internal/handlers"
	"github.com/retailbank/ledger/internal/notify"
	"github.com/retailbank/ledger/internal/pending"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger("ledger-api")
	slog.SetDefault(logger)

	logger.Info("starting ledger api",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("ledger api stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	database, err := db.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}

	store, closeStore, err := newPendingStore(ctx, &cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	publisher, err := notify.NewPublisher(&cfg.AMQP, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	notifier := notify.NewNotifier(publisher, logger)

	router, err := handlers.NewRouter(database, cfg, pending.NewWorkflows(store), notifier, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	return nil
}

// newPendingStore picks Redis when REDIS_URL is set. The in-process store
// only works for a single API instance.
func newPendingStore(ctx context.Context, cfg *config.RedisConfig, logger *slog.Logger) (pending.Store, func(), error) {
	if cfg.URL == "" {
		logger.Warn("REDIS_URL not set, pending transfers and withdrawals are held in memory")
		return pending.NewMemoryStore(), func() {}, nil
	}

	store, err := pending.NewRedisStore(ctx, cfg.URL, cfg.KeyPrefix)
	if err != nil {
		return nil, nil, err
	}

	return store, func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close redis client", "error", err)
		}
	}, nil
}
