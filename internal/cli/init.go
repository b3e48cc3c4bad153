// Package cli holds the start-up steps shared by cmd/intentdash and
// cmd/intentctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"intentdash/internal/config"
	"intentdash/internal/feed"
	"intentdash/internal/feed/backend"
	"intentdash/internal/feed/memory"
	applog "intentdash/internal/log"
	"intentdash/internal/storage"
	memstore "intentdash/internal/storage/memory"
)

// PreferenceStore is what the theme store and /readyz need from the
// preference backend.
type PreferenceStore interface {
	GetPreference(ctx context.Context, key string) (string, error)
	SetPreference(ctx context.Context, key, value string) error
	Ping(ctx context.Context) error
	Close() error
}

// SetupLogger builds the process logger from LOG_LEVEL and LOG_FORMAT and
// makes it the slog default.
func SetupLogger(cfg *config.Config) *applog.Logger {
	logger := applog.FromSettings(cfg.LogLevel, cfg.LogFormat, applog.ComponentApp)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitPreferences opens the configured preference store. The sqlite store
// runs its migrations first.
func InitPreferences(cfg *config.Config, logger *applog.Logger) (PreferenceStore, error) {
	log := logger.WithComponent(applog.ComponentStorage)
	switch cfg.PreferenceStore {
	case "memory":
		log.Info("Using in-memory preference store")
		return memstore.New(), nil
	default:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open preference store %s: %w", cfg.SQLiteDBPath, err)
		}
		log.Info("Opened SQLite preference store", "path", cfg.SQLiteDBPath, "schema_version", repo.SchemaVersion())
		return repo, nil
	}
}

// Feeds is the live reader plus the built-in dataset it falls back to.
type Feeds struct {
	Live     feed.Reader
	Fallback feed.Reader
	Backend  backend.BackendType
	cleanup  backend.CleanupFunc
}

// Close releases the live backend.
func (f *Feeds) Close() error {
	if f.cleanup == nil {
		return nil
	}
	return f.cleanup()
}

// InitFeeds creates the configured live feed reader.
func InitFeeds(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*Feeds, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	return &Feeds{
		Live:     res.Reader,
		Fallback: memory.NewDefault(),
		Backend:  bcfg.Type,
		cleanup:  res.Cleanup,
	}, nil
}

// GracefulShutdown cancels the returned context on SIGINT or SIGTERM, then
// runs cleanup with a context bounded by timeout. The returned channel closes
// once cleanup has finished.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached", applog.FieldOperation, applog.OpShutdown)
			return
		}
		logger.Info("Shutdown complete", applog.FieldOperation, applog.OpShutdown)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
