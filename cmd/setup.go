package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udyogmitra/mitra/db"
	"github.com/udyogmitra/mitra/internal/assistant"
	"github.com/udyogmitra/mitra/internal/catalog"
	"github.com/udyogmitra/mitra/internal/config"
	"github.com/udyogmitra/mitra/internal/generate"
	"github.com/udyogmitra/mitra/internal/history"
	"github.com/udyogmitra/mitra/internal/log"
)

// app bundles the wired collaborators shared by the chat, ask, and serve
// commands.
type app struct {
	cfg       *config.Config
	logger    log.Logger
	catalog   *catalog.Catalog
	assistant *assistant.Assistant
	store     *history.Store // nil when storage is disabled
	pool      *pgxpool.Pool  // nil when storage is disabled
}

func newLogger() log.Logger {
	return log.New(log.Config{
		Level: levelFromEnv(),
		JSON:  os.Getenv("MITRA_LOG_FORMAT") == "json",
	})
}

func levelFromEnv() slog.Level {
	switch os.Getenv("MITRA_LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setup loads configuration and wires the full application. Callers own
// the returned app and must call close when done.
func setup(ctx context.Context) (*app, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	logger := newLogger()

	feed := catalog.NewFeed(time.Duration(cfg.FeedTimeout)*time.Second, logger)
	cat := catalog.Load(ctx, feed, cfg.FAQSheetURL, cfg.VideoSheetURL, logger)
	stats := cat.Stats()
	logger.Info("catalog loaded", "faqs", stats.FAQCount, "videos", stats.VideoCount)

	gen, err := generate.New(ctx, generate.Config{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.ModelName,
		Timeout: time.Duration(cfg.GenerateTimeout) * time.Second,
		Logger:  logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("creating generator: %w", err)
	}

	var (
		store *history.Store
		pool  *pgxpool.Pool
	)
	if cfg.StorageEnabled {
		if err := db.Migrate(cfg.PostgresURL()); err != nil {
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		pool, err = pgxpool.New(ctx, cfg.PostgresConnectionString())
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		store, err = history.NewStore(pool, logger)
		if err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("creating history store: %w", err)
		}
	}

	var recorder assistant.TurnRecorder
	if store != nil {
		recorder = store
	}

	asst, err := assistant.New(assistant.Config{
		Catalog:   cat,
		Generator: gen,
		Recorder:  recorder,
		Logger:    logger,
		Options: assistant.Options{
			FAQMinScore:     cfg.FAQMinScore,
			FAQMaxResults:   cfg.FAQMaxResults,
			VideoMinScore:   cfg.VideoMinScore,
			VideoMaxResults: cfg.VideoMaxResults,
		},
	})
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		return nil, nil, fmt.Errorf("creating assistant: %w", err)
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		catalog:   cat,
		assistant: asst,
		store:     store,
		pool:      pool,
	}
	closeFn := func() {
		// Drain in-flight turn and feedback writes before dropping the
		// pool they write through.
		asst.Wait()
		if pool != nil {
			pool.Close()
		}
	}
	return a, closeFn, nil
}

// setupStorage wires only the config and history store, for commands
// that manage persisted data without needing the model or catalog.
func setupStorage(ctx context.Context) (*config.Config, *history.Store, *pgxpool.Pool, log.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}
	if !cfg.StorageEnabled {
		return nil, nil, nil, nil, errors.New("storage is disabled; set MITRA_STORAGE_ENABLED=true or DATABASE_URL")
	}

	logger := newLogger()

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	pool, err := pgxpool.New(ctx, cfg.PostgresConnectionString())
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	store, err := history.NewStore(pool, logger)
	if err != nil {
		pool.Close()
		return nil, nil, nil, nil, fmt.Errorf("creating history store: %w", err)
	}
	return cfg, store, pool, logger, nil
}
