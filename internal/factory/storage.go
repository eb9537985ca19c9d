package factory

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/ronnydonkey/scatterbrain-ai/internal/config"
	"github.com/ronnydonkey/scatterbrain-ai/internal/localstate"
	storepkg "github.com/ronnydonkey/scatterbrain-ai/internal/store"
	storepg "github.com/ronnydonkey/scatterbrain-ai/internal/store/postgres"
	storesqlite "github.com/ronnydonkey/scatterbrain-ai/internal/store/sqlite"
)

// NewStore returns the durable store selected by cfg.DBDriver.
// Postgres launches an async bootstrap check and returns immediately for fast
// startup; SQLite creates its schema synchronously.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		return newPostgresStore(ctx, cfg, log)
	case "sqlite":
		return newSQLiteStore(cfg, log)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}

func newPostgresStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	dsn := cfg.PostgresDSN
	if dsn == "" {
		return nil, fmt.Errorf("%s_POSTGRES_DSN is required when DB_DRIVER=postgres", config.Prefix)
	}

	// Open connection synchronously since health checks need it immediately
	db, err := storepg.Open(dsn)
	if err != nil {
		return nil, err
	}

	// Async bootstrap check with configurable timeout; don't block startup
	go func() {
		bootstrapTimeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
		bootstrapCtx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
		defer cancel()

		if err := storepg.Bootstrap(bootstrapCtx, db); err != nil {
			log.Warn().Err(err).Str("driver", cfg.DBDriver).Msg("store bootstrap check failed")
		} else {
			log.Debug().Str("driver", cfg.DBDriver).Msg("store bootstrap check completed")
		}
	}()

	return storepg.NewWithDB(db), nil
}

func newSQLiteStore(cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	path := cfg.SQLitePath
	if path == "" {
		dir, err := localstate.DataDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "scatterbrain.db")
	}
	db, err := storesqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := storesqlite.EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	log.Debug().Str("path", path).Msg("sqlite store ready")
	return storesqlite.NewWithDB(db), nil
}

// NewLocalState opens the fallback board store.
func NewLocalState(cfg *config.Config) (*localstate.Store, error) {
	return localstate.Open(cfg.LocalStatePath)
}
