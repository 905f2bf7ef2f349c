package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"snaplog-go/internal/config"
	"snaplog-go/internal/database/migrations"
)

// NewStoreFromConfig creates a SQLiteStore based on the database config type
// and brings its schema to the latest version. A fresh database is migrated
// up; an existing one is only checked, so a half-applied (dirty) schema
// fails loudly instead of being silently re-run.
func NewStoreFromConfig(cfg config.DatabaseConfig) (*SQLiteStore, error) {
	var path string
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		path = filepath.Join(cfg.DataDir, "snaplog.db")
	case "memory":
		path = ":memory:"
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}

	store, err := NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.CheckStatus(store.DB()); err != nil {
		if !errors.Is(err, migrations.ErrNoSchema) {
			store.Close()
			return nil, fmt.Errorf("database schema check: %w", err)
		}
		if err := migrations.Up(store.DB()); err != nil {
			store.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
	}

	return store, nil
}
