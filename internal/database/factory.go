package database

import (
	"fmt"
	"path/filepath"

	"inkwell/internal/config"
	"inkwell/internal/engine"
)

// NewDatabaseFromConfig creates a Database implementation based on the
// database config type. File-backed databases are migrated to the
// latest schema on open.
func NewDatabaseFromConfig(cfg config.DatabaseConfig) (engine.Database, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		dbPath := filepath.Join(cfg.DataDir, "workspace.db")
		db, err := NewSQLiteDatabase(dbPath)
		if err != nil {
			return nil, err
		}
		if err := db.MigrateUp(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		return db, nil
	case "memory":
		db, err := NewSQLiteDatabase(":memory:")
		if err != nil {
			return nil, err
		}
		if err := db.MigrateUp(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
