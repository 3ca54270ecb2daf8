package persistence

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/spec-kit/complaint-desk/internal/config"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

// SQLite is the embedded single-file store used when no Postgres DSN is
// configured but task history should survive restarts.
type SQLite struct {
	DB *sql.DB
}

// OpenSQLite opens the database at cfg.Path and applies the schema. An
// empty path yields a SQLite with no handle.
func OpenSQLite(ctx context.Context, cfg config.SQLiteConfig, logger *zap.Logger) (*SQLite, error) {
	if cfg.Path == "" {
		return &SQLite{}, nil
	}
	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL;", "PRAGMA foreign_keys=ON;"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite %s: %w", pragma, err)
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	logger.Info("opened sqlite store", zap.String("path", cfg.Path))
	return &SQLite{DB: db}, nil
}

// Enabled reports whether a database was opened.
func (s *SQLite) Enabled() bool {
	return s != nil && s.DB != nil
}

// Ping verifies the handle.
func (s *SQLite) Ping(ctx context.Context) error {
	if !s.Enabled() {
		return ErrNotConfigured
	}
	return s.DB.PingContext(ctx)
}

// Close releases the handle.
func (s *SQLite) Close() {
	if s.Enabled() {
		_ = s.DB.Close()
	}
}
