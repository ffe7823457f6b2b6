// Package storage is the SQLite-backed kv.Store. The whole transaction list
// lives in a single row, mirroring how it sits in browser local storage.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"

	"spendlog/internal/kv"
	applog "spendlog/internal/log"

	_ "modernc.org/sqlite"
)

const table = "kv_entries"

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := squirrel.Select("value").
		From(table).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var value []byte
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return value, nil
}

// Set overwrites the value stored under key.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC()
	query, args, err := squirrel.Insert(table).
		Columns("key", "value", "updated_at").
		Values(key, value, now).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}

	slog.DebugContext(ctx, "Value saved to SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldStorageKey, key,
		"bytes", len(value))
	return nil
}

// UpdatedAt reports when key was last written.
func (s *SQLiteStore) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	query, args, err := squirrel.Select("updated_at").
		From(table).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return time.Time{}, fmt.Errorf("build select: %w", err)
	}

	var ts time.Time
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, kv.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("select updated_at: %w", err)
	}
	return ts, nil
}

var _ kv.Store = (*SQLiteStore)(nil)
