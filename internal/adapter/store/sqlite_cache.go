package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"mindgate-core/internal/domain/entity"
)

// SQLiteCache is the on-device tier: durable, offline-available, single
// device. One table, JSON blob plus expiry; rows past expiry are deleted
// lazily on read.
type SQLiteCache struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteCache(path string) (*SQLiteCache, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS cache_entries (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		expires_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_cache_expires ON cache_entries(expires_at);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize cache schema: %w", err)
	}

	return &SQLiteCache{db: db, now: time.Now}, nil
}

func (c *SQLiteCache) Name() string { return "sqlite" }

func (c *SQLiteCache) Get(ctx context.Context, key string) (*entity.CacheEntry, error) {
	var raw string
	var expiresAt int64
	err := c.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM cache_entries WHERE key = ?", key,
	).Scan(&raw, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite get: %w", err)
	}
	if expiresAt <= c.now().UnixMilli() {
		c.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key)
		return nil, nil
	}
	var entry entity.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	return &entry, nil
}

func (c *SQLiteCache) Set(ctx context.Context, entry *entity.CacheEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO cache_entries (key, value, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`,
		entry.Key, string(raw), entry.ExpiresAt.UnixMilli(),
	)
	return err
}

func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM cache_entries WHERE key = ?", key)
	return err
}

func (c *SQLiteCache) Clear(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, "DELETE FROM cache_entries")
	return err
}

// Purge removes all expired rows, for periodic housekeeping.
func (c *SQLiteCache) Purge(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx,
		"DELETE FROM cache_entries WHERE expires_at <= ?", c.now().UnixMilli())
	return err
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
