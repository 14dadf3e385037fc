package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Config is the stored auth configuration.
type Config struct {
	BaseURL     string
	APIKey      string
	AccessToken string
	UpdatedAt   time.Time
}

// HasToken reports whether an access token is stored.
func (c Config) HasToken() bool {
	return strings.TrimSpace(c.AccessToken) != ""
}

// Complete reports whether every field required to call the backend is present.
func (c Config) Complete() bool {
	return strings.TrimSpace(c.BaseURL) != "" && strings.TrimSpace(c.APIKey) != "" && c.HasToken()
}

// Loader is the read side consumed by the content API client, the auth gate,
// and artwork URL normalization.
type Loader interface {
	Load(ctx context.Context) (Config, bool, error)
}

// Store manages credential persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const schema = `CREATE TABLE IF NOT EXISTS auth_config (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	base_url TEXT NOT NULL DEFAULT '',
	api_key TEXT NOT NULL DEFAULT '',
	access_token TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL
)`

// Open initializes or connects to the credentials database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create credentials directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init credentials schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load returns the stored configuration. The boolean is false when nothing has
// been saved yet.
func (s *Store) Load(ctx context.Context) (Config, bool, error) {
	ctx = ensureContext(ctx)
	var (
		cfg       Config
		updatedAt string
	)
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT base_url, api_key, access_token, updated_at FROM auth_config WHERE id = 1`,
		).Scan(&cfg.BaseURL, &cfg.APIKey, &cfg.AccessToken, &updatedAt)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return Config{}, false, nil
	}
	if err != nil {
		return Config{}, false, fmt.Errorf("load auth config: %w", err)
	}
	if parsed, parseErr := time.Parse(time.RFC3339Nano, updatedAt); parseErr == nil {
		cfg.UpdatedAt = parsed
	}
	return cfg, true, nil
}

// Save replaces the stored configuration. Fields are trimmed and a trailing
// slash on the base URL is dropped.
func (s *Store) Save(ctx context.Context, cfg Config) error {
	ctx = ensureContext(ctx)
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `INSERT INTO auth_config (id, base_url, api_key, access_token, updated_at)
VALUES (1, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	base_url = excluded.base_url,
	api_key = excluded.api_key,
	access_token = excluded.access_token,
	updated_at = excluded.updated_at`,
			baseURL, strings.TrimSpace(cfg.APIKey), strings.TrimSpace(cfg.AccessToken), now)
		if err != nil {
			return fmt.Errorf("save auth config: %w", err)
		}
		return nil
	})
}

// ClearToken forgets the access token but keeps the backend settings so a
// later login only needs a new token.
func (s *Store) ClearToken(ctx context.Context) error {
	ctx = ensureContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339Nano)
	return retryOnBusy(ctx, func() error {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE auth_config SET access_token = '', updated_at = ? WHERE id = 1`, now); err != nil {
			return fmt.Errorf("clear access token: %w", err)
		}
		return nil
	})
}

// Clear removes the stored configuration entirely.
func (s *Store) Clear(ctx context.Context) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM auth_config`); err != nil {
			return fmt.Errorf("clear auth config: %w", err)
		}
		return nil
	})
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
