package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Client wraps a single-writer SQLite handle.
type Client struct {
	db   *sql.DB
	path string
}

// ClientOption configures Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	busyTimeout     time.Duration
	connMaxLifetime time.Duration
}

// WithBusyTimeout sets how long a statement waits on a locked database.
func WithBusyTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.busyTimeout = d
	}
}

// WithConnMaxLifetime overrides the connection lifetime.
func WithConnMaxLifetime(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.connMaxLifetime = d
	}
}

// New opens (and creates if needed) the SQLite database at path.
func New(path string, opts ...ClientOption) (*Client, error) {
	if path == "" {
		return nil, errors.New("database path is empty")
	}
	cfg := &clientConfig{busyTimeout: 5 * time.Second, connMaxLifetime: time.Hour}
	for _, opt := range opts {
		opt(cfg)
	}

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// single writer; also keeps one shared :memory: database alive
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(cfg.connMaxLifetime)
	if path == MemoryPath {
		db.SetConnMaxLifetime(0)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout.Milliseconds())); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite pragma: %w", err)
	}
	return &Client{db: db, path: path}, nil
}

// DB returns *sql.DB for direct use.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Path returns the database path.
func (c *Client) Path() string {
	return c.path
}

// InitSchema runs idempotent DDL statements in order.
func (c *Client) InitSchema(ctx context.Context, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := c.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Health performs health check.
func (c *Client) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close releases the underlying DB handle.
func (c *Client) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}
