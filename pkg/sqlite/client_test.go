package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestNewMemoryAndSchema(t *testing.T) {
	c, err := New(MemoryPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	if err := c.InitSchema(ctx,
		`CREATE TABLE IF NOT EXISTS kv (k TEXT PRIMARY KEY, v TEXT)`,
		`CREATE TABLE IF NOT EXISTS kv (k TEXT PRIMARY KEY, v TEXT)`,
	); err != nil {
		t.Fatalf("schema: %v", err)
	}
	if _, err := c.DB().ExecContext(ctx, `INSERT INTO kv (k, v) VALUES (?, ?)`, "a", "1"); err != nil {
		t.Fatalf("insert: %v", err)
	}
	var v string
	if err := c.DB().QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, "a").Scan(&v); err != nil {
		t.Fatalf("select: %v", err)
	}
	if v != "1" {
		t.Fatalf("got %q", v)
	}
	if err := c.Health(ctx); err != nil {
		t.Fatalf("health: %v", err)
	}
}

func TestNewCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "zw.db")
	c, err := New(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if c.Path() != path {
		t.Fatalf("path=%s", c.Path())
	}
}

func TestNewRejectsEmptyPath(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
