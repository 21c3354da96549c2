package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ZoneWatch/internal/domain/models"
	domrepo "ZoneWatch/internal/domain/repository"
	pkgsqlite "ZoneWatch/pkg/sqlite"
)

const sqliteOrderSchema = `
PRAGMA journal_mode=WAL;

CREATE TABLE IF NOT EXISTS orders (
    id TEXT PRIMARY KEY,
    symbol TEXT NOT NULL,
    side TEXT NOT NULL,
    price REAL NOT NULL,
    zone_price REAL NOT NULL,
    interval TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_symbol_created ON orders(symbol, created_at);
`

// SQLiteOrderStore is the default order store and sink. Records are keyed by ID,
// so replays of the same record are ignored.
type SQLiteOrderStore struct {
	db *sql.DB
}

var (
	_ domrepo.OrderStorage = (*SQLiteOrderStore)(nil)
	_ domrepo.OrderSink    = (*SQLiteOrderStore)(nil)
)

func NewSQLiteOrderStore(c *pkgsqlite.Client) *SQLiteOrderStore {
	return &SQLiteOrderStore{db: c.DB()}
}

func (s *SQLiteOrderStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteOrderSchema); err != nil {
		return fmt.Errorf("init orders schema: %w", err)
	}
	return nil
}

func (s *SQLiteOrderStore) Store(ctx context.Context, o *models.OrderRecord) error {
	_, err := s.db.ExecContext(ctx, `
INSERT OR IGNORE INTO orders (id, symbol, side, price, zone_price, interval, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.ID, o.Symbol, string(o.Side), o.Price, o.ZonePrice, o.Interval, o.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// Append implements OrderSink; the write is committed when it returns.
func (s *SQLiteOrderStore) Append(ctx context.Context, o *models.OrderRecord) error {
	return s.Store(ctx, o)
}

// Query returns the newest orders first. An empty symbol matches all symbols.
func (s *SQLiteOrderStore) Query(ctx context.Context, symbol string, limit int) ([]*models.OrderRecord, error) {
	q := `SELECT id, symbol, side, price, zone_price, interval, created_at FROM orders`
	args := []interface{}{}
	if symbol != "" {
		q += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	q += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	out := make([]*models.OrderRecord, 0, limit)
	for rows.Next() {
		var (
			o    models.OrderRecord
			side string
			ms   int64
		)
		if err := rows.Scan(&o.ID, &o.Symbol, &side, &o.Price, &o.ZonePrice, &o.Interval, &ms); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Side = models.Side(side)
		o.CreatedAt = time.UnixMilli(ms).UTC()
		out = append(out, &o)
	}
	return out, rows.Err()
}

func (s *SQLiteOrderStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the client owns the handle.
func (s *SQLiteOrderStore) Close() error { return nil }
