package repository

import (
	"context"
	"database/sql"
	"fmt"

	"ZoneWatch/internal/domain/models"
	domrepo "ZoneWatch/internal/domain/repository"
	pkgch "ZoneWatch/pkg/clickhouse"
)

// ClickHouseOrderStore keeps order records in <database>.orders.
type ClickHouseOrderStore struct {
	db    *sql.DB
	table string
}

var (
	_ domrepo.OrderStorage = (*ClickHouseOrderStore)(nil)
	_ domrepo.OrderSink    = (*ClickHouseOrderStore)(nil)
)

func NewClickHouseOrderStore(ch *pkgch.Client, database string) *ClickHouseOrderStore {
	return &ClickHouseOrderStore{db: ch.DB(), table: database + ".orders"}
}

func (s *ClickHouseOrderStore) Init(ctx context.Context) error {
	return nil // schema init in pkg/clickhouse
}

func (s *ClickHouseOrderStore) Store(ctx context.Context, o *models.OrderRecord) error {
	q := fmt.Sprintf("INSERT INTO %s (id, symbol, side, price, zone_price, interval, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)", s.table)
	if _, err := s.db.ExecContext(ctx, q, o.ID, o.Symbol, string(o.Side), o.Price, o.ZonePrice, o.Interval, o.CreatedAt); err != nil {
		return fmt.Errorf("clickhouse insert order: %w", err)
	}
	return nil
}

func (s *ClickHouseOrderStore) Append(ctx context.Context, o *models.OrderRecord) error {
	return s.Store(ctx, o)
}

func (s *ClickHouseOrderStore) Query(ctx context.Context, symbol string, limit int) ([]*models.OrderRecord, error) {
	q := fmt.Sprintf("SELECT id, symbol, side, price, zone_price, interval, created_at FROM %s", s.table)
	args := []interface{}{}
	if symbol != "" {
		q += " WHERE symbol = ?"
		args = append(args, symbol)
	}
	q += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("clickhouse query orders: %w", err)
	}
	defer rows.Close()

	var out []*models.OrderRecord
	for rows.Next() {
		var o models.OrderRecord
		var side string
		if err := rows.Scan(&o.ID, &o.Symbol, &side, &o.Price, &o.ZonePrice, &o.Interval, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Side = models.Side(side)
		o.CreatedAt = o.CreatedAt.UTC()
		out = append(out, &o)
	}
	return out, rows.Err()
}

func (s *ClickHouseOrderStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseOrderStore) Close() error {
	return nil // managed by pkg
}
