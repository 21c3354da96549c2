package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ZoneWatch/internal/domain/models"
	domrepo "ZoneWatch/internal/domain/repository"
	pkgch "ZoneWatch/pkg/clickhouse"
	applogger "ZoneWatch/pkg/logger"
	"ZoneWatch/pkg/util"
)

// CHCandleStore keeps fetched candles in <database>.candles and serves them back
// as a CandleSource.
type CHCandleStore struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
	now   func() time.Time
}

var _ domrepo.CandleSource = (*CHCandleStore)(nil)

func NewCHCandleStore(ch *pkgch.Client, database string) *CHCandleStore {
	return &CHCandleStore{db: ch.DB(), table: database + ".candles", now: time.Now}
}

// SetLogger injects a structured logger.
func (s *CHCandleStore) SetLogger(l *applogger.Logger) { s.l = l }

// SaveCandles inserts candles in multi-row chunks. Duplicate (symbol, interval, ts)
// rows collapse on merge.
func (s *CHCandleStore) SaveCandles(ctx context.Context, symbol string, interval domrepo.Interval, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	const chunkSize = 2000
	start := time.Now()
	for lo := 0; lo < len(candles); lo += chunkSize {
		hi := lo + chunkSize
		if hi > len(candles) {
			hi = len(candles)
		}
		values := make([]string, 0, hi-lo)
		args := make([]interface{}, 0, (hi-lo)*8)
		for _, c := range candles[lo:hi] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args, symbol, string(interval), c.Time.UTC(), c.Open, c.High, c.Low, c.Close, c.Volume)
		}
		q := fmt.Sprintf("INSERT INTO %s (symbol, interval, ts, open, high, low, close, volume) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.logError("clickhouse save_candles error", symbol, interval, err)
			return fmt.Errorf("save candles: %w", err)
		}
	}
	if s.l != nil {
		s.l.Debug("clickhouse save_candles ok",
			applogger.String("symbol", symbol),
			applogger.String("interval", string(interval)),
			applogger.Int("rows", len(candles)),
			applogger.Duration("duration_ms", time.Since(start)))
	}
	return nil
}

// FetchCandles reads stored candles in ascending time order. Period ranges are
// resolved against the store clock.
func (s *CHCandleStore) FetchCandles(ctx context.Context, symbol string, interval domrepo.Interval, r domrepo.FetchRange) ([]models.Candle, error) {
	from, to := r.From, r.To
	if !r.IsExplicit() {
		to = s.now().UTC()
		from = util.PeriodStart(r.Period, to)
		if from.IsZero() {
			from = time.Unix(0, 0).UTC()
		}
	}
	q := fmt.Sprintf(`
        SELECT ts, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ? AND interval = ? AND ts >= ? AND ts <= ?
        ORDER BY ts ASC`, s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, string(interval), from, to)
	if err != nil {
		s.logError("clickhouse fetch_candles query error", symbol, interval, err)
		return nil, fmt.Errorf("fetch candles: %w", err)
	}
	defer rows.Close()

	out := make([]models.Candle, 0, 256)
	for rows.Next() {
		c := models.Candle{Symbol: symbol}
		if err := rows.Scan(&c.Time, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			s.logError("clickhouse fetch_candles scan error", symbol, interval, err)
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		c.Time = c.Time.UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHCandleStore) logError(msg, symbol string, interval domrepo.Interval, err error) {
	if s.l == nil {
		return
	}
	s.l.Error(msg,
		applogger.String("table", s.table),
		applogger.String("symbol", symbol),
		applogger.String("interval", string(interval)),
		applogger.Error(err))
}
