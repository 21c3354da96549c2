package marketdata

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"ZoneWatch/internal/domain/models"
	drepo "ZoneWatch/internal/domain/repository"
	"ZoneWatch/internal/service/cache"
	svcmetrics "ZoneWatch/internal/service/metrics"
	applogger "ZoneWatch/pkg/logger"
)

// CachedSource memoizes candle fetches in a BytesCache. Cache failures are
// logged and fall through to the wrapped source.
type CachedSource struct {
	src   drepo.CandleSource
	cache cache.BytesCache
	ttl   time.Duration
	log   *applogger.Logger
}

func NewCachedSource(src drepo.CandleSource, c cache.BytesCache, ttl time.Duration, log *applogger.Logger) *CachedSource {
	if log == nil {
		log = applogger.Nop()
	}
	return &CachedSource{src: src, cache: c, ttl: ttl, log: log}
}

func candleKey(symbol string, interval drepo.Interval, r drepo.FetchRange) string {
	if r.IsExplicit() {
		return cache.Key("candles", symbol, string(interval),
			strconv.FormatInt(r.From.Unix(), 10), strconv.FormatInt(r.To.Unix(), 10))
	}
	return cache.Key("candles", symbol, string(interval), r.Period)
}

func (s *CachedSource) FetchCandles(ctx context.Context, symbol string, interval drepo.Interval, r drepo.FetchRange) ([]models.Candle, error) {
	if s.ttl <= 0 {
		return s.src.FetchCandles(ctx, symbol, interval, r)
	}
	key := candleKey(symbol, interval, r)
	if b, ok, err := s.cache.GetBytes(ctx, key); err != nil {
		s.log.Warn("candle cache get", applogger.String("key", key), applogger.Error(err))
	} else if ok {
		var candles []models.Candle
		if err := json.Unmarshal(b, &candles); err == nil {
			svcmetrics.CacheLookups.WithLabelValues("hit").Inc()
			return candles, nil
		}
	}
	svcmetrics.CacheLookups.WithLabelValues("miss").Inc()

	candles, err := s.src.FetchCandles(ctx, symbol, interval, r)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(candles); err == nil {
		if err := s.cache.SetBytes(ctx, key, b, s.ttl); err != nil {
			s.log.Warn("candle cache set", applogger.String("key", key), applogger.Error(err))
		}
	}
	return candles, nil
}

// CandleSaver persists fetched candles.
type CandleSaver interface {
	SaveCandles(ctx context.Context, symbol string, interval drepo.Interval, candles []models.Candle) error
}

// StoringSource writes every successful fetch through to a CandleSaver.
// A failed write is logged; the fetched candles are still returned.
type StoringSource struct {
	src   drepo.CandleSource
	saver CandleSaver
	log   *applogger.Logger
}

func NewStoringSource(src drepo.CandleSource, saver CandleSaver, log *applogger.Logger) *StoringSource {
	if log == nil {
		log = applogger.Nop()
	}
	return &StoringSource{src: src, saver: saver, log: log}
}

func (s *StoringSource) FetchCandles(ctx context.Context, symbol string, interval drepo.Interval, r drepo.FetchRange) ([]models.Candle, error) {
	candles, err := s.src.FetchCandles(ctx, symbol, interval, r)
	if err != nil {
		return nil, err
	}
	if err := s.saver.SaveCandles(ctx, symbol, interval, candles); err != nil {
		s.log.Error("store candles",
			applogger.String("symbol", symbol),
			applogger.String("interval", string(interval)),
			applogger.Error(err))
	}
	return candles, nil
}
