package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ZoneWatch/internal/domain/models"
	drepo "ZoneWatch/internal/domain/repository"
	"ZoneWatch/internal/service/ratelimit"
	xhttp "ZoneWatch/pkg/http"
	applogger "ZoneWatch/pkg/logger"
)

var (
	ErrNoData = drepo.ErrNoData
	// ErrNoPrice means no recent price could be derived for the symbol.
	ErrNoPrice = errors.New("no recent price")
)

// YahooConfig configures the Yahoo Finance chart client.
type YahooConfig struct {
	BaseURL      string
	UserAgent    string
	Timeout      time.Duration
	RateCapacity float64
	RatePerSec   float64
	// Retries re-sends throttled and 5xx requests, starting at RetryBackoff.
	Retries      int
	RetryBackoff time.Duration
}

// YahooClient fetches OHLCV history and recent prices from the v8 chart endpoint.
// Requests share one token bucket.
type YahooClient struct {
	cfg     YahooConfig
	http    *xhttp.Client
	limiter *ratelimit.Limiter
	log     *applogger.Logger
}

var (
	_ drepo.CandleSource = (*YahooClient)(nil)
	_ drepo.PriceSource  = (*YahooClient)(nil)
)

func NewYahooClient(cfg YahooConfig, limiter *ratelimit.Limiter, log *applogger.Logger, opts ...xhttp.ClientOption) *YahooClient {
	if cfg.RateCapacity <= 0 {
		cfg.RateCapacity = 5
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 2
	}
	if limiter == nil {
		limiter = ratelimit.New()
	}
	if log == nil {
		log = applogger.Nop()
	}
	copts := []xhttp.ClientOption{xhttp.WithHeader("Accept", "application/json")}
	if cfg.Timeout > 0 {
		copts = append(copts, xhttp.WithTimeout(cfg.Timeout))
	}
	if cfg.UserAgent != "" {
		copts = append(copts, xhttp.WithHeader("User-Agent", cfg.UserAgent))
	}
	if cfg.Retries > 0 {
		copts = append(copts, xhttp.WithRetry(cfg.Retries, cfg.RetryBackoff))
	}
	return &YahooClient{
		cfg:     cfg,
		http:    xhttp.NewClient(append(copts, opts...)...),
		limiter: limiter,
		log:     log,
	}
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *chartError   `json:"error"`
	} `json:"chart"`
}

type chartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResult struct {
	Meta struct {
		Symbol             string   `json:"symbol"`
		RegularMarketPrice *float64 `json:"regularMarketPrice"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
	} `json:"indicators"`
}

func (c *YahooClient) chart(ctx context.Context, symbol string, query map[string][]string) (*chartResult, error) {
	if err := c.limiter.Wait(ctx, "yahoo", c.cfg.RateCapacity, c.cfg.RatePerSec); err != nil {
		return nil, err
	}
	var resp chartResponse
	target := strings.TrimRight(c.cfg.BaseURL, "/") + "/v8/finance/chart/" + url.PathEscape(symbol)
	err := c.http.GetJSON(ctx, target, query, &resp)
	if err != nil {
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.StatusCode == 404 {
			return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
		}
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("%s: %s: %w", symbol, resp.Chart.Error.Description, ErrNoData)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, ErrNoData)
	}
	return &resp.Chart.Result[0], nil
}

// FetchCandles returns chronological candles. Rows with a missing OHLC value are skipped.
func (c *YahooClient) FetchCandles(ctx context.Context, symbol string, interval drepo.Interval, r drepo.FetchRange) ([]models.Candle, error) {
	start := time.Now()
	q := map[string][]string{
		"interval":       {string(interval)},
		"includePrePost": {"false"},
	}
	if r.IsExplicit() {
		q["period1"] = []string{strconv.FormatInt(r.From.Unix(), 10)}
		q["period2"] = []string{strconv.FormatInt(r.To.Unix(), 10)}
	} else {
		period := r.Period
		if period == "" {
			period = "1y"
		}
		q["range"] = []string{period}
	}

	res, err := c.chart(ctx, symbol, q)
	if err != nil {
		return nil, err
	}
	candles := res.candles(symbol)
	c.log.Debug("yahoo candles",
		applogger.String("symbol", symbol),
		applogger.String("interval", string(interval)),
		applogger.Int("rows", len(candles)),
		applogger.Duration("duration_ms", time.Since(start)))
	return candles, nil
}

func (r *chartResult) candles(symbol string) []models.Candle {
	out := make([]models.Candle, 0, len(r.Timestamp))
	if len(r.Indicators.Quote) == 0 {
		return out
	}
	q := r.Indicators.Quote[0]
	for i, ts := range r.Timestamp {
		o, h, l, cl := at(q.Open, i), at(q.High, i), at(q.Low, i), at(q.Close, i)
		if o == nil || h == nil || l == nil || cl == nil {
			continue
		}
		var vol float64
		if v := at(q.Volume, i); v != nil {
			vol = *v
		}
		out = append(out, models.Candle{
			Time:   time.Unix(ts, 0).UTC(),
			Symbol: symbol,
			Open:   *o,
			High:   *h,
			Low:    *l,
			Close:  *cl,
			Volume: vol,
		})
	}
	return out
}

func at(xs []*float64, i int) *float64 {
	if i >= len(xs) {
		return nil
	}
	return xs[i]
}

// LatestPrice returns the last 1m close of the current session, falling back to
// the quote's regular market price.
func (c *YahooClient) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	res, err := c.chart(ctx, symbol, map[string][]string{
		"interval": {"1m"},
		"range":    {"1d"},
	})
	if err != nil {
		return 0, err
	}
	if len(res.Indicators.Quote) > 0 {
		closes := res.Indicators.Quote[0].Close
		for i := len(closes) - 1; i >= 0; i-- {
			if closes[i] != nil && *closes[i] > 0 {
				return *closes[i], nil
			}
		}
	}
	if p := res.Meta.RegularMarketPrice; p != nil && *p > 0 {
		return *p, nil
	}
	return 0, fmt.Errorf("%s: %w", symbol, ErrNoPrice)
}
