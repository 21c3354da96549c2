package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ZoneWatch/internal/domain/models"
	domrepo "ZoneWatch/internal/domain/repository"
	"ZoneWatch/internal/services/zones"
	"ZoneWatch/internal/usecase"

	"github.com/labstack/echo/v4"
)

type mapSource map[string][]models.Candle

func (s mapSource) FetchCandles(_ context.Context, symbol string, interval domrepo.Interval, _ domrepo.FetchRange) ([]models.Candle, error) {
	cs, ok := s[symbol+"/"+string(interval)]
	if !ok {
		return nil, domrepo.ErrNoData
	}
	return cs, nil
}

type nopMetrics struct{}

func (nopMetrics) RecordZones(string, string, models.OutcomeSummary) {}
func (nopMetrics) RecordOrder(string, models.Side)                   {}
func (nopMetrics) RecordError(string)                                {}
func (nopMetrics) RecordLastPrice(string, float64)                   {}
func (nopMetrics) RecordLatency(string, float64)                     {}

type memOrders struct{ rows []*models.OrderRecord }

func (m *memOrders) Init(context.Context) error { return nil }
func (m *memOrders) Store(_ context.Context, o *models.OrderRecord) error {
	m.rows = append(m.rows, o)
	return nil
}
func (m *memOrders) Query(_ context.Context, symbol string, limit int) ([]*models.OrderRecord, error) {
	out := []*models.OrderRecord{}
	for _, o := range m.rows {
		if symbol == "" || o.Symbol == symbol {
			out = append(out, o)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
func (m *memOrders) Health(context.Context) error { return nil }
func (m *memOrders) Close() error                 { return nil }

type envelope struct {
	Status int             `json:"status"`
	Data   json.RawMessage `json:"data"`
}

var t0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func bar(i int, o, h, l, c float64) models.Candle {
	return models.Candle{Time: t0.AddDate(0, 0, i), Open: o, High: h, Low: l, Close: c}
}

func newTestServer(t *testing.T) (*echo.Echo, *ZonesEchoHandler, *memOrders) {
	t.Helper()
	src := mapSource{
		"AAPL/1d": {
			bar(0, 100, 110, 100, 108),
			bar(1, 108, 110, 105, 109),
			bar(2, 109, 111, 106, 108),
			bar(3, 110, 118, 110, 116),
		},
		"BAD/1d": {bar(0, 100, 90, 95, 96)},
		"AAPL/1mo": {
			bar(0, 90, 120, 90, 118),
			bar(31, 118, 120, 100, 112),
			bar(62, 112, 140, 112, 138),
		},
	}
	reg, err := zones.NewRegistry(zones.DefaultThresholds())
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	analyzer := usecase.NewZoneAnalyzer(src, reg, nopMetrics{}, nil, 2)
	catalog := usecase.NewCatalog(nil, nil)
	builder := usecase.NewCatalogBuilder(analyzer, catalog, usecase.CatalogBuilderConfig{
		Symbols:  []string{"AAPL"},
		Interval: domrepo.Interval1d,
	}, nil)
	orders := &memOrders{}

	h := NewZonesEchoHandler(nil, analyzer, usecase.NewCandlesUseCase(src), catalog, builder, orders)
	e := echo.New()
	h.RegisterRoutes(e)
	return e, h, orders
}

func do(t *testing.T, e *echo.Echo, method, target string) (int, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: decode body %q: %v", method, target, rec.Body.String(), err)
	}
	if env.Status != rec.Code {
		t.Fatalf("envelope status %d differs from HTTP status %d", env.Status, rec.Code)
	}
	return rec.Code, env
}

func TestZonesEndpoint(t *testing.T) {
	e, _, _ := newTestServer(t)

	code, env := do(t, e, http.MethodGet, "/api/zones?symbol=aapl")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", code, env.Data)
	}
	var rep models.ZoneReport
	if err := json.Unmarshal(env.Data, &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.Symbol != "AAPL" || len(rep.Zones) != 1 || rep.Zones[0].Outcome != models.OutcomeFresh {
		t.Fatalf("unexpected report %+v", rep)
	}
}

func TestZonesEndpointErrors(t *testing.T) {
	e, _, _ := newTestServer(t)
	cases := []struct {
		target string
		want   int
	}{
		{"/api/zones", http.StatusBadRequest},
		{"/api/zones?symbol=AAPL&interval=2d", http.StatusBadRequest},
		{"/api/zones?symbol=AAPL&from=2024-02-01&to=2024-01-01", http.StatusBadRequest},
		{"/api/zones?symbol=AAPL&preset=wild", http.StatusBadRequest},
		{"/api/zones?symbol=%3Bdrop", http.StatusBadRequest},
		{"/api/orders?symbol=A%20B", http.StatusBadRequest},
		{"/api/zones?symbol=NONE", http.StatusNotFound},
		{"/api/zones?symbol=BAD", http.StatusUnprocessableEntity},
		{"/api/zones/nested?symbol=AAPL&mode=sideways", http.StatusBadRequest},
		{"/api/zones/nested?symbol=AAPL&preset=wild", http.StatusBadRequest},
		{"/api/candles?symbol=NONE", http.StatusNotFound},
	}
	for _, c := range cases {
		if code, env := do(t, e, http.MethodGet, c.target); code != c.want {
			t.Fatalf("%s: expected %d, got %d: %s", c.target, c.want, code, env.Data)
		}
	}
}

func TestNestedZonesEndpoint(t *testing.T) {
	e, _, _ := newTestServer(t)
	code, env := do(t, e, http.MethodGet, "/api/zones/nested?symbol=AAPL&preset=strict")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", code, env.Data)
	}
	var rep models.NestedZoneReport
	if err := json.Unmarshal(env.Data, &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rep.HigherZones) != 1 || len(rep.Nested) != 1 || rep.Nested[0].UpperBound != 111 {
		t.Fatalf("unexpected nested report %+v", rep)
	}
}

func TestCandlesEndpoint(t *testing.T) {
	e, _, _ := newTestServer(t)
	code, env := do(t, e, http.MethodGet, "/api/candles?symbol=AAPL&limit=3")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var res usecase.GetCandlesResult
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Count != 3 || res.Candles[2].Close != 116 {
		t.Fatalf("unexpected candles %+v", res)
	}
}

func TestCatalogRefreshAndRead(t *testing.T) {
	e, _, _ := newTestServer(t)

	code, env := do(t, e, http.MethodGet, "/api/catalog")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var cat catalogResponse
	_ = json.Unmarshal(env.Data, &cat)
	if cat.Count != 0 {
		t.Fatalf("expected empty catalog, got %+v", cat)
	}

	if code, _ := do(t, e, http.MethodPost, "/api/catalog/refresh"); code != http.StatusOK {
		t.Fatalf("refresh: %d", code)
	}

	_, env = do(t, e, http.MethodGet, "/api/catalog?latest=true")
	if err := json.Unmarshal(env.Data, &cat); err != nil {
		t.Fatalf("decode: %v", err)
	}
	lv := cat.Levels["AAPL"]
	if cat.Count != 1 || len(lv) != 1 || lv[0].Price != 111 || lv[0].Side != models.Buy {
		t.Fatalf("unexpected catalog %+v", cat)
	}
}

func TestOrdersEndpoint(t *testing.T) {
	e, _, orders := newTestServer(t)
	orders.rows = []*models.OrderRecord{
		models.NewOrderRecord("AAPL", models.Buy, 111, 111, "1d", t0),
		models.NewOrderRecord("MSFT", models.Sell, 98, 98, "1d", t0),
	}

	code, env := do(t, e, http.MethodGet, "/api/orders?symbol=msft")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var list struct {
		Rows  []models.OrderRecord `json:"rows"`
		Total int64                `json:"total"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Total != 1 || list.Rows[0].Symbol != "MSFT" {
		t.Fatalf("unexpected orders %+v", list)
	}

	if code, _ := do(t, e, http.MethodGet, "/api/orders?limit=0"); code != http.StatusOK {
		t.Fatalf("limit=0 falls back to the default, got %d", code)
	}
	if code, _ := do(t, e, http.MethodGet, "/api/orders?limit=5000"); code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversize limit, got %d", code)
	}
}

func TestHealthz(t *testing.T) {
	e, h, _ := newTestServer(t)
	h.AddHealthCheck("orders", func(context.Context) error { return nil })
	if code, _ := do(t, e, http.MethodGet, "/healthz"); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	h.AddHealthCheck("redis", func(context.Context) error { return errors.New("connection refused") })
	code, env := do(t, e, http.MethodGet, "/healthz")
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	var out map[string]string
	_ = json.Unmarshal(env.Data, &out)
	if out["orders"] != "ok" || out["redis"] != "connection refused" {
		t.Fatalf("unexpected health body %v", out)
	}
}
