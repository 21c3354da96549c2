package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

type scanRequest struct {
	Symbol        string `query:"symbol" validate:"required,symbol"`
	LowerInterval string `query:"lower_interval" default:"1d" validate:"oneof=1d 1wk 1mo"`
	Preset        string `query:"preset" validate:"omitempty,oneof=default strict"`
	Limit         int    `query:"limit" default:"100" validate:"gte=1,lte=1000"`
}

func bindQuery(t *testing.T, query string) (*scanRequest, []ValidationError) {
	t.Helper()
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/?"+query, nil), httptest.NewRecorder())
	req := &scanRequest{}
	res := ReadAndValidateRequest(c, req)
	if res == nil {
		return req, nil
	}
	errs, ok := res.([]ValidationError)
	if !ok {
		t.Fatalf("unexpected result type %T", res)
	}
	return req, errs
}

func TestReadAndValidateRequestDefaults(t *testing.T) {
	req, errs := bindQuery(t, "symbol=BRK-B")
	if errs != nil {
		t.Fatalf("unexpected errors %+v", errs)
	}
	if req.LowerInterval != "1d" || req.Limit != 100 {
		t.Fatalf("defaults not applied: %+v", req)
	}
	for _, sym := range []string{"%5EGSPC", "EURUSD%3DX", "7203.T"} {
		if _, errs := bindQuery(t, "symbol="+sym); errs != nil {
			t.Fatalf("%s should be accepted: %+v", sym, errs)
		}
	}
}

func TestReadAndValidateRequestMessages(t *testing.T) {
	cases := []struct {
		query, code, field, contains string
	}{
		{"", "ERR_REQUIRED", "symbol", "symbol is required"},
		{"symbol=A%3BB", "ERR_SYMBOL", "symbol", "is not a ticker symbol"},
		{"symbol=AAPL&lower_interval=2d", "ERR_ONEOF", "lower_interval", "must be a candle interval: 1d, 1wk, 1mo"},
		{"symbol=AAPL&preset=wild", "ERR_ONEOF", "preset", "must be a threshold preset"},
		{"symbol=AAPL&limit=5000", "ERR_LTE", "limit", "at most 1000"},
	}
	for _, tc := range cases {
		_, errs := bindQuery(t, tc.query)
		if len(errs) != 1 {
			t.Fatalf("%q: expected one error, got %+v", tc.query, errs)
		}
		e := errs[0]
		if e.Code != tc.code || e.Field != tc.field || !strings.Contains(e.Message, tc.contains) {
			t.Fatalf("%q: unexpected error %+v", tc.query, e)
		}
	}
}

func TestReadAndValidateRequestBindError(t *testing.T) {
	_, errs := bindQuery(t, "symbol=AAPL&limit=abc")
	if len(errs) != 1 || errs[0].Code != "ERR_BIND" {
		t.Fatalf("expected a bind error, got %+v", errs)
	}
}
