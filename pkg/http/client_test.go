package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func TestGetJSONHeadersAndQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "zonewatch-test" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if r.URL.Query().Get("interval") != "1d" || r.URL.Query().Get("range") != "1y" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient(WithHeader("User-Agent", "zonewatch-test"))
	var out struct {
		OK bool `json:"ok"`
	}
	err := c.GetJSON(context.Background(), srv.URL+"?range=1y", url.Values{"interval": {"1d"}}, &out)
	if err != nil || !out.OK {
		t.Fatalf("unexpected result ok=%v err=%v", out.OK, err)
	}
}

func TestGetJSONStatusErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "no such symbol", http.StatusNotFound)
	}))
	defer srv.Close()

	err := NewClient(WithRetry(3, time.Millisecond)).GetJSON(context.Background(), srv.URL, nil, nil)
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound || se.Retryable() {
		t.Fatalf("expected a final 404 StatusError, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("404 must not be retried, got %d calls", n)
	}
}

func TestGetJSONRetriesThrottling(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	if err := NewClient(WithRetry(2, time.Millisecond)).GetJSON(context.Background(), srv.URL, nil, &out); err != nil || !out.OK {
		t.Fatalf("expected success after retries, got ok=%v err=%v", out.OK, err)
	}

	atomic.StoreInt32(&calls, 0)
	err := NewClient(WithRetry(1, time.Millisecond)).GetJSON(context.Background(), srv.URL, nil, nil)
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once retries run out, got %v", err)
	}
}
