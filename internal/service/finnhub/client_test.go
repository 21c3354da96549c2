package finnhub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestDecodeTicks(t *testing.T) {
	ticks := decodeTicks([]byte(`{"type":"trade","data":[{"s":"AAPL","p":189.5,"v":10,"t":1700000000123}]}`))
	if len(ticks) != 1 {
		t.Fatalf("expected 1 tick, got %d", len(ticks))
	}
	if ticks[0].Symbol != "AAPL" || ticks[0].Price != 189.5 || ticks[0].Timestamp != 1700000000 {
		t.Fatalf("unexpected tick: %+v", ticks[0])
	}
	if got := decodeTicks([]byte(`{"type":"ping"}`)); len(got) != 0 {
		t.Fatalf("ping frame produced ticks")
	}
	if got := decodeTicks([]byte(`not json`)); len(got) != 0 {
		t.Fatalf("garbage produced ticks")
	}
}

func TestClientStreamsTrades(t *testing.T) {
	upgrader := websocket.Upgrader{}
	subscribed := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "k" {
			http.Error(w, "no token", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var msg map[string]string
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		subscribed <- msg["symbol"]
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`))
		_ = conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"trade","data":[{"s":"MSFT","p":410.25,"v":3,"t":1700000001000}]}`))
		// hold the connection until the client closes
		_, _, _ = conn.ReadMessage()
	}))
	defer srv.Close()

	c := New(Config{
		APIKey:       "k",
		WebSocketURL: "ws" + strings.TrimPrefix(srv.URL, "http"),
		Symbols:      []string{"MSFT"},
		PingInterval: time.Hour,
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()
	if !c.IsConnected() {
		t.Fatalf("expected connected")
	}
	if err := c.Subscribe(ctx); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if got := <-subscribed; got != "MSFT" {
		t.Fatalf("subscribed %q", got)
	}

	ticks, _ := c.Read(ctx)
	select {
	case tk := <-ticks:
		if tk == nil || tk.Symbol != "MSFT" || tk.Price != 410.25 {
			t.Fatalf("unexpected tick: %+v", tk)
		}
	case <-ctx.Done():
		t.Fatalf("timed out waiting for tick")
	}
}

func TestReadBeforeConnect(t *testing.T) {
	c := New(Config{WebSocketURL: "ws://127.0.0.1:1"}, nil)
	ticks, errs := c.Read(context.Background())
	if err := <-errs; err != ErrNotConnected {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if _, ok := <-ticks; ok {
		t.Fatalf("tick channel should be closed")
	}
	if err := c.Subscribe(context.Background()); err == nil {
		t.Fatalf("subscribe should fail when not connected")
	}
}
