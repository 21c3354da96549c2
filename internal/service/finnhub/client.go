package finnhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"ZoneWatch/internal/domain/models"
	drepo "ZoneWatch/internal/domain/repository"
	applogger "ZoneWatch/pkg/logger"

	"github.com/gorilla/websocket"
)

// ErrNotConnected is returned by Subscribe and Read before Connect succeeds.
var ErrNotConnected = errors.New("finnhub not connected")

// Config holds the stream settings.
type Config struct {
	APIKey         string
	WebSocketURL   string
	Symbols        []string
	ReconnectDelay time.Duration
	PingInterval   time.Duration
}

// Client implements a MarketStream backed by the Finnhub trades WebSocket.
type Client struct {
	cfg    Config
	dialer *websocket.Dialer
	log    *applogger.Logger

	mu        sync.RWMutex
	writeMu   sync.Mutex
	conn      *websocket.Conn
	connected bool
}

var _ drepo.MarketStream = (*Client)(nil)

// New creates a new Finnhub MarketStream.
func New(cfg Config, log *applogger.Logger) *Client {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 30 * time.Second
	}
	if log == nil {
		log = applogger.Nop()
	}
	return &Client{cfg: cfg, dialer: websocket.DefaultDialer, log: log}
}

// Connect establishes the WebSocket connection.
func (c *Client) Connect(ctx context.Context) error {
	u, err := url.Parse(c.cfg.WebSocketURL)
	if err != nil {
		return fmt.Errorf("finnhub url: %w", err)
	}
	q := u.Query()
	q.Set("token", c.cfg.APIKey)
	u.RawQuery = q.Encode()

	conn, _, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("finnhub connect: %w", err)
	}
	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()
	c.log.Info("finnhub connected", applogger.Int("symbols", len(c.cfg.Symbols)))
	return nil
}

// Subscribe subscribes to configured symbols.
func (c *Client) Subscribe(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}
	for _, s := range c.cfg.Symbols {
		if err := c.writeJSON(map[string]string{"type": "subscribe", "symbol": s}); err != nil {
			return fmt.Errorf("subscribe %s: %w", s, err)
		}
	}
	c.log.Debug("finnhub subscribed", applogger.Strings("symbols", c.cfg.Symbols))
	return nil
}

func (c *Client) writeJSON(v interface{}) error {
	conn := c.current()
	if conn == nil {
		return ErrNotConnected
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(v)
}

func (c *Client) ping() {
	conn := c.current()
	if conn == nil {
		return
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

func (c *Client) current() *websocket.Conn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected {
		return nil
	}
	return c.conn
}

type fhTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	V float64 `json:"v"`
	T int64   `json:"t"` // ms
}

type fhMessage struct {
	Type string    `json:"type"`
	Data []fhTrade `json:"data"`
}

// decodeTicks turns one frame into ticks. Pings and other non-trade frames yield none.
func decodeTicks(b []byte) []*models.Tick {
	var m fhMessage
	if err := json.Unmarshal(b, &m); err != nil || m.Type != "trade" {
		return nil
	}
	out := make([]*models.Tick, 0, len(m.Data))
	for _, d := range m.Data {
		out = append(out, &models.Tick{Symbol: d.S, Timestamp: d.T / 1000, Price: d.P, Volume: d.V})
	}
	return out
}

// Read streams ticks until the context ends or the connection fails. The error
// channel receives at most one error and both channels are closed on exit.
// Ticks are dropped when the consumer falls behind.
func (c *Client) Read(ctx context.Context) (<-chan *models.Tick, <-chan error) {
	ticks := make(chan *models.Tick, 1024)
	errs := make(chan error, 1)

	conn := c.current()
	if conn == nil {
		errs <- ErrNotConnected
		close(ticks)
		close(errs)
		return ticks, errs
	}

	readCtx, cancel := context.WithCancel(ctx)
	go func() {
		ticker := time.NewTicker(c.cfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-readCtx.Done():
				return
			case <-ticker.C:
				c.ping()
			}
		}
	}()

	go func() {
		defer cancel()
		defer close(ticks)
		defer close(errs)
		for {
			if readCtx.Err() != nil {
				return
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				if readCtx.Err() == nil {
					errs <- fmt.Errorf("finnhub read: %w", err)
				}
				return
			}
			for _, t := range decodeTicks(b) {
				select {
				case ticks <- t:
				default:
				}
			}
		}
	}()

	return ticks, errs
}

// Reconnect closes the connection, waits the reconnect delay and reconnects.
func (c *Client) Reconnect(ctx context.Context) error {
	_ = c.Close()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(c.cfg.ReconnectDelay):
	}
	if err := c.Connect(ctx); err != nil {
		return err
	}
	return c.Subscribe(ctx)
}

// Close closes the WS connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// IsConnected indicates status.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
