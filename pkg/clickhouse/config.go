package clickhouse

import (
	"fmt"
	"time"
)

// Config is the connection used by the order and candle stores. Both only
// append small batches and read by symbol, so the pool stays small.
type Config struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"9000" validate:"gt=0,lte=65535"`
	Database string `yaml:"database" default:"zonewatch" validate:"required"`
	User     string `yaml:"user" default:"default"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns" default:"4" validate:"gte=1"`
	// AsyncInsert batches candle write-through server side. Inserts still wait
	// for the flush, so an order is never acknowledged before it is stored.
	AsyncInsert bool          `yaml:"async_insert"`
	DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout time.Duration `yaml:"read_timeout" default:"10s"`
}

func (c Config) normalize() (Config, error) {
	if c.Host == "" {
		return c, fmt.Errorf("host is required")
	}
	if c.Database == "" {
		return c, fmt.Errorf("database is required")
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.MaxConns <= 0 {
		c.MaxConns = 4
	}
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	return c, nil
}
