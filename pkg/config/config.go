package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"ZoneWatch/internal/service/cache"
	"ZoneWatch/internal/services/zones"
	pkgch "ZoneWatch/pkg/clickhouse"
	xhttp "ZoneWatch/pkg/http"
	pkgkafka "ZoneWatch/pkg/kafka"
	applogger "ZoneWatch/pkg/logger"
	"ZoneWatch/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string             `yaml:"environment" default:"development" validate:"required"`
	Log         applogger.Config   `yaml:"log"`
	Server      xhttp.ServerConfig `yaml:"server"`
	Metrics     struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Zones struct {
		// Preset, when set, replaces the explicit thresholds.
		Preset     string           `yaml:"preset" validate:"omitempty,oneof=default strict balanced momentum"`
		Thresholds zones.Thresholds `yaml:"thresholds"`
	} `yaml:"zones"`
	Monitor struct {
		Enabled            bool          `yaml:"enabled" default:"true"`
		Symbols            []string      `yaml:"symbols" default:"[\"AAPL\",\"MSFT\"]" validate:"min=1"`
		Interval           string        `yaml:"interval" default:"1d" validate:"oneof=1m 5m 15m 1h 1d 1wk 1mo"`
		Period             string        `yaml:"period" default:"1y" validate:"oneof=1d 5d 1mo 3mo 6mo 1y 2y 5y 10y max"`
		PollInterval       time.Duration `yaml:"poll_interval" default:"60s" validate:"gt=0"`
		ProximityTolerance float64       `yaml:"proximity_tolerance" default:"0.01" validate:"gt=0,lt=1"`
		PriceSource        string        `yaml:"price_source" default:"yahoo" validate:"oneof=yahoo finnhub"`
		RefreshInterval    time.Duration `yaml:"refresh_interval" default:"1h"`
		IncludeBroken      bool          `yaml:"include_broken"`
		Workers            int           `yaml:"workers" default:"4" validate:"gte=1,lte=64"`
	} `yaml:"monitor"`
	MarketData struct {
		BaseURL   string        `yaml:"base_url" default:"https://query1.finance.yahoo.com" validate:"url"`
		UserAgent string        `yaml:"user_agent" default:"Mozilla/5.0 (compatible; ZoneWatch/1.0)"`
		Timeout   time.Duration `yaml:"timeout" default:"15s"`
		CacheTTL  time.Duration `yaml:"cache_ttl" default:"5m"`
		RateLimit struct {
			Capacity     float64 `yaml:"capacity" default:"5" validate:"gte=1"`
			RefillPerSec float64 `yaml:"refill_per_sec" default:"2" validate:"gt=0"`
		} `yaml:"rate_limit"`
		Retries      int           `yaml:"retries" default:"2" validate:"gte=0,lte=5"`
		RetryBackoff time.Duration `yaml:"retry_backoff" default:"500ms"`

		// StoreCandles writes fetched candles through to ClickHouse.
		StoreCandles bool `yaml:"store_candles"`
	} `yaml:"market_data"`
	Orders struct {
		// Backend receives orders from the monitor; Store serves reads and kafka consumption.
		Backend string `yaml:"backend" default:"sqlite" validate:"oneof=sqlite clickhouse kafka"`
		Store   string `yaml:"store" default:"sqlite" validate:"oneof=sqlite clickhouse"`
	} `yaml:"orders"`
	SQLite struct {
		Path string `yaml:"path" default:"zonewatch.db" validate:"required"`
	} `yaml:"sqlite"`
	Kafka      pkgkafka.Config `yaml:"kafka"`
	ClickHouse pkgch.Config    `yaml:"clickhouse"`
	Finnhub    struct {
		APIKey         string        `yaml:"api_key"`
		WebSocketURL   string        `yaml:"websocket_url" default:"wss://ws.finnhub.io"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
		// MaxPriceAge drops stale stream prices from the price book.
		MaxPriceAge time.Duration `yaml:"max_price_age" default:"5m"`
	} `yaml:"finnhub"`
	Redis cache.RedisConfig `yaml:"redis"`
}

var validate = validator.New()

// Default returns a configuration populated from struct defaults only.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	return &c, nil
}

// Load reads a YAML file over the defaults and validates the result.
// An empty path loads defaults only.
func Load(path string) (*Config, error) {
	return load(path, false)
}

// LoadWithEnv loads config from YAML, applies environment overrides, then validates.
func LoadWithEnv(path string) (*Config, error) {
	return load(path, true)
}

func load(path string, env bool) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if env {
		c.applyEnv()
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ZW_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("ZW_SYMBOLS"); v != "" {
		c.Monitor.Symbols = util.SplitSymbols(v)
	}
	if v := os.Getenv("ZW_ORDER_BACKEND"); v != "" {
		c.Orders.Backend = v
	}
	if v := os.Getenv("ZW_PRICE_SOURCE"); v != "" {
		c.Monitor.PriceSource = v
	}
	if v := os.Getenv("ZW_SQLITE_PATH"); v != "" {
		c.SQLite.Path = v
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
}

// ZoneThresholds resolves the configured preset or explicit thresholds.
func (c *Config) ZoneThresholds() (zones.Thresholds, error) {
	if c.Zones.Preset != "" {
		return zones.Preset(c.Zones.Preset)
	}
	return c.Zones.Thresholds, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	t, err := c.ZoneThresholds()
	if err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if c.Orders.Backend == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when orders.backend is kafka")
	}
	chStore := c.Orders.Backend == "clickhouse" || (c.Orders.Backend == "kafka" && c.Orders.Store == "clickhouse")
	if (chStore || c.MarketData.StoreCandles) && !c.ClickHouse.Enabled {
		return fmt.Errorf("clickhouse.enabled is required by the orders/market_data settings")
	}
	if c.Monitor.PriceSource == "finnhub" && c.Finnhub.APIKey == "" {
		return fmt.Errorf("finnhub.api_key is required when monitor.price_source is finnhub")
	}
	return nil
}
