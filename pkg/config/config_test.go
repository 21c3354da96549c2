package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ZoneWatch/internal/services/zones"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Monitor.PollInterval != 60*time.Second || c.Monitor.ProximityTolerance != 0.01 {
		t.Fatalf("unexpected monitor defaults %+v", c.Monitor)
	}
	th, err := c.ZoneThresholds()
	if err != nil {
		t.Fatalf("thresholds: %v", err)
	}
	if th.TargetRiskMultiple != 2 || th.MaxBaseCount != 5 || len(th.Directions) != 2 {
		t.Fatalf("unexpected threshold defaults %+v", th)
	}
	if c.Orders.Backend != "sqlite" {
		t.Fatalf("unexpected order backend %s", c.Orders.Backend)
	}
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	p := writeConfig(t, `
environment: test
monitor:
  symbols: [TSLA]
  poll_interval: 5s
zones:
  thresholds:
    leg_min_pct: 60
    max_base_count: 3
`)
	c, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	th, _ := c.ZoneThresholds()
	if th.LegMinPct != 60 || th.MaxBaseCount != 3 {
		t.Fatalf("yaml not applied: %+v", th)
	}
	if th.BaseMaxPct != 50 || th.TargetRiskMultiple != 2 {
		t.Fatalf("absent values should keep defaults: %+v", th)
	}
	if len(c.Monitor.Symbols) != 1 || c.Monitor.PollInterval != 5*time.Second {
		t.Fatalf("monitor not applied: %+v", c.Monitor)
	}
}

func TestLoadRejectsBadThresholds(t *testing.T) {
	p := writeConfig(t, `
zones:
  thresholds:
    base_min_pct: 60
    base_max_pct: 40
`)
	_, err := Load(p)
	if !errors.Is(err, zones.ErrInvalidThresholds) {
		t.Fatalf("expected invalid thresholds, got %v", err)
	}
}

func TestLoadPreset(t *testing.T) {
	p := writeConfig(t, "zones:\n  preset: strict\n")
	c, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	th, _ := c.ZoneThresholds()
	if th.LegMinPct != 60 || th.BaseMaxPct != 45 {
		t.Fatalf("strict preset not applied: %+v", th)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"bad backend":         "orders:\n  backend: s3\n",
		"kafka no brokers":    "orders:\n  backend: kafka\n",
		"clickhouse disabled": "orders:\n  backend: clickhouse\n",
		"finnhub no key":      "monitor:\n  price_source: finnhub\n",
		"bad tolerance":       "monitor:\n  proximity_tolerance: 2\n",
		"bad compression":     "kafka:\n  compression: brotli\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("ZW_SYMBOLS", "nvda, amd")
	t.Setenv("ZW_ORDER_BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	c, err := LoadWithEnv("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.Monitor.Symbols) != 2 || c.Monitor.Symbols[0] != "NVDA" {
		t.Fatalf("symbols override: %v", c.Monitor.Symbols)
	}
	if c.Orders.Backend != "kafka" || len(c.Kafka.Brokers) != 2 {
		t.Fatalf("kafka override: %s %v", c.Orders.Backend, c.Kafka.Brokers)
	}
	if c.Kafka.Topic != "zonewatch.orders" || c.Kafka.DeadLetterTopic() != "zonewatch.orders.dlq" || c.Kafka.Consumer.Workers != 2 {
		t.Fatalf("kafka defaults: %+v", c.Kafka)
	}
}
