package kafka

import (
	"fmt"
	"time"
)

// Config describes the order stream: one topic written by the monitor and read
// back by the order consumer, plus a dead-letter topic for events that keep
// failing.
type Config struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic" default:"zonewatch.orders"`
	// DLQTopic defaults to Topic + ".dlq". "-" disables dead-lettering.
	DLQTopic string `yaml:"dlq_topic"`
	// Source is sent as the "source" header on every produced message.
	Source       string `yaml:"source" default:"zonewatch-monitor"`
	RequiredAcks int    `yaml:"required_acks" default:"-1" validate:"oneof=-1 0 1"`
	Compression  string `yaml:"compression" default:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`

	Producer ProducerConfig `yaml:"producer"`
	Consumer ConsumerConfig `yaml:"consumer"`
}

// ProducerConfig tunes the writer. Orders are always written synchronously and
// hashed by symbol so a symbol's orders stay on one partition.
type ProducerConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" default:"5"`
	Linger       time.Duration `yaml:"linger" default:"5ms"`
	BatchSize    int           `yaml:"batch_size" default:"100"`
	BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
}

type ConsumerConfig struct {
	GroupID    string        `yaml:"group_id" default:"zonewatch-orders"`
	Workers    int           `yaml:"workers" default:"2"`
	BufferSize int           `yaml:"buffer_size" default:"256"`
	RetryMax   int           `yaml:"retry_max" default:"3"`
	BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
	BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
	MinBytes   int           `yaml:"min_bytes" default:"1"`
	MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
}

// DefaultConfig returns the order stream settings used when nothing is configured.
func DefaultConfig(brokers ...string) Config {
	return Config{
		Brokers:      brokers,
		Topic:        "zonewatch.orders",
		Source:       "zonewatch-monitor",
		RequiredAcks: -1,
		Compression:  "snappy",
		Producer: ProducerConfig{
			MaxAttempts:  5,
			Linger:       5 * time.Millisecond,
			BatchSize:    100,
			BatchBytes:   1 << 20,
			WriteTimeout: 10 * time.Second,
			ReadTimeout:  10 * time.Second,
		},
		Consumer: ConsumerConfig{
			GroupID:    "zonewatch-orders",
			Workers:    2,
			BufferSize: 256,
			RetryMax:   3,
			BackoffMin: 100 * time.Millisecond,
			BackoffMax: 5 * time.Second,
			MinBytes:   1,
			MaxBytes:   10 << 20,
		},
	}
}

// DeadLetterTopic resolves the DLQ topic; "" means dead-lettering is off.
func (c Config) DeadLetterTopic() string {
	switch c.DLQTopic {
	case "-":
		return ""
	case "":
		return c.Topic + ".dlq"
	}
	return c.DLQTopic
}

// normalize fills zero values left by hand-built configs and rejects unusable ones.
func (c Config) normalize() (Config, error) {
	if len(c.Brokers) == 0 {
		return c, fmt.Errorf("brokers are required")
	}
	if c.Topic == "" {
		return c, fmt.Errorf("topic is required")
	}
	if c.DeadLetterTopic() == c.Topic {
		return c, fmt.Errorf("dlq topic %q must differ from the order topic", c.Topic)
	}
	d := DefaultConfig()
	if c.Producer.MaxAttempts <= 0 {
		c.Producer.MaxAttempts = d.Producer.MaxAttempts
	}
	if c.Producer.BatchSize <= 0 {
		c.Producer.BatchSize = d.Producer.BatchSize
	}
	if c.Producer.BatchBytes <= 0 {
		c.Producer.BatchBytes = d.Producer.BatchBytes
	}
	if c.Consumer.GroupID == "" {
		c.Consumer.GroupID = d.Consumer.GroupID
	}
	if c.Consumer.Workers <= 0 {
		c.Consumer.Workers = 1
	}
	if c.Consumer.BufferSize <= 0 {
		c.Consumer.BufferSize = d.Consumer.BufferSize
	}
	if c.Consumer.RetryMax < 0 {
		c.Consumer.RetryMax = 0
	}
	if c.Consumer.MinBytes <= 0 {
		c.Consumer.MinBytes = d.Consumer.MinBytes
	}
	if c.Consumer.MaxBytes < c.Consumer.MinBytes {
		c.Consumer.MaxBytes = d.Consumer.MaxBytes
	}
	return c, nil
}
