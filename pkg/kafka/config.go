package kafka

import (
	"errors"
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/segmentio/kafka-go"
)

// ProducerConfig configures a Producer. Zero fields take their default tag.
type ProducerConfig struct {
	Brokers      []string
	ClientID     string        `default:"salescast"`
	RequiredAcks int           `default:"-1"` // -1 all replicas, 1 leader only
	Compression  string        `default:"gzip"`
	MaxAttempts  int           `default:"3"`
	WriteTimeout time.Duration `default:"10s"`
	ReadTimeout  time.Duration `default:"10s"`
	Linger       time.Duration `default:"50ms"`
	Async        bool
}

var errNoBrokers = errors.New("kafka: at least one broker is required")

func (c *ProducerConfig) normalize() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("kafka: producer defaults: %w", err)
	}
	if len(c.Brokers) == 0 {
		return errNoBrokers
	}
	if c.RequiredAcks != -1 && c.RequiredAcks != 1 {
		return fmt.Errorf("kafka: required acks must be -1 or 1, got %d", c.RequiredAcks)
	}
	_, err := codec(c.Compression)
	return err
}

func codec(name string) (kafka.Compression, error) {
	switch name {
	case "none":
		return 0, nil
	case "gzip":
		return kafka.Gzip, nil
	case "snappy":
		return kafka.Snappy, nil
	case "lz4":
		return kafka.Lz4, nil
	case "zstd":
		return kafka.Zstd, nil
	}
	return 0, fmt.Errorf("kafka: unknown compression %q", name)
}
