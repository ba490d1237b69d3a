package clickhouse

import (
	"errors"
	"fmt"
	"time"

	"github.com/creasty/defaults"
)

// ClientConfig holds connection settings. Zero fields take their default tag.
type ClientConfig struct {
	Host            string
	Password        string
	Port            int           `default:"9000"`
	Database        string        `default:"default"`
	User            string        `default:"default"`
	MaxOpenConns    int           `default:"4"`
	MaxIdleConns    int           `default:"2"`
	ConnMaxLifetime time.Duration `default:"5m"`
	DialTimeout     time.Duration `default:"5s"`
	ReadTimeout     time.Duration `default:"10s"`
	UseHTTP         bool
	// AsyncInsert turns on server-side async inserts and waits for the flush.
	AsyncInsert bool
}

var errNoHost = errors.New("clickhouse: host is required")

func (c *ClientConfig) normalize() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("clickhouse: defaults: %w", err)
	}
	if c.Host == "" {
		return errNoHost
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		c.MaxIdleConns = c.MaxOpenConns
	}
	return nil
}
