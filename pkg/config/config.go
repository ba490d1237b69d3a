package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"SalesCast/pkg/util"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"5m"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		BodyLimit       string        `yaml:"body_limit" default:"20M"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Data struct {
		Path      string `yaml:"path" default:"sales_forecast_results.csv"`
		StartDate string `yaml:"start_date" default:"2016-05-01"`
		// SynthSeed seeds synthesized price/stock columns; 0 seeds from the clock.
		SynthSeed int64 `yaml:"synth_seed"`
		Columns   struct {
			Date   string `yaml:"date" default:"date"`
			Actual string `yaml:"actual" default:"actual_sales"`
			Arimax string `yaml:"arimax" default:"predicted_sales_arimax"`
			LSTM   string `yaml:"lstm" default:"predicted_sales_lstm"`
			Live   string `yaml:"live" default:"lstm_live_forecast"`
			Price  string `yaml:"price" default:"preco"`
			Stock  string `yaml:"stock" default:"estoque"`
		} `yaml:"columns"`
	} `yaml:"data"`
	Training struct {
		BatchSize    int     `yaml:"batch_size" default:"16"`
		LearningRate float64 `yaml:"learning_rate" default:"0.001"`
		RateLimit    struct {
			Capacity     float64 `yaml:"capacity" default:"2"`
			RefillPerSec float64 `yaml:"refill_per_sec" default:"0.1"`
		} `yaml:"rate_limit"`
	} `yaml:"training"`
	Session struct {
		Backend string        `yaml:"backend" default:"memory"`
		TTL     time.Duration `yaml:"ttl" default:"2h"`
		Redis   struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"session"`
	Archive struct {
		ClickHouse struct {
			Enabled     bool          `yaml:"enabled"`
			Host        string        `yaml:"host" default:"localhost"`
			Port        int           `yaml:"port" default:"9000"`
			Database    string        `yaml:"database" default:"default"`
			User        string        `yaml:"user" default:"default"`
			Password    string        `yaml:"password"`
			UseHTTP     bool          `yaml:"use_http"`
			AsyncInsert bool          `yaml:"async_insert"`
			DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
			ReadTimeout time.Duration `yaml:"read_timeout" default:"10s"`
		} `yaml:"clickhouse"`
	} `yaml:"archive"`
	Events struct {
		Kafka struct {
			Enabled      bool          `yaml:"enabled"`
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic" default:"training.completed"`
			RequiredAcks int           `yaml:"required_acks" default:"-1"`
			Compression  string        `yaml:"compression" default:"gzip"`
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			Async        bool          `yaml:"async"`
		} `yaml:"kafka"`
	} `yaml:"events"`
	Placeholder struct {
		Seed int64   `yaml:"seed" default:"42"`
		Std  float64 `yaml:"std" default:"20"`
	} `yaml:"placeholder"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file. Keys the file omits keep
// their defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML (or defaults when path is empty) and
// overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	var c *Config
	if path == "" {
		c = Default()
	} else {
		var err error
		if c, err = Load(path); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv("SALESCAST_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("SALESCAST_DATA_PATH"); v != "" {
		c.Data.Path = v
	}
	if v := os.Getenv("SALESCAST_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SALESCAST_PORT: %w", err)
		}
		c.Server.Port = p
	}
	if v := os.Getenv("SALESCAST_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Session.Backend = "redis"
		c.Session.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Events.Kafka.Enabled = true
		c.Events.Kafka.Brokers = util.SplitList(v)
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Events.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.Archive.ClickHouse.Enabled = true
		c.Archive.ClickHouse.Host = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port)
	}
	if c.Data.Path == "" {
		return fmt.Errorf("data.path is required")
	}
	if c.Data.Columns.Actual == "" {
		return fmt.Errorf("data.columns.actual is required")
	}
	if _, err := time.Parse(time.DateOnly, c.Data.StartDate); err != nil {
		return fmt.Errorf("data.start_date must be YYYY-MM-DD, got '%s'", c.Data.StartDate)
	}
	if c.Training.BatchSize < 1 {
		return fmt.Errorf("training.batch_size must be >= 1")
	}
	if c.Training.LearningRate <= 0 {
		return fmt.Errorf("training.learning_rate must be > 0")
	}
	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Session.Redis.Addr == "" {
			return fmt.Errorf("session.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("session.backend must be 'memory' or 'redis', got '%s'", c.Session.Backend)
	}
	if c.Archive.ClickHouse.Enabled && c.Archive.ClickHouse.Host == "" {
		return fmt.Errorf("archive.clickhouse.host is required when enabled")
	}
	if c.Events.Kafka.Enabled {
		if len(c.Events.Kafka.Brokers) == 0 {
			return fmt.Errorf("events.kafka.brokers cannot be empty when enabled")
		}
		if c.Events.Kafka.Topic == "" {
			return fmt.Errorf("events.kafka.topic is required when enabled")
		}
	}
	return nil
}

// StartTime returns Data.StartDate as a UTC day.
func (c *Config) StartTime() time.Time {
	return util.ParseTimeDefault(c.Data.StartDate, time.Date(2016, 5, 1, 0, 0, 0, 0, time.UTC))
}
