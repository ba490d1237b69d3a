package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if c.Server.Port != 8080 || c.Server.ReadTimeout != 15*time.Second {
		t.Fatalf("unexpected server defaults: %+v", c.Server)
	}
	if c.Data.Columns.Actual != "actual_sales" || c.Data.Columns.Stock != "estoque" {
		t.Fatalf("unexpected column defaults: %+v", c.Data.Columns)
	}
	if c.Training.BatchSize != 16 || c.Training.LearningRate != 0.001 {
		t.Fatalf("unexpected training defaults: %+v", c.Training)
	}
	if c.Placeholder.Seed != 42 || c.Placeholder.Std != 20 {
		t.Fatalf("unexpected placeholder defaults: %+v", c.Placeholder)
	}
	if got := c.StartTime(); got.Format(time.DateOnly) != "2016-05-01" {
		t.Fatalf("start time = %v", got)
	}
}

func TestLoadMergesDefaults(t *testing.T) {
	path := writeConfig(t, `
environment: production
server:
  port: 9090
data:
  path: /data/sales.csv
  columns:
    actual: sales
session:
  backend: redis
  ttl: 30m
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Environment != "production" || c.Server.Port != 9090 {
		t.Fatalf("file values not applied: %+v", c)
	}
	if c.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("default lost: %v", c.Server.ShutdownTimeout)
	}
	if c.Data.Columns.Actual != "sales" || c.Data.Columns.Date != "date" {
		t.Fatalf("columns = %+v", c.Data.Columns)
	}
	if c.Session.TTL != 30*time.Minute || c.Session.Redis.Addr != "localhost:6379" {
		t.Fatalf("session = %+v", c.Session)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"bad backend":   "session:\n  backend: etcd\n",
		"bad port":      "server:\n  port: 70000\n",
		"bad date":      "data:\n  start_date: 01/05/2016\n",
		"kafka brokers": "events:\n  kafka:\n    enabled: true\n",
		"bad yaml":      "server: [\n",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("SALESCAST_DATA_PATH", "/tmp/x.csv")
	t.Setenv("SALESCAST_PORT", "7070")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CLICKHOUSE_HOST", "ch")

	c, err := LoadWithEnv("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Data.Path != "/tmp/x.csv" || c.Server.Port != 7070 {
		t.Fatalf("env not applied: %+v %+v", c.Data, c.Server)
	}
	if c.Session.Backend != "redis" || c.Session.Redis.Addr != "redis:6379" {
		t.Fatalf("redis env not applied: %+v", c.Session)
	}
	if !c.Events.Kafka.Enabled || len(c.Events.Kafka.Brokers) != 2 {
		t.Fatalf("kafka env not applied: %+v", c.Events.Kafka)
	}
	if !c.Archive.ClickHouse.Enabled || c.Archive.ClickHouse.Host != "ch" {
		t.Fatalf("clickhouse env not applied: %+v", c.Archive.ClickHouse)
	}

	t.Setenv("SALESCAST_PORT", "eighty")
	if _, err := LoadWithEnv(""); err == nil {
		t.Fatalf("expected error for bad port")
	}
}
