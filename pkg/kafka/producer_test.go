package kafka

import (
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(ProducerConfig{}); !errors.Is(err, errNoBrokers) {
		t.Fatalf("err = %v, want errNoBrokers", err)
	}
}

func TestNewProducerDefaults(t *testing.T) {
	p, err := NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()
	if p.writer.RequiredAcks != kafka.RequireAll || p.writer.Compression != kafka.Gzip {
		t.Fatalf("defaults not applied: acks=%v compression=%v", p.writer.RequiredAcks, p.writer.Compression)
	}
	if p.writer.WriteTimeout != 10*time.Second || p.writer.BatchTimeout != 50*time.Millisecond {
		t.Fatalf("timeouts = %v/%v", p.writer.WriteTimeout, p.writer.BatchTimeout)
	}
}

func TestNewProducerAppliesConfig(t *testing.T) {
	p, err := NewProducer(ProducerConfig{
		Brokers:     []string{"localhost:9092"},
		Compression: "zstd",
		MaxAttempts: 5,
		Async:       true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Close()
	if p.writer.MaxAttempts != 5 || !p.writer.Async {
		t.Fatalf("config not applied: %+v", p.writer)
	}
	if p.writer.Compression != kafka.Zstd {
		t.Fatalf("compression = %v, want zstd", p.writer.Compression)
	}
}

func TestNewProducerRejectsInvalid(t *testing.T) {
	cases := map[string]ProducerConfig{
		"compression": {Brokers: []string{"b:9092"}, Compression: "brotli"},
		"acks":        {Brokers: []string{"b:9092"}, RequiredAcks: 2},
	}
	for name, cfg := range cases {
		if _, err := NewProducer(cfg); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestEncode(t *testing.T) {
	b, err := encode(map[string]int{"a": 1})
	if err != nil || string(b) != `{"a":1}` {
		t.Fatalf("encode map = %q, %v", b, err)
	}
	b, _ = encode("raw")
	if string(b) != "raw" {
		t.Fatalf("encode string = %q", b)
	}
}
