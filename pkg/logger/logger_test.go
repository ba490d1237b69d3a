package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuffered(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(&Config{Level: level, Format: "json", Writer: &buf})
	require.NoError(t, err)
	return l, &buf
}

func TestFieldsAreTyped(t *testing.T) {
	l, buf := newBuffered(t, "info")
	l.With(String("session_id", "s1")).Info("trained",
		Int("epochs", 20),
		Float64("final_loss", 0.25),
		Bool("archived", true),
		Duration("took", 1500*time.Millisecond),
		Strings("columns", []string{"a", "b"}),
		Error(errors.New("boom")),
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "trained", entry["message"])
	assert.Equal(t, "s1", entry["session_id"])
	assert.Equal(t, float64(20), entry["epochs"])
	assert.Equal(t, 0.25, entry["final_loss"])
	assert.Equal(t, true, entry["archived"])
	assert.Equal(t, float64(1500), entry["took"])
	assert.Equal(t, "a, b", entry["columns"])
	assert.Equal(t, "boom", entry["error"])
}

func TestLevelIsPerLogger(t *testing.T) {
	quiet, qbuf := newBuffered(t, "warn")
	loud, lbuf := newBuffered(t, "debug")

	quiet.Info("dropped")
	loud.Debug("kept")

	assert.Zero(t, qbuf.Len())
	assert.Contains(t, lbuf.String(), "kept")
}

func TestInvalidLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNopDiscards(t *testing.T) {
	Nop().With(String("k", "v")).Error("ignored", Error(nil))
}
