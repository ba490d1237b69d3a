package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SalesCast/internal/domain/models"
)

type fakeProducer struct {
	topic  string
	key    []byte
	value  interface{}
	err    error
	closed bool
}

func (f *fakeProducer) Publish(_ context.Context, topic string, key []byte, value interface{}) error {
	f.topic, f.key, f.value = topic, key, value
	return f.err
}

func (f *fakeProducer) Close() error {
	f.closed = true
	return nil
}

func TestKafkaRunPublisher(t *testing.T) {
	fp := &fakeProducer{}
	p := NewKafkaRunPublisher(fp, "training.completed")

	run := &models.TrainingRun{
		ID:        "run-1",
		SessionID: "sess-1",
		Params:    models.Hyperparams{Epochs: 5, HiddenUnits: 10, LookBack: 7},
		Loss:      []float64{0.3, 0.2},
		FinalLoss: 0.2,
		Samples:   93,
		Duration:  1500 * time.Millisecond,
		Forecast:  models.ForecastColumn{Present: true, Values: []models.Optional{models.None(), models.Some(1)}},
	}
	require.NoError(t, p.PublishRun(context.Background(), run))

	assert.Equal(t, "training.completed", fp.topic)
	assert.Equal(t, []byte("sess-1"), fp.key)
	ev, ok := fp.value.(TrainingCompleted)
	require.True(t, ok)
	assert.Equal(t, "run-1", ev.RunID)
	assert.Equal(t, 1, ev.Forecasted)
	assert.Equal(t, int64(1500), ev.DurationMs)

	require.NoError(t, p.Close())
	assert.True(t, fp.closed)
}

func TestKafkaRunPublisherError(t *testing.T) {
	boom := errors.New("broker down")
	p := NewKafkaRunPublisher(&fakeProducer{err: boom}, "t")
	err := p.PublishRun(context.Background(), &models.TrainingRun{ID: "x"})
	assert.ErrorIs(t, err, boom)
}
