package repository

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"SalesCast/internal/domain/models"
	pkgch "SalesCast/pkg/clickhouse"
)

func setupClickHouse(t *testing.T) *pkgch.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "clickhouse/clickhouse-server:24.1-alpine",
			ExposedPorts: []string{"9000/tcp"},
			WaitingFor: wait.ForAll(
				wait.ForLog("Application: Ready for connections").WithStartupTimeout(60*time.Second),
				wait.ForListeningPort("9000/tcp"),
			),
			Env: map[string]string{"CLICKHOUSE_DB": "salescast"},
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("clickhouse container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)
	p, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	ch, err := pkgch.NewClient(pkgch.ClientConfig{Host: host, Port: p, Database: "salescast"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ch.Close() })
	require.NoError(t, ch.InitSchema(ctx, RunArchiveSchema))
	return ch
}

func TestCHRunArchiveSaveRun(t *testing.T) {
	ch := setupClickHouse(t)
	ctx := context.Background()
	archive := NewCHRunArchive(ch)

	sess := sampleSession("s1")
	run := &models.TrainingRun{
		ID:        "run-1",
		SessionID: "s1",
		Params:    models.Hyperparams{Epochs: 5, HiddenUnits: 10, LookBack: 1},
		FinalLoss: 0.01,
		Samples:   1,
		StartedAt: time.Now().UTC(),
		Duration:  time.Second,
		Forecast:  models.ForecastColumn{Present: true, Values: []models.Optional{models.None(), models.Some(10.7)}},
	}
	require.NoError(t, archive.SaveRun(ctx, run, sess.Table))

	var runs, points, forecasts uint64
	require.NoError(t, ch.DB().QueryRowContext(ctx, `SELECT count() FROM training_runs WHERE run_id = ?`, "run-1").Scan(&runs))
	require.NoError(t, ch.DB().QueryRowContext(ctx, `SELECT count(), countIf(forecast IS NOT NULL) FROM forecast_points WHERE run_id = ?`, "run-1").Scan(&points, &forecasts))
	assert.Equal(t, uint64(1), runs)
	assert.Equal(t, uint64(2), points)
	assert.Equal(t, uint64(1), forecasts)
}
