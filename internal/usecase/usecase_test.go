package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SalesCast/internal/domain/models"
	"SalesCast/internal/repository"
	"SalesCast/internal/service/cache"
	"SalesCast/internal/services/loader"
	"SalesCast/internal/services/trainer"
)

const salesCSV = `date,actual_sales,predicted_sales_arimax
2021-01-01,10,11
2021-01-02,12,12.5
2021-01-03,11,
2021-01-04,13,12
2021-01-05,15,14
2021-01-06,14,15
2021-01-07,16,15.5
`

type fakeMetrics struct {
	runs   map[string]int
	errors map[string]int
	rows   map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{runs: map[string]int{}, errors: map[string]int{}, rows: map[string]int{}}
}

func (m *fakeMetrics) RecordTrainingRun(status string)          { m.runs[status]++ }
func (m *fakeMetrics) RecordTrainingLoss(float64)               {}
func (m *fakeMetrics) RecordRowsLoaded(source string, rows int) { m.rows[source] += rows }
func (m *fakeMetrics) RecordError(kind string)                  { m.errors[kind]++ }
func (m *fakeMetrics) RecordLatency(string, float64)            {}

// countingStore counts writes to the wrapped store.
type countingStore struct {
	*repository.CacheSessionStore
	saves int
}

func (s *countingStore) Save(ctx context.Context, sess *models.Session) error {
	s.saves++
	return s.CacheSessionStore.Save(ctx, sess)
}

type failingArchive struct{}

func (failingArchive) SaveRun(context.Context, *models.TrainingRun, *models.Table) error {
	return errors.New("archive down")
}

type recordingPublisher struct{ runs []*models.TrainingRun }

func (p *recordingPublisher) PublishRun(_ context.Context, run *models.TrainingRun) error {
	p.runs = append(p.runs, run)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	store   *countingStore
	metrics *fakeMetrics
	dash    *Dashboard
	live    *LiveTraining
	path    string
}

func newFixture(t *testing.T, csv string, opts ...LiveTrainingOption) *fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	seed := int64(3)
	src := loader.New(loader.Config{Seed: &seed}, nil)
	store := &countingStore{CacheSessionStore: repository.NewCacheSessionStore(cache.NewTTLCache(), time.Hour)}
	m := newFakeMetrics()
	opts = append([]LiveTrainingOption{WithTrainingDefaults(16, 0.01)}, opts...)
	return &fixture{
		store:   store,
		metrics: m,
		dash:    NewDashboard(src, store, m, path, nil),
		live:    NewLiveTraining(store, trainer.New(), m, opts...),
		path:    path,
	}
}

func seeded(v int64) *int64 { return &v }

func TestOpenSessionAndSummary(t *testing.T) {
	f := newFixture(t, salesCSV)
	ctx := context.Background()

	sum, err := f.dash.OpenSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, sum.Rows)
	assert.Equal(t, f.path, sum.Source)
	assert.Equal(t, []string{"date", "actual_sales", "predicted_sales_arimax", "preco", "estoque"}, sum.Columns)
	assert.False(t, sum.Provenance.DateSynthesized)
	assert.True(t, sum.Provenance.PriceSynthesized)
	assert.Equal(t, "2021-01-01", sum.From.Format(time.DateOnly))
	assert.Equal(t, "2021-01-07", sum.To.Format(time.DateOnly))
	assert.Equal(t, 7, f.metrics.rows["file"])

	got, err := f.dash.Summary(ctx, sum.ID)
	require.NoError(t, err)
	assert.Equal(t, sum.Columns, got.Columns)
}

func TestOpenSessionMissingFile(t *testing.T) {
	f := newFixture(t, salesCSV)
	require.NoError(t, os.Remove(f.path))

	_, err := f.dash.OpenSession(context.Background())
	assert.ErrorIs(t, err, models.ErrFileNotFound)
	assert.Zero(t, f.store.saves)
	assert.Equal(t, 1, f.metrics.errors["file_not_found"])
}

func TestUnknownSession(t *testing.T) {
	f := newFixture(t, salesCSV)
	ctx := context.Background()

	_, err := f.dash.Summary(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	_, err = f.dash.ForecastChart(ctx, "missing", models.ModelARIMAX)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	_, _, err = f.dash.RawTable(ctx, "missing", 0, 10)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	_, err = f.live.Train(ctx, "missing", models.Hyperparams{Epochs: 1, HiddenUnits: 2, LookBack: 1})
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestForecastChart(t *testing.T) {
	f := newFixture(t, salesCSV)
	ctx := context.Background()
	sum, err := f.dash.OpenSession(ctx)
	require.NoError(t, err)

	chart, err := f.dash.ForecastChart(ctx, sum.ID, models.ModelARIMAX)
	require.NoError(t, err)
	require.True(t, chart.Available)
	assert.Equal(t, "Actual vs ARIMAX Forecasted Sales", chart.Title)
	assert.Len(t, chart.Dates, 7)
	assert.Equal(t, "Actual Sales", chart.Actual.Label)
	assert.Equal(t, "ARIMAX Forecast", chart.Forecast.Label)
	assert.Len(t, chart.Forecast.Values, 7)
	assert.False(t, chart.Forecast.Values[2].Valid)
	assert.Equal(t, 12.5, chart.Forecast.Values[1].Value)

	chart, err = f.dash.ForecastChart(ctx, sum.ID, models.ModelLSTM)
	require.NoError(t, err)
	assert.False(t, chart.Available)
	assert.Contains(t, chart.Warning, "LSTM")
	assert.Nil(t, chart.Actual)
	assert.Nil(t, chart.Forecast)
	assert.Empty(t, chart.Dates)
}

func TestTrends(t *testing.T) {
	f := newFixture(t, salesCSV)
	ctx := context.Background()
	sum, err := f.dash.OpenSession(ctx)
	require.NoError(t, err)

	tr, err := f.dash.Trends(ctx, sum.ID)
	require.NoError(t, err)
	assert.Equal(t, "Preco and Estoque Over Time", tr.Title)
	require.Len(t, tr.Price.Values, 7)
	require.Len(t, tr.Stock.Values, 7)
	for i := range tr.Price.Values {
		assert.GreaterOrEqual(t, tr.Price.Values[i].Value, 50.0)
		assert.Less(t, tr.Price.Values[i].Value, 200.0)
		assert.GreaterOrEqual(t, tr.Stock.Values[i].Value, 100.0)
		assert.Less(t, tr.Stock.Values[i].Value, 500.0)
	}
	assert.True(t, tr.Provenance.StockSynthesized)
}

func TestRawTablePaging(t *testing.T) {
	f := newFixture(t, salesCSV)
	ctx := context.Background()
	sum, err := f.dash.OpenSession(ctx)
	require.NoError(t, err)

	page, total, err := f.dash.RawTable(ctx, sum.ID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.Equal(t, sum.Columns, page.Header)
	require.Len(t, page.Rows, 2)
	assert.Equal(t, []string{"2021-01-02", "12", "12.5"}, page.Rows[0][:3])
	assert.Equal(t, "", page.Rows[1][2])

	page, total, err = f.dash.RawTable(ctx, sum.ID, 20, 5)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
	assert.Empty(t, page.Rows)
}

func TestCloseSession(t *testing.T) {
	f := newFixture(t, salesCSV)
	ctx := context.Background()
	sum, err := f.dash.OpenSession(ctx)
	require.NoError(t, err)

	require.NoError(t, f.dash.CloseSession(ctx, sum.ID))
	_, err = f.dash.Summary(ctx, sum.ID)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	assert.ErrorIs(t, f.dash.CloseSession(ctx, sum.ID), models.ErrSessionNotFound)
}

func TestPreviewUpload(t *testing.T) {
	f := newFixture(t, salesCSV)

	p, err := f.dash.PreviewUpload("demo.csv", strings.NewReader(salesCSV))
	require.NoError(t, err)
	assert.Equal(t, "demo.csv", p.Filename)
	assert.Equal(t, []string{"date", "actual_sales", "predicted_sales_arimax"}, p.Columns)
	assert.Equal(t, 7, p.Rows)
	require.Len(t, p.Head, PreviewRows)
	assert.Equal(t, []string{"2021-01-01", "10", "11"}, p.Head[0])

	_, err = f.dash.PreviewUpload("broken.csv", strings.NewReader("a,b\n1,2,3\n"))
	var le *models.LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "broken.csv", le.Source)
	assert.ErrorIs(t, err, models.ErrMalformed)
	assert.Zero(t, f.store.saves)
}

func TestLiveTrainingAlignsForecast(t *testing.T) {
	pub := &recordingPublisher{}
	f := newFixture(t, salesCSV, WithRunSinks(nil, pub))
	ctx := context.Background()
	sum, err := f.dash.OpenSession(ctx)
	require.NoError(t, err)

	res, err := f.live.Train(ctx, sum.ID, models.Hyperparams{Epochs: 5, HiddenUnits: 4, LookBack: 3, Seed: seeded(7)})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Run.Samples)
	assert.Len(t, res.Run.Loss, 5)
	assert.Equal(t, res.Run.Loss[4], res.Run.FinalLoss)
	assert.Equal(t, 16, res.Run.Params.BatchSize)
	assert.NotEmpty(t, res.Run.ID)

	col := res.Run.Forecast
	require.True(t, col.Present)
	require.Len(t, col.Values, 7)
	for i, v := range col.Values {
		assert.Equal(t, i >= 3, v.Valid, "row %d", i)
	}
	assert.Equal(t, 4, col.Count())

	assert.True(t, res.Chart.Available)
	assert.Equal(t, "Live LSTM Forecast vs Actual", res.Chart.Title)
	assert.Equal(t, "Live LSTM Forecast", res.Chart.Forecast.Label)

	got, err := f.dash.Summary(ctx, sum.ID)
	require.NoError(t, err)
	assert.Contains(t, got.Columns, "lstm_live_forecast")
	page, _, err := f.dash.RawTable(ctx, sum.ID, 0, 7)
	require.NoError(t, err)
	last := len(page.Header) - 1
	assert.Equal(t, "", page.Rows[0][last])
	assert.NotEqual(t, "", page.Rows[6][last])

	require.Len(t, pub.runs, 1)
	assert.Equal(t, sum.ID, pub.runs[0].SessionID)
	assert.Equal(t, 1, f.metrics.runs["ok"])
}

func TestLiveTrainingInsufficientData(t *testing.T) {
	f := newFixture(t, "actual_sales\n1\n2\n3\n")
	ctx := context.Background()
	sum, err := f.dash.OpenSession(ctx)
	require.NoError(t, err)
	saves := f.store.saves

	_, err = f.live.Train(ctx, sum.ID, models.Hyperparams{Epochs: 5, HiddenUnits: 10, LookBack: 3})
	var te *models.TrainingError
	require.ErrorAs(t, err, &te)
	var ie *models.InsufficientDataError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, 3, ie.N)
	assert.Equal(t, 3, ie.LookBack)

	assert.Equal(t, saves, f.store.saves)
	assert.Equal(t, 1, f.metrics.errors["insufficient_data"])
	assert.Equal(t, 1, f.metrics.runs["failed"])

	got, err := f.dash.Summary(ctx, sum.ID)
	require.NoError(t, err)
	assert.NotContains(t, got.Columns, "lstm_live_forecast")
}

func TestLiveTrainingSinkFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, salesCSV, WithRunSinks(failingArchive{}, nil))
	ctx := context.Background()
	sum, err := f.dash.OpenSession(ctx)
	require.NoError(t, err)

	_, err = f.live.Train(ctx, sum.ID, models.Hyperparams{Epochs: 2, HiddenUnits: 3, LookBack: 2, Seed: seeded(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, f.metrics.errors["archive"])
	assert.Equal(t, 1, f.metrics.runs["ok"])
}

func TestLiveTrainingSeedIsReproducible(t *testing.T) {
	f := newFixture(t, salesCSV)
	ctx := context.Background()
	a, err := f.dash.OpenSession(ctx)
	require.NoError(t, err)
	b, err := f.dash.OpenSession(ctx)
	require.NoError(t, err)

	hp := models.Hyperparams{Epochs: 3, HiddenUnits: 5, LookBack: 2, Seed: seeded(11)}
	ra, err := f.live.Train(ctx, a.ID, hp)
	require.NoError(t, err)
	rb, err := f.live.Train(ctx, b.ID, hp)
	require.NoError(t, err)
	assert.Equal(t, ra.Run.Forecast.Values, rb.Run.Forecast.Values)
	assert.Equal(t, ra.Run.Loss, rb.Run.Loss)
}
