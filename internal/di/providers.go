package di

import (
	"context"
	"fmt"
	"time"

	"SalesCast/internal/domain/models"
	"SalesCast/internal/domain/repository"
	"SalesCast/internal/domain/service"
	"SalesCast/internal/handler/api"
	internalrepo "SalesCast/internal/repository"
	"SalesCast/internal/service/cache"
	svcmetrics "SalesCast/internal/service/metrics"
	"SalesCast/internal/service/ratelimit"
	"SalesCast/internal/services/loader"
	"SalesCast/internal/services/trainer"
	"SalesCast/internal/usecase"
	pkgch "SalesCast/pkg/clickhouse"
	"SalesCast/pkg/config"
	xhttp "SalesCast/pkg/http"
	pkgkafka "SalesCast/pkg/kafka"
	applogger "SalesCast/pkg/logger"
	"SalesCast/pkg/metrics"
	"SalesCast/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideRegisterer is the registry served at the metrics endpoint.
func ProvideRegisterer() prometheus.Registerer {
	return prometheus.DefaultRegisterer
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg prometheus.Registerer) repository.Metrics {
	return metrics.New(reg)
}

// ProvideDashboardMetrics creates the per-endpoint HTTP vectors.
func ProvideDashboardMetrics(reg prometheus.Registerer) *svcmetrics.DashboardMetrics {
	return svcmetrics.NewDashboardMetrics(reg)
}

// ProvideSessionCache picks the session backend: in-process or Redis.
func ProvideSessionCache(cfg *config.Config) (cache.BytesCache, error) {
	if cfg.Session.Backend != "redis" {
		return cache.NewTTLCache(), nil
	}
	rc := cache.NewRedisCache(cache.RedisConfig{
		Addr:     cfg.Session.Redis.Addr,
		Password: cfg.Session.Redis.Password,
		DB:       cfg.Session.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Session.Redis.Addr, err)
	}
	return rc, nil
}

// ProvideSessionStore creates the session repository.
func ProvideSessionStore(c cache.BytesCache, cfg *config.Config, l *applogger.Logger) repository.SessionStore {
	s := internalrepo.NewCacheSessionStore(c, cfg.Session.TTL)
	s.SetLogger(l)
	return s
}

// ProvideTableSource creates the CSV loader.
func ProvideTableSource(cfg *config.Config, l *applogger.Logger) repository.TableSource {
	lc := loader.Config{
		Columns:   columnNames(cfg),
		StartDate: cfg.StartTime(),
	}
	if cfg.Data.SynthSeed != 0 {
		seed := cfg.Data.SynthSeed
		lc.Seed = &seed
	}
	return loader.New(lc, l)
}

// ProvideTrainer creates the LSTM trainer.
func ProvideTrainer(cfg *config.Config, l *applogger.Logger) service.SequenceTrainer {
	return trainer.New(
		trainer.WithBatchSize(cfg.Training.BatchSize),
		trainer.WithLearningRate(cfg.Training.LearningRate),
		trainer.WithLogger(l),
	)
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when the
// archive is disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	chc := cfg.Archive.ClickHouse
	if !chc.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(pkgch.ClientConfig{
		Host:        chc.Host,
		Port:        chc.Port,
		Database:    chc.Database,
		User:        chc.User,
		Password:    chc.Password,
		DialTimeout: chc.DialTimeout,
		ReadTimeout: chc.ReadTimeout,
		UseHTTP:     chc.UseHTTP,
		AsyncInsert: chc.AsyncInsert,
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.RunArchiveSchema); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideRunArchive returns the ClickHouse archive, or nil without a client.
func ProvideRunArchive(ch *pkgch.Client, l *applogger.Logger) repository.RunArchive {
	if ch == nil {
		return nil
	}
	a := internalrepo.NewCHRunArchive(ch)
	a.SetLogger(l)
	return a
}

// ProvideKafkaProducer creates a Kafka producer, or nil when events are
// disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	kc := cfg.Events.Kafka
	if !kc.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(pkgkafka.ProducerConfig{
		Brokers:      kc.Brokers,
		RequiredAcks: kc.RequiredAcks,
		Compression:  kc.Compression,
		MaxAttempts:  kc.MaxAttempts,
		WriteTimeout: kc.WriteTimeout,
		ReadTimeout:  kc.ReadTimeout,
		Linger:       kc.Linger,
		Async:        kc.Async,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideRunPublisher returns the Kafka run publisher, or nil without a producer.
func ProvideRunPublisher(p *pkgkafka.Producer, cfg *config.Config, l *applogger.Logger) repository.RunPublisher {
	if p == nil {
		return nil
	}
	pub := internalrepo.NewKafkaRunPublisher(p, cfg.Events.Kafka.Topic)
	pub.SetLogger(l)
	return pub
}

// ProvideDashboard creates the dashboard use case.
func ProvideDashboard(
	source repository.TableSource,
	sessions repository.SessionStore,
	m repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.Dashboard {
	return usecase.NewDashboard(source, sessions, m, cfg.Data.Path, l)
}

// ProvideLiveTraining creates the live training use case.
func ProvideLiveTraining(
	sessions repository.SessionStore,
	t service.SequenceTrainer,
	archive repository.RunArchive,
	publisher repository.RunPublisher,
	m repository.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.LiveTraining {
	return usecase.NewLiveTraining(sessions, t, m,
		usecase.WithRunSinks(archive, publisher),
		usecase.WithTrainingDefaults(cfg.Training.BatchSize, cfg.Training.LearningRate),
		usecase.WithTrainingLogger(l),
	)
}

// ProvideRateLimiter limits training runs per client.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	rl := cfg.Training.RateLimit
	return ratelimit.New(rl.Capacity, rl.RefillPerSec)
}

// ProvideHTTPHandler creates the dashboard routes.
func ProvideHTTPHandler(
	l *applogger.Logger,
	dash *usecase.Dashboard,
	live *usecase.LiveTraining,
	limiter *ratelimit.Limiter,
	m *svcmetrics.DashboardMetrics,
) xhttp.Handler {
	return api.NewDashboardEchoHandler(l, dash, live, limiter, m)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	sessions cache.BytesCache,
	chClient *pkgch.Client,
	publisher repository.RunPublisher,
) *server.App {
	return server.New(cfg, l, handler, sessions, chClient, publisher)
}

func columnNames(cfg *config.Config) models.ColumnNames {
	c := cfg.Data.Columns
	return models.ColumnNames{
		Date:   c.Date,
		Actual: c.Actual,
		Arimax: c.Arimax,
		LSTM:   c.LSTM,
		Live:   c.Live,
		Price:  c.Price,
		Stock:  c.Stock,
	}
}
