package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"SalesCast/internal/domain/repository"
	"SalesCast/internal/service/cache"
	pkgch "SalesCast/pkg/clickhouse"
	"SalesCast/pkg/config"
	xhttp "SalesCast/pkg/http"
	applogger "SalesCast/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	l           *applogger.Logger
	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
	sessions    cache.BytesCache
	chClient    *pkgch.Client
	publisher   repository.RunPublisher
}

// New creates a new App. chClient and publisher are nil when their
// backends are disabled.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	sessions cache.BytesCache,
	chClient *pkgch.Client,
	publisher repository.RunPublisher,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:         cfg,
		l:           l,
		httpHandler: handler,
		sessions:    sessions,
		chClient:    chClient,
		publisher:   publisher,
	}
}

// Run starts the HTTP server and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.httpServer = xhttp.NewServer(a.httpHandler, a.l, a.serverOptions()...)
	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("salescast started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("data_path", a.cfg.Data.Path),
		applogger.String("session_backend", a.cfg.Session.Backend),
		applogger.Bool("archive", a.chClient != nil),
		applogger.Bool("events", a.publisher != nil),
	)

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) serverOptions() []xhttp.ServerOption {
	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithBodyLimit(a.cfg.Server.BodyLimit),
		xhttp.WithMetricsPath(metricsPath),
	}
	if rc, ok := a.sessions.(*cache.RedisCache); ok {
		opts = append(opts, xhttp.WithHealthCheck("redis", rc.Ping))
	}
	if a.chClient != nil {
		opts = append(opts, xhttp.WithHealthCheck("clickhouse", a.chClient.Health))
	}
	return opts
}

// shutdown stops the HTTP server, then closes backends.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.l.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if rc, ok := a.sessions.(*cache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			a.l.Warn("redis close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return firstErr
}
