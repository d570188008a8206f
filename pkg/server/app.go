// Package server owns the application lifecycle: start the maintenance
// scheduler and the HTTP server, block on a signal, then shut everything
// down in reverse order.
package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/zengarv/StockInsightAPI/internal/domain/repository"
	"github.com/zengarv/StockInsightAPI/internal/scheduler"
	"github.com/zengarv/StockInsightAPI/pkg/cache"
	pkgch "github.com/zengarv/StockInsightAPI/pkg/clickhouse"
	"github.com/zengarv/StockInsightAPI/pkg/config"
	xhttp "github.com/zengarv/StockInsightAPI/pkg/http"
	applogger "github.com/zengarv/StockInsightAPI/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	handler    xhttp.Handler
	users      repository.UserStore
	cacheSvc   cache.Service
	sched      *scheduler.Scheduler
	chClient   *pkgch.Client
	httpServer *xhttp.Server
}

// New creates an App from its wired dependencies. chClient is nil unless
// the dataset is served from ClickHouse.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	handler xhttp.Handler,
	users repository.UserStore,
	cacheSvc cache.Service,
	sched *scheduler.Scheduler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		handler:  handler,
		users:    users,
		cacheSvc: cacheSvc,
		sched:    sched,
		chClient: chClient,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	if err := a.sched.Register(a.cfg.Scheduler.CounterPurgeSpec, a.cfg.Scheduler.SweepInterval); err != nil {
		return err
	}
	a.sched.Start()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled),
		xhttp.WithLogger(a.log),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("api server started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("environment", a.cfg.Environment),
		applogger.String("cache_backend", a.cacheSvc.Name()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops services in reverse start order.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	a.sched.Stop()

	if err := a.cacheSvc.Close(); err != nil {
		a.log.Warn("cache close error", applogger.Error(err))
	}
	if err := a.users.Close(); err != nil {
		a.log.Warn("user store close error", applogger.Error(err))
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
