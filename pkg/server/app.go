package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	xhttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
)

// Job is a background task started with the HTTP server, such as the cache
// prefetcher.
type Job interface {
	Start()
	Stop()
}

// App encapsulates the entire application lifecycle.
type App struct {
	httpServer      *xhttp.Server
	jobs            []Job
	closers         []io.Closer
	shutdownTimeout time.Duration
	l               *applogger.Logger
}

// New creates a new App.
func New(httpServer *xhttp.Server, l *applogger.Logger, shutdownTimeout time.Duration) *App {
	if l == nil {
		l = applogger.NewNop()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &App{httpServer: httpServer, l: l, shutdownTimeout: shutdownTimeout}
}

// AddJob registers a background job.
func (a *App) AddJob(j Job) { a.jobs = append(a.jobs, j) }

// AddCloser registers a resource released after the server stops. Closers
// run in reverse registration order.
func (a *App) AddCloser(c io.Closer) { a.closers = append(a.closers, c) }

// Run starts the server and jobs and blocks until ctx is cancelled or an
// interrupt arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	for _, j := range a.jobs {
		j.Start()
	}

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) shutdown() error {
	// stop taking requests first, then background work
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	for _, j := range a.jobs {
		j.Stop()
	}

	a.l.Info("shutdown complete")
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.l.Warn("close error", applogger.Error(err))
		}
	}
	return nil
}
