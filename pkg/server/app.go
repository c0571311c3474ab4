package server

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"CrediTech/internal/usecase"
	"CrediTech/pkg/config"
	xhttp "CrediTech/pkg/http"
	pkgkafka "CrediTech/pkg/kafka"
	applogger "CrediTech/pkg/logger"
)

// App encapsulates the application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	pipeline   *usecase.Pipeline
	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	refresh    pkgkafka.MessageHandler
}

// New creates an App. consumer may be nil when Kafka is disabled.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	pipeline *usecase.Pipeline,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	refresh pkgkafka.MessageHandler,
) *App {
	return &App{
		cfg:        cfg,
		l:          applogger.OrNop(l).Component("app"),
		pipeline:   pipeline,
		httpServer: httpServer,
		consumer:   consumer,
		refresh:    refresh,
	}
}

// Run builds the analytics state, starts serving and blocks until ctx is done
// or the process receives SIGINT/SIGTERM.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Health answers while the build runs; analytics routes fill in as stages publish.
	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	start := time.Now()
	if err := a.pipeline.Initialize(ctx); err != nil {
		a.l.Error("analytics initialization failed", applogger.Error(err))
	} else {
		a.l.Info("analytics ready", applogger.Duration("took_ms", time.Since(start)))
	}

	if a.consumer != nil && a.refresh != nil {
		a.consumer.RegisterHandler(a.refresh)
		if err := a.consumer.Start(); err != nil {
			a.l.Error("kafka consumer error", applogger.Error(err))
		} else {
			a.l.Info("listening for refresh commands", applogger.String("topic", a.refresh.Topic()))
		}
	}

	<-ctx.Done()
	a.l.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops inbound traffic first; connection pools are closed by the
// DI cleanup afterwards.
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}
	a.l.Info("shutdown complete")
	return nil
}
