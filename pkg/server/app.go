package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"CoinPulse/internal/service/factors"
	"CoinPulse/internal/service/scheduler"
	"CoinPulse/internal/usecase"
	pkgch "CoinPulse/pkg/clickhouse"
	"CoinPulse/pkg/config"
	xhttp "CoinPulse/pkg/http"
	pkgkafka "CoinPulse/pkg/kafka"
	applogger "CoinPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	l           *applogger.Logger
	collector   *usecase.TradeCollector
	consumer    *pkgkafka.Consumer
	ticks       pkgkafka.MessageHandler
	facts       pkgkafka.MessageHandler
	chClient    *pkgch.Client
	sched       *scheduler.Scheduler
	poller      *factors.Poller
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	TradeProc   *usecase.TradeProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.TradeCollector,
	consumer *pkgkafka.Consumer,
	ticks pkgkafka.MessageHandler,
	facts pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	sched *scheduler.Scheduler,
	poller *factors.Poller,
) *App {
	return &App{
		cfg:       cfg,
		l:         l,
		collector: collector,
		consumer:  consumer,
		ticks:     ticks,
		facts:     facts,
		chClient:  chClient,
		sched:     sched,
		poller:    poller,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := a.l

	// Setup Echo HTTP server using pkg/http and register routes via handler
	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.Strings("symbols", a.cfg.Stream.Symbols))

	// Start consumer if configured
	if a.consumer != nil {
		if a.ticks != nil {
			a.consumer.RegisterHandler(a.ticks)
		}
		if a.facts != nil && a.facts.Topic() != "" {
			a.consumer.RegisterHandler(a.facts)
		}
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started",
			applogger.String("ticks_topic", a.cfg.Kafka.Topic),
			applogger.String("factors_topic", a.cfg.Kafka.FactorsTopic))
	}

	// Start factor poller
	if a.poller != nil {
		go a.poller.Run(ctx)
		l.Info("factor poller started")
	}

	// Start boundary refresh scheduler
	if a.sched != nil {
		if err := a.sched.Start(); err != nil {
			l.Error("scheduler start error", applogger.Error(err))
			return err
		}
		l.Info("risk scheduler started")
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}
	l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	l := a.l
	l.Info("shutting down...")

	// Stop scheduled refreshes first so no new work lands on closing clients
	if a.sched != nil {
		if err := a.sched.Stop(ctx); err != nil {
			l.Warn("scheduler stop error", applogger.Error(err))
		}
	}

	// Stop collector (pipeline + stream)
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close trade processor resources (publisher/storage)
	if a.TradeProc != nil {
		a.TradeProc.Close()
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
