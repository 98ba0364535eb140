package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"usergate/internal/adapters/httpapi"
	"usergate/internal/config"
	"usergate/internal/core"
	"usergate/internal/keys"
	"usergate/internal/logging"
	"usergate/internal/notify"
)

// app holds the wired components of a running service.
type app struct {
	cfg        config.Config
	logger     zerolog.Logger
	pool       *keys.Pool
	dispatcher *notify.Dispatcher
	handler    http.Handler
}

func newLogger(cfg config.Config, w io.Writer) (zerolog.Logger, error) {
	return logging.NewWithWriter(w, cfg.Log.Level, cfg.Log.Format)
}

// openPool opens the configured record store and loads the pool from it.
func openPool(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*keys.Pool, error) {
	store, err := keys.OpenRecordStore(ctx, cfg.Keys.Storage)
	if err != nil {
		return nil, fmt.Errorf("open key storage: %w", err)
	}
	pool := keys.NewPool(store, keys.WithKeyLength(cfg.Keys.Length), keys.WithPoolLogger(logger))
	if err := pool.Load(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return pool, nil
}

func newApp(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*app, error) {
	pool, err := openPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if _, err := pool.EnsureCapacity(ctx, cfg.Keys.PoolSize); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("fill key pool: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		keys.NewPoolCollector(pool, ""),
	)
	recorder, err := core.NewPrometheusRecorder(reg, "")
	if err != nil {
		_ = pool.Close()
		return nil, err
	}
	deliveries, err := notify.NewResultsCounter(reg, "")
	if err != nil {
		_ = pool.Close()
		return nil, err
	}

	notifier, err := notify.New(notify.Driver(cfg.Notify.Driver), logger)
	if err != nil {
		_ = pool.Close()
		return nil, err
	}
	dispatcher := notify.NewDispatcher(notifier,
		notify.WithTimeout(cfg.Notify.Timeout),
		notify.WithLogger(logger),
		notify.WithResultsCounter(deliveries),
	)
	issuer := keys.NewIssuer(pool,
		keys.WithDispatcher(dispatcher),
		keys.WithIssuerLogger(logger),
		keys.WithReplenish(cfg.Keys.ReplenishBelow, cfg.Keys.PoolSize),
	)
	mode, err := keys.ParseAuthMode(cfg.Keys.AuthMode)
	if err != nil {
		_ = pool.Close()
		return nil, err
	}

	users := core.NewInMemoryService(core.NewDefaultRuleBook(cfg.RulesConfig()),
		core.WithLogger(logger),
		core.WithMetricsRecorder(recorder),
	)
	handler := httpapi.NewHandler(users, issuer, keys.NewGate(pool, mode),
		httpapi.WithLogger(logger),
		httpapi.WithProtection(cfg.Server.Protect),
		httpapi.WithRootRedirect(cfg.Server.RootRedirect),
		httpapi.WithWebhookEvent(cfg.Webhook.EventType),
		httpapi.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})),
	)
	return &app{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		dispatcher: dispatcher,
		handler:    handler.Routes(),
	}, nil
}

// close drains pending notifications and releases the key store.
func (a *app) close(ctx context.Context) error {
	if err := a.dispatcher.Wait(ctx); err != nil {
		a.logger.Warn().Err(err).Msg("pending notifications abandoned")
	}
	return a.pool.Close()
}
