package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-services-client/internal/config"
	"github.com/samvad-hq/samvad-services-client/internal/domain"
	"github.com/samvad-hq/samvad-services-client/internal/logger"
	"github.com/samvad-hq/samvad-services-client/internal/metrics"
	"github.com/samvad-hq/samvad-services-client/internal/repository"
	"github.com/samvad-hq/samvad-services-client/internal/storage"
	"github.com/samvad-hq/samvad-services-client/pkg/httpclient"
	"github.com/samvad-hq/samvad-services-client/pkg/publishers"
	"github.com/samvad-hq/samvad-services-client/pkg/services"
)

// App is the services client runtime. It owns the repository and attaches the
// storage recorder, publisher fan-out and metrics as observers of its slot.
type App struct {
	cfg     *config.Config
	log     logger.Logger
	api     *services.API
	repo    *repository.Services
	store   storage.Store
	fanout  *publishers.Fanout
	metrics *metrics.Recorder

	// observers run detached from any single caller's context.
	obsCtx    context.Context
	obsCancel context.CancelFunc
	detach    []func()
	closeOnce sync.Once
}

// New builds the runtime from config.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	api, err := services.NewAPI(httpclient.NewRestyClient(cfg.HTTPTimeout), cfg.APIBaseURL)
	if err != nil {
		return nil, fmt.Errorf("init services api: %w", err)
	}
	log.InfoObj("services api configured", "api_meta", map[string]any{
		"services_url":         api.ServicesURL(),
		"http_timeout_seconds": int(cfg.HTTPTimeout.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := openStore(cfg)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"outcome_ttl_seconds":      int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	obsCtx, obsCancel := context.WithCancel(context.WithoutCancel(ctx))
	a := &App{
		cfg:       cfg,
		log:       log,
		api:       api,
		repo:      repository.NewServices(api, log),
		store:     store,
		fanout:    fanout,
		metrics:   metrics.NewRecorder(),
		obsCtx:    obsCtx,
		obsCancel: obsCancel,
	}
	a.attachObservers()
	return a, nil
}

func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(cfg.PublishersFile) == "" {
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	location := cfg.BBoltPath
	if strings.EqualFold(strings.TrimSpace(cfg.StorageType), storage.TypeRedis) {
		location = cfg.RedisAddr
	}
	return storage.NewStore(cfg.StorageType, location, storage.Options{
		OutcomeTTL:      cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
		RedisKey:        cfg.RedisKey,
		HistorySize:     cfg.RedisHistorySize,
	})
}

func (a *App) attachObservers() {
	slot := a.repo.Slot()
	a.detach = append(a.detach,
		slot.Observe(a.metrics.Observe),
		slot.Observe(a.recordOutcome),
		slot.Observe(a.publishOutcome),
	)
}

// recordOutcome persists the outcome; storage failures are logged, never surfaced.
func (a *App) recordOutcome(o domain.Outcome) {
	if err := a.store.Record(a.obsCtx, o); err != nil {
		a.log.ErrorObj("storing outcome failed", "storage_error", map[string]any{
			"fetch_id": o.FetchID,
			"error":    err.Error(),
		})
	}
}

func (a *App) publishOutcome(o domain.Outcome) {
	if a.fanout.Size() == 0 {
		return
	}
	sent, err := a.fanout.Publish(a.obsCtx, publishers.NewEvent(a.api.ServicesURL(), o))
	if err != nil {
		a.log.ErrorObj("publishing outcome failed", "publish_error", map[string]any{
			"fetch_id":  o.FetchID,
			"delivered": sent,
			"error":     err.Error(),
		})
	}
}

// Repository exposes the underlying repository for interactive front ends.
func (a *App) Repository() *repository.Services { return a.repo }

// Metrics exposes the outcome recorder.
func (a *App) Metrics() *metrics.Recorder { return a.metrics }

// FetchOnce triggers one fetch and waits for its outcome.
func (a *App) FetchOnce(ctx context.Context) (domain.Outcome, error) {
	if a == nil || a.repo == nil {
		return domain.Outcome{}, fmt.Errorf("app is not initialized")
	}
	o, err := a.repo.Fetch(ctx)
	if err != nil {
		return domain.Outcome{}, fmt.Errorf("fetch services: %w", err)
	}
	return o, nil
}

// Watch triggers a fetch immediately and then every interval until ctx is
// done. onOutcome is called for every slot update, including ones produced
// by overlapping fetches.
func (a *App) Watch(ctx context.Context, interval time.Duration, onOutcome func(domain.Outcome)) error {
	if a == nil || a.repo == nil {
		return fmt.Errorf("app is not initialized")
	}
	if interval <= 0 {
		return fmt.Errorf("watch interval must be positive")
	}

	if onOutcome != nil {
		cancel := a.repo.Slot().Observe(onOutcome)
		defer cancel()
	}

	if a.cfg.MetricsAddr != "" {
		stop := a.serveMetrics(a.cfg.MetricsAddr)
		defer stop()
	}

	a.log.InfoObj("watch loop starting", "watch_state", map[string]any{
		"services_url":     a.api.ServicesURL(),
		"publishers_count": a.fanout.Size(),
		"interval":         interval.String(),
	})

	a.repo.TriggerFetch(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.log.InfoObj("watch loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			a.repo.TriggerFetch(ctx)
		}
	}
}

// serveMetrics starts the /metrics listener and returns a function stopping it.
func (a *App) serveMetrics(addr string) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.ErrorObj("metrics server failed", "error", err)
		}
	}()
	a.log.InfoObj("metrics server listening", "metrics_addr", addr)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

// History returns stored outcomes, newest first.
func (a *App) History(ctx context.Context, limit int) ([]storage.Entry, error) {
	if a == nil || a.store == nil {
		return nil, fmt.Errorf("app is not initialized")
	}
	entries, err := a.store.History(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}

// Close detaches observers and releases publishers and storage.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var err error
	a.closeOnce.Do(func() {
		for _, d := range a.detach {
			d()
		}
		a.obsCancel()
		err = errors.Join(a.fanout.Close(), a.store.Close())
		if err != nil {
			a.log.ErrorObj("app close failed", "error", err)
		}
	})
	return err
}
