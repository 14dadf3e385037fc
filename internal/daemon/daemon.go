package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus"

	"ghplayer/internal/artwork"
	"ghplayer/internal/auth"
	"ghplayer/internal/config"
	"ghplayer/internal/contentapi"
	"ghplayer/internal/credentials"
	"ghplayer/internal/library"
	"ghplayer/internal/logging"
	"ghplayer/internal/session"
	"ghplayer/internal/worker"
)

// Daemon coordinates the library services and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	creds  *credentials.Store

	registry  *prometheus.Registry
	host      *session.Host
	gate      *auth.Gate
	cache     *artwork.Cache
	artwork   ArtworkSource
	worker    *worker.Worker
	navigator *library.Navigator
	queue     *library.QueueBuilder
	api       *apiServer

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	startedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running         bool
	PID             int
	StartedAt       time.Time
	LockFilePath    string
	CredentialsPath string
	BackendURL      string
	Auth            auth.Snapshot
	WorkerRunning   bool
	WorkerDepth     int
	WorkerActive    string
	Artwork         artwork.CacheStats
	HasPlaylist     bool
	NowPlaying      *session.MediaItem
	PositionMs      int64
}

// Option customizes daemon wiring.
type Option func(*options)

type options struct {
	source  library.Source
	artwork ArtworkSource
}

// ArtworkSource resolves artwork for the tree and serves back the bytes of
// refs it has already resolved. Cached never downloads.
type ArtworkSource interface {
	library.Artwork
	Cached(ref string) ([]byte, bool)
}

// WithSource replaces the content API client.
func WithSource(source library.Source) Option {
	return func(o *options) {
		o.source = source
	}
}

// WithArtwork replaces the artwork resolver used by the library and /api/artwork.
func WithArtwork(art ArtworkSource) Option {
	return func(o *options) {
		o.artwork = art
	}
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *credentials.Store, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil {
		return nil, errors.New("daemon requires config, credential store, and logger")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	registry := prometheus.NewRegistry()
	host := session.NewHost(logger, session.NewEventHub(0))
	gate := auth.NewGate(store, logger)
	artMetrics := artwork.NewMetrics(registry)
	cache := artwork.NewCache(cfg.Artwork.CacheBytes, artMetrics)

	var art ArtworkSource = o.artwork
	if art == nil {
		art = artwork.NewResolver(cfg, cache, store, logger, artwork.WithMetrics(artMetrics))
	}
	source := o.source
	if source == nil {
		source = contentapi.New(cfg, store)
	}
	w := worker.New(logger, worker.WithMetrics(worker.NewMetrics(registry)))
	deps := library.Deps{
		Gate:    gate,
		Source:  source,
		Artwork: art,
		Worker:  w,
		Metrics: library.NewMetrics(registry),
		Logger:  logger,
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:       cfg,
		logger:    logging.NewComponentLogger(logger, "daemon"),
		creds:     store,
		registry:  registry,
		host:      host,
		gate:      gate,
		cache:     cache,
		artwork:   art,
		worker:    w,
		navigator: library.NewNavigator(cfg, deps),
		queue:     library.NewQueueBuilder(cfg, deps),
		lockPath:  lockPath,
		lock:      flock.New(lockPath),
	}

	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.api = srv
	return d, nil
}

// Start acquires the daemon lock, seeds the session, and launches the worker
// and API server.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another ghplayer daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.host.Bootstrap(d.ctx, d.creds)
	if err := d.worker.Start(d.ctx); err != nil {
		d.abortStart()
		return fmt.Errorf("start worker: %w", err)
	}
	if err := d.api.start(d.ctx); err != nil {
		d.worker.Stop()
		d.abortStart()
		return fmt.Errorf("start api server: %w", err)
	}

	d.startedAt = time.Now()
	d.running.Store(true)
	d.logger.Info("ghplayer daemon started",
		logging.String("lock", d.lockPath),
		logging.String("api_bind", d.APIAddress()),
	)
	return nil
}

func (d *Daemon) abortStart() {
	_ = d.lock.Unlock()
	d.cancel()
	d.ctx = nil
	d.cancel = nil
}

// Stop stops the API server and worker and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.api.stop()
	d.worker.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("ghplayer daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.creds != nil {
		return d.creds.Close()
	}
	return nil
}

// Host exposes the session host for in-process playback integrations.
func (d *Daemon) Host() *session.Host {
	return d.host
}

// APIAddress returns the address the API server is bound to, or the
// configured bind address before Start.
func (d *Daemon) APIAddress() string {
	if d.api == nil {
		return ""
	}
	return d.api.address()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:         d.running.Load(),
		PID:             os.Getpid(),
		StartedAt:       d.startedAt,
		LockFilePath:    d.lockPath,
		CredentialsPath: d.creds.Path(),
		BackendURL:      d.cfg.Backend.URL,
		Auth:            d.gate.Snapshot(ctx, d.host.Extras()),
		WorkerRunning:   d.worker.Running(),
		WorkerDepth:     d.worker.Depth(),
		WorkerActive:    d.worker.Active(),
		Artwork:         d.cache.Stats(),
		HasPlaylist:     d.host.HasPlaylist(),
		PositionMs:      d.host.CurrentPositionMs(),
	}
	if stored, ok, err := d.creds.Load(ctx); err == nil && ok && stored.BaseURL != "" {
		status.BackendURL = stored.BaseURL
	}
	if item, ok := d.host.CurrentItem(); ok {
		status.NowPlaying = &item
	}
	return status
}
