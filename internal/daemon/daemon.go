package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gofrs/flock"

	"chatshot/internal/classifier"
	"chatshot/internal/config"
	"chatshot/internal/logging"
	"chatshot/internal/preflight"
)

// Classifier runs the pipeline for one upload.
type Classifier interface {
	Classify(ctx context.Context, data []byte) (classifier.Result, error)
	Mode() string
}

// StatusFunc reports readiness. includeLLM requests the live provider check.
type StatusFunc func(ctx context.Context, includeLLM bool) []preflight.Result

// Option customizes a Daemon.
type Option func(*Daemon)

// WithStatusFunc overrides the readiness report served from /api/status.
func WithStatusFunc(fn StatusFunc) Option {
	return func(d *Daemon) {
		if fn != nil {
			d.status = fn
		}
	}
}

// Daemon serves the classification API and enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	pipeline Classifier
	status   StatusFunc

	lockPath string
	lock     *flock.Flock
	server   *apiServer

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon around an assembled pipeline.
func New(cfg *config.Config, pipeline Classifier, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || pipeline == nil {
		return nil, errors.New("daemon requires config and classifier")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		pipeline: pipeline,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.status = func(ctx context.Context, includeLLM bool) []preflight.Result {
		return preflight.RunAll(ctx, cfg, preflight.Options{SkipLLM: !includeLLM})
	}
	for _, opt := range opts {
		opt(d)
	}
	d.server = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the lock and begins serving.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another chatshot server instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.server.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("chatshot server started",
		logging.String("lock", d.lockPath),
		logging.String("mode", d.pipeline.Mode()),
		logging.Bool("auth", d.cfg.Server.APIToken != ""),
	)
	return nil
}

// Stop shuts down the listener and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release server lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("chatshot server stopped")
}

// Run serves until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	d.Stop()
	return nil
}

// Running reports whether the server is accepting requests.
func (d *Daemon) Running() bool { return d.running.Load() }

// Addr returns the bound listener address, or "" before Start.
func (d *Daemon) Addr() string { return d.server.addr() }

// Handler exposes the routed API for in-process use.
func (d *Daemon) Handler() http.Handler { return d.server.server.Handler }
