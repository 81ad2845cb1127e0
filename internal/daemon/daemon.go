package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"log/slog"

	"github.com/gofrs/flock"

	"gloss/internal/api"
	"gloss/internal/config"
	"gloss/internal/library"
	"gloss/internal/logging"
	"gloss/internal/workflow"
)

// Daemon coordinates the background services and enforces single-instance
// execution. It owns the review lane, the local HTTP API, and the inbox
// watcher; library operations go through the shared api.Service.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *library.Store
	manager *workflow.Manager
	svc     *api.Service
	logPath string

	lockPath string
	lock     *flock.Flock

	apiSrv  *apiServer
	watcher *inboxWatcher

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies. logPath names the
// current run's log file so log tailing can find it.
func New(cfg *config.Config, store *library.Store, logger *slog.Logger, mgr *workflow.Manager, svc *api.Service, logPath string) (*Daemon, error) {
	if cfg == nil || store == nil || mgr == nil || svc == nil {
		return nil, errors.New("daemon requires config, store, workflow manager, and api service")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if logPath == "" {
		logPath = filepath.Join(cfg.Paths.LogDir, "glossd.log")
	}

	lockPath := cfg.LockFilePath()
	d := &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		manager:  mgr,
		svc:      svc,
		logPath:  logPath,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	srv, err := newAPIServer(cfg, d, logger)
	if err != nil {
		return nil, err
	}
	d.apiSrv = srv
	d.watcher = newInboxWatcher(cfg, svc, logger)
	return d, nil
}

// Start acquires the instance lock and launches the review lane, the HTTP
// API, and the inbox watcher.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another gloss daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.manager.Start(d.ctx); err != nil {
		d.abortStart()
		return fmt.Errorf("start workflow: %w", err)
	}
	if err := d.apiSrv.start(d.ctx); err != nil {
		d.manager.Stop()
		d.abortStart()
		return fmt.Errorf("start api server: %w", err)
	}
	if d.watcher != nil {
		if err := d.watcher.Start(d.ctx); err != nil {
			// The inbox is a convenience surface; the daemon stays useful
			// without it.
			d.logger.Warn("inbox watcher failed to start",
				logging.Error(err),
				logging.String(logging.FieldEventType, "inbox_watch_failed"),
				logging.String(logging.FieldErrorHint, "check the inbox directory and restart the daemon"),
				logging.String(logging.FieldImpact, "dropped decks will not be imported"),
			)
		}
	}

	d.running.Store(true)
	d.logger.Info("gloss daemon started", logging.String("lock", d.lockPath))
	return nil
}

func (d *Daemon) abortStart() {
	_ = d.lock.Unlock()
	if d.cancel != nil {
		d.cancel()
	}
	d.ctx = nil
	d.cancel = nil
}

// Stop halts background processing and releases the instance lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.watcher != nil {
		d.watcher.Stop()
	}
	d.apiSrv.stop()
	d.manager.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("gloss daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// API returns the shared library service used by RPC and HTTP callers.
func (d *Daemon) API() *api.Service {
	return d.svc
}

// LogPath returns the path to the current run's log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) api.DaemonStatus {
	summary := d.manager.Status(ctx)
	return api.DaemonStatus{
		Running:      d.running.Load(),
		PID:          os.Getpid(),
		LibraryDB:    d.cfg.DatabasePath(),
		LockFilePath: d.lockPath,
		LogPath:      d.logPath,
		Workflow:     api.FromStatusSummary(summary),
	}
}
