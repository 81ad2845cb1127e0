package workflow

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gloss/internal/config"
	"gloss/internal/library"
	"gloss/internal/logging"
	"gloss/internal/notifications"
	"gloss/internal/review"
	"gloss/internal/stage"
)

const stageName = "review"

// Manager coordinates the review lane that moves lectures from reviewing to
// reviewed.
type Manager struct {
	cfg          *config.Config
	store        *library.Store
	logger       *slog.Logger
	notifier     notifications.Service
	handler      stage.Handler
	pollInterval time.Duration

	heartbeat *HeartbeatMonitor

	mu          sync.RWMutex
	running     bool
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	lastErr     error
	lastLecture *library.Lecture
}

// NewManager constructs a workflow manager wired to the review engine and
// the configured notifier.
func NewManager(cfg *config.Config, store *library.Store, logger *slog.Logger) *Manager {
	return NewManagerWithHandler(cfg, store, logger, notifications.NewService(cfg), review.NewEngine(cfg, store, logger))
}

// NewManagerWithHandler constructs a workflow manager with a custom notifier
// and stage handler (used in tests).
func NewManagerWithHandler(cfg *config.Config, store *library.Store, logger *slog.Logger, notifier notifications.Service, handler stage.Handler) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:          cfg,
		store:        store,
		logger:       logger,
		notifier:     notifier,
		handler:      handler,
		pollInterval: time.Duration(cfg.Review.QueuePollInterval) * time.Second,
		heartbeat: NewHeartbeatMonitor(
			store,
			logger,
			time.Duration(cfg.Review.HeartbeatInterval)*time.Second,
			time.Duration(cfg.Review.HeartbeatTimeout)*time.Second,
		),
	}
}
