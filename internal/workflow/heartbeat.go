package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"gloss/internal/library"
	"gloss/internal/logging"
)

// HeartbeatMonitor keeps the in-flight lecture's heartbeat fresh while the
// review stage runs.
type HeartbeatMonitor struct {
	store             *library.Store
	logger            *slog.Logger
	heartbeatInterval time.Duration
	heartbeatTimeout  time.Duration
}

// NewHeartbeatMonitor creates a new monitor.
func NewHeartbeatMonitor(store *library.Store, logger *slog.Logger, interval, timeout time.Duration) *HeartbeatMonitor {
	return &HeartbeatMonitor{
		store:             store,
		logger:            logger,
		heartbeatInterval: interval,
		heartbeatTimeout:  timeout,
	}
}

// StartLoop runs a heartbeat updater for a specific lecture until context
// cancellation.
func (h *HeartbeatMonitor) StartLoop(ctx context.Context, wg *sync.WaitGroup, lectureID int64) {
	defer wg.Done()
	ticker := time.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()

	logger := logging.WithContext(ctx, logging.NewComponentLogger(h.logger, "workflow-heartbeat"))

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.store.UpdateHeartbeat(ctx, lectureID); err != nil {
				if errors.Is(err, context.Canceled) {
					logger.Info("daemon shutting down, heartbeat update cancelled")
				} else {
					logger.Warn("heartbeat update failed", logging.Error(err))
				}
			}
		}
	}
}

// Stalled reports whether a reviewing lecture's run has stopped updating its
// heartbeat for longer than the timeout. Queued lectures carry no heartbeat
// and are never stalled; recovery happens on daemon startup, not here.
func Stalled(lecture *library.Lecture, timeout time.Duration) bool {
	if timeout <= 0 || lecture == nil {
		return false
	}
	if lecture.Status != library.StatusReviewing || lecture.LastHeartbeat == nil {
		return false
	}
	return time.Since(*lecture.LastHeartbeat) > timeout
}
