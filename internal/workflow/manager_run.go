package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"gloss/internal/library"
	"gloss/internal/logging"
)

// Start begins background processing.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}
	if m.handler == nil {
		m.mu.Unlock()
		return errors.New("review stage not configured")
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.wg.Add(1)
	m.mu.Unlock()

	go m.runLane(runCtx)
	return nil
}

// Stop terminates background processing and waits for the in-flight lecture.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) runLane(ctx context.Context) {
	defer m.wg.Done()
	logger := logging.NewComponentLogger(m.logger, "workflow-review-runner")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		lecture, err := m.store.NextForStatuses(ctx, library.StatusReviewing)
		if err != nil {
			m.handleNextLectureError(ctx, logger, err)
			continue
		}
		if lecture == nil {
			m.waitForLectureOrShutdown(ctx)
			continue
		}

		if err := m.processLecture(ctx, logger, lecture); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

func (m *Manager) handleNextLectureError(ctx context.Context, logger *slog.Logger, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	m.setLastError(err)
	logger.Error("failed to fetch next lecture",
		logging.Error(err),
		logging.String(logging.FieldEventType, "lecture_fetch_failed"),
		logging.String(logging.FieldErrorHint, "check library database access"),
	)
	select {
	case <-ctx.Done():
		return
	case <-time.After(time.Duration(m.cfg.Review.ErrorRetryInterval) * time.Second):
	}
}

func (m *Manager) waitForLectureOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(m.pollInterval):
	}
}
