package workflow

import (
	"context"

	"gloss/internal/library"
	"gloss/internal/logging"
	"gloss/internal/stage"
)

// StatusSummary represents lightweight workflow diagnostics.
type StatusSummary struct {
	Running      bool
	LastError    string
	LastLecture  *library.Lecture
	LectureStats map[library.Status]int
	StageHealth  map[string]stage.Health
}

// Status returns the latest workflow information.
func (m *Manager) Status(ctx context.Context) StatusSummary {
	m.mu.RLock()
	running := m.running
	lastErr := m.lastErr
	lastLecture := m.lastLecture
	handler := m.handler
	m.mu.RUnlock()

	stats, err := m.store.Stats(ctx)
	if err != nil {
		m.logger.Warn("failed to read library stats", logging.Error(err))
	}

	health := make(map[string]stage.Health, 1)
	if handler != nil {
		health[stageName] = handler.HealthCheck(ctx)
	}

	summary := StatusSummary{Running: running, LectureStats: stats, StageHealth: health}
	if lastErr != nil {
		summary.LastError = lastErr.Error()
	}
	if lastLecture != nil {
		copy := *lastLecture
		summary.LastLecture = &copy
	}
	return summary
}

func (m *Manager) setLastError(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setLastLecture(lecture *library.Lecture) {
	m.mu.Lock()
	if lecture != nil {
		copy := *lecture
		m.lastLecture = &copy
	} else {
		m.lastLecture = nil
	}
	m.mu.Unlock()
}
