package workflow

import (
	"context"
	"errors"
	"strings"

	"gloss/internal/library"
	"gloss/internal/logging"
)

// handleRunFailure returns the lecture to finalized with the error recorded.
// Per-note provider failures never reach here; they settle on the cards and
// the run still completes. This path is for run-level errors only.
func (m *Manager) handleRunFailure(ctx context.Context, lecture *library.Lecture, runErr error) {
	logger := logging.WithContext(ctx, logging.NewComponentLogger(m.logger, "workflow-manager"))

	message := strings.TrimSpace(runErr.Error())
	if message == "" {
		message = "review run failed"
	}

	logger.Error("review run failed",
		logging.Error(runErr),
		logging.Alert("run_failure"),
		logging.String("resolved_status", string(library.StatusFinalized)),
		logging.String("error_message", message),
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String(logging.FieldErrorHint, "fix the cause and run gloss review again"),
	)

	if err := m.store.MarkRunFailed(ctx, lecture.ID, message); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not record run failure")
		} else {
			logger.Error("failed to record run failure", logging.Error(err))
		}
	} else {
		lecture.SetRunFailed(message)
	}

	m.setLastLecture(lecture)
	m.notifyRunFailed(ctx, lecture, message)
}
