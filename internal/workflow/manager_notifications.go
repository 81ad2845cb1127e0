package workflow

import (
	"context"
	"errors"

	"gloss/internal/library"
	"gloss/internal/logging"
)

func (m *Manager) notifyReviewStarted(ctx context.Context, lecture *library.Lecture) {
	if m.notifier == nil {
		return
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(m.logger, "workflow-manager"))
	lectureNotes, err := m.store.ListNotes(ctx, lecture.ID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not count notes for start notification")
		} else {
			logger.Warn("note count unavailable; start notification skipped",
				logging.Error(err),
				logging.String(logging.FieldEventType, "note_count_failed"),
				logging.String(logging.FieldErrorHint, "check library database access"),
				logging.String(logging.FieldImpact, "start notification will not be sent"),
			)
		}
		return
	}
	if err := m.notifier.NotifyReviewStarted(ctx, lecture.Title, len(lectureNotes)); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send start notification")
		} else {
			logger.Debug("review start notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) notifyReviewCompleted(ctx context.Context, lecture *library.Lecture) {
	if m.notifier == nil {
		return
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(m.logger, "workflow-manager"))
	cards, err := m.store.ListCards(ctx, lecture.ID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not count cards for completion notification")
		} else {
			logger.Warn("card counts unavailable; completion notification skipped",
				logging.Error(err),
				logging.String(logging.FieldEventType, "card_count_failed"),
				logging.String(logging.FieldErrorHint, "check library database access"),
				logging.String(logging.FieldImpact, "completion notification will not be sent"),
			)
		}
		return
	}
	failed := 0
	for _, card := range cards {
		if card.Failed {
			failed++
		}
	}
	if err := m.notifier.NotifyReviewCompleted(ctx, lecture.Title, len(cards), failed); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send completion notification")
		} else {
			logger.Debug("review completion notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) notifyRunFailed(ctx context.Context, lecture *library.Lecture, message string) {
	if m.notifier == nil {
		return
	}
	logger := logging.WithContext(ctx, logging.NewComponentLogger(m.logger, "workflow-manager"))
	if err := m.notifier.NotifyRunFailed(ctx, lecture.Title, message); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send failure notification")
		} else {
			logger.Debug("run failure notification failed", logging.Error(err))
		}
	}
}
