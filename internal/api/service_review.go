package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"gloss/internal/library"
	"gloss/internal/logging"
)

// Finalize locks a draft lecture's notes, making it eligible for review.
func (s *Service) Finalize(ctx context.Context, ref string) (*Lecture, error) {
	lecture, err := s.resolveLecture(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.store.MarkFinalized(ctx, lecture.ID); err != nil {
		return nil, err
	}
	finalized, err := s.store.GetLecture(ctx, lecture.ID)
	if err != nil {
		return nil, err
	}
	dto := FromLecture(finalized)
	return &dto, nil
}

// ReviewStart checks preconditions and queues a finalized lecture for
// review. Under the daemon the workflow manager picks it up; offline callers
// follow up with RunQueuedReview in the same process.
func (s *Service) ReviewStart(ctx context.Context, ref string) (*Lecture, error) {
	engine, err := s.requireEngine()
	if err != nil {
		return nil, err
	}
	lecture, err := s.resolveLecture(ctx, ref)
	if err != nil {
		return nil, err
	}
	if lecture.Status != library.StatusFinalized {
		return nil, &library.InvalidStateError{
			Op:     "start review",
			Status: lecture.Status,
			Want:   []library.Status{library.StatusFinalized},
		}
	}
	if err := engine.Preflight(ctx, lecture); err != nil {
		return nil, err
	}
	if err := s.store.MarkReviewing(ctx, lecture.ID); err != nil {
		return nil, err
	}
	queued, err := s.store.GetLecture(ctx, lecture.ID)
	if err != nil {
		return nil, err
	}
	dto := FromLecture(queued)
	return &dto, nil
}

// RunQueuedReview executes a queued review run in the calling process. It is
// the offline counterpart of the workflow manager's lane: same transition
// semantics, no heartbeat ticker because the caller blocks until the run
// settles.
func (s *Service) RunQueuedReview(ctx context.Context, ref string) (*Lecture, error) {
	engine, err := s.requireEngine()
	if err != nil {
		return nil, err
	}
	lecture, err := s.resolveLecture(ctx, ref)
	if err != nil {
		return nil, err
	}
	if lecture.Status != library.StatusReviewing {
		return nil, &library.InvalidStateError{
			Op:     "run review",
			Status: lecture.Status,
			Want:   []library.Status{library.StatusReviewing},
		}
	}

	stageCtx := logging.WithLectureID(ctx, lecture.ID)
	stageCtx = logging.WithStage(stageCtx, "review")
	stageCtx = logging.WithRequestID(stageCtx, uuid.NewString())
	stageLogger := logging.WithContext(stageCtx, s.logger)

	if err := s.store.UpdateHeartbeat(stageCtx, lecture.ID); err != nil {
		return nil, fmt.Errorf("claim lecture: %w", err)
	}

	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("lecture_title", lecture.Title),
		logging.String("deck_path", lecture.DeckPath),
	)
	s.notifyReviewStarted(stageCtx, stageLogger, lecture)

	stageStart := time.Now()
	if err := engine.Prepare(stageCtx, lecture); err != nil {
		return nil, s.failRun(stageCtx, stageLogger, lecture, err)
	}
	if err := engine.Execute(stageCtx, lecture); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, s.failRun(stageCtx, stageLogger, lecture, err)
	}

	if err := s.store.MarkReviewed(stageCtx, lecture.ID); err != nil {
		return nil, fmt.Errorf("persist review completion: %w", err)
	}
	settled, err := s.store.GetLecture(stageCtx, lecture.ID)
	if err != nil {
		return nil, err
	}

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("progress_message", settled.ProgressMessage),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	s.notifyReviewCompleted(stageCtx, stageLogger, settled)

	dto := FromLecture(settled)
	return &dto, nil
}

// Cards lists a lecture's review cards in note order.
func (s *Service) Cards(ctx context.Context, lectureRef string) ([]ReviewCard, error) {
	lecture, err := s.resolveLecture(ctx, lectureRef)
	if err != nil {
		return nil, err
	}
	cards, err := s.store.ListCards(ctx, lecture.ID)
	if err != nil {
		return nil, err
	}
	return FromCards(cards), nil
}

// Card returns one card with its follow-up thread.
func (s *Service) Card(ctx context.Context, cardID int64) (*CardDetail, error) {
	card, err := s.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, err
	}
	exchanges, err := s.store.ListExchanges(ctx, cardID)
	if err != nil {
		return nil, err
	}
	return &CardDetail{
		Card:      FromCard(card),
		Exchanges: FromExchanges(exchanges),
	}, nil
}

// FollowUp asks a follow-up question on a reviewed card and appends the
// answer to its thread.
func (s *Service) FollowUp(ctx context.Context, cardID int64, question string) (*Exchange, error) {
	engine, err := s.requireEngine()
	if err != nil {
		return nil, err
	}
	exchange, err := engine.FollowUp(ctx, cardID, question)
	if err != nil {
		return nil, err
	}
	dto := FromExchange(exchange)
	return &dto, nil
}

// Regenerate re-issues one card's review request, clearing its thread.
func (s *Service) Regenerate(ctx context.Context, cardID int64) (*ReviewCard, error) {
	engine, err := s.requireEngine()
	if err != nil {
		return nil, err
	}
	card, err := engine.Regenerate(ctx, cardID)
	if err != nil {
		return nil, err
	}
	dto := FromCard(card)
	return &dto, nil
}

// failRun records a run-level failure: the lecture returns to finalized with
// the error message kept, settled cards stay, and the caller gets the stage
// error back.
func (s *Service) failRun(ctx context.Context, logger *slog.Logger, lecture *library.Lecture, runErr error) error {
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
	if err := s.store.MarkRunFailed(ctx, lecture.ID, message); err != nil {
		logger.Error("failed to record run failure", logging.Error(err))
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyRunFailed(ctx, lecture.Title, message); err != nil {
			logger.Debug("run failure notification failed", logging.Error(err))
		}
	}
	return runErr
}

func (s *Service) notifyReviewStarted(ctx context.Context, logger *slog.Logger, lecture *library.Lecture) {
	if s.notifier == nil {
		return
	}
	lectureNotes, err := s.store.ListNotes(ctx, lecture.ID)
	if err != nil {
		logger.Debug("note count unavailable; start notification skipped", logging.Error(err))
		return
	}
	if err := s.notifier.NotifyReviewStarted(ctx, lecture.Title, len(lectureNotes)); err != nil {
		logger.Debug("review start notification failed", logging.Error(err))
	}
}

func (s *Service) notifyReviewCompleted(ctx context.Context, logger *slog.Logger, lecture *library.Lecture) {
	if s.notifier == nil {
		return
	}
	cards, err := s.store.ListCards(ctx, lecture.ID)
	if err != nil {
		logger.Debug("card count unavailable; completion notification skipped", logging.Error(err))
		return
	}
	failed := 0
	for _, card := range cards {
		if card.Failed {
			failed++
		}
	}
	if err := s.notifier.NotifyReviewCompleted(ctx, lecture.Title, len(cards), failed); err != nil {
		logger.Debug("review completion notification failed", logging.Error(err))
	}
}
