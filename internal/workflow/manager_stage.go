package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gloss/internal/library"
	"gloss/internal/logging"
)

func (m *Manager) processLecture(ctx context.Context, laneLogger *slog.Logger, lecture *library.Lecture) error {
	requestID := uuid.NewString()
	stageCtx := withStageContext(ctx, lecture, requestID)
	stageLogger := logging.WithContext(stageCtx, laneLogger)

	if err := m.claimLecture(stageCtx, lecture); err != nil {
		stageLogger.Error("failed to claim lecture for review", logging.Error(err))
		m.setLastError(err)
		return err
	}

	return m.executeStage(stageCtx, stageLogger, lecture)
}

// claimLecture stamps the first heartbeat so status output shows the run as
// live before the first provider request goes out.
func (m *Manager) claimLecture(ctx context.Context, lecture *library.Lecture) error {
	if err := m.store.UpdateHeartbeat(ctx, lecture.ID); err != nil {
		return fmt.Errorf("claim lecture: %w", err)
	}
	now := time.Now().UTC()
	lecture.LastHeartbeat = &now
	m.setLastLecture(lecture)
	m.notifyReviewStarted(ctx, lecture)
	return nil
}

func (m *Manager) executeStage(ctx context.Context, stageLogger *slog.Logger, lecture *library.Lecture) error {
	stageStart := time.Now()
	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("lecture_title", strings.TrimSpace(lecture.Title)),
		logging.String("deck_path", strings.TrimSpace(lecture.DeckPath)),
	)

	if err := m.handler.Prepare(ctx, lecture); err != nil {
		m.handleRunFailure(ctx, lecture, err)
		m.setLastError(err)
		return err
	}

	execErr := m.executeWithHeartbeat(ctx, lecture)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			stageLogger.Debug("review interrupted by shutdown")
			return execErr
		}
		m.handleRunFailure(ctx, lecture, execErr)
		m.setLastError(execErr)
		return execErr
	}

	if err := m.store.MarkReviewed(ctx, lecture.ID); err != nil {
		wrapped := fmt.Errorf("persist review completion: %w", err)
		stageLogger.Error("failed to persist review completion", logging.Error(wrapped))
		m.setLastError(wrapped)
		return wrapped
	}
	lecture.Status = library.StatusReviewed
	lecture.LastHeartbeat = nil

	stageLogger.Info(
		"stage completed",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("progress_message", strings.TrimSpace(lecture.ProgressMessage)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	m.setLastLecture(lecture)
	m.notifyReviewCompleted(ctx, lecture)
	return nil
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, lecture *library.Lecture) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.StartLoop(hbCtx, &hbWG, lecture.ID)

	execErr := m.handler.Execute(ctx, lecture)
	hbCancel()
	hbWG.Wait()
	return execErr
}

func withStageContext(ctx context.Context, lecture *library.Lecture, requestID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if lecture != nil {
		ctx = logging.WithLectureID(ctx, lecture.ID)
	}
	ctx = logging.WithStage(ctx, stageName)
	if requestID != "" {
		ctx = logging.WithRequestID(ctx, requestID)
	}
	return ctx
}
