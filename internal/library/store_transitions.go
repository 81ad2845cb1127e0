package library

import (
	"context"
	"fmt"
	"time"
)

// transition performs a compare-and-set status move. When the lecture is not
// in the from status the call fails with InvalidStateError and nothing
// changes.
func (s *Store) transition(ctx context.Context, id int64, op string, from, to Status, set string, args ...any) error {
	query := `UPDATE lectures SET status = ?, updated_at = ?`
	if set != "" {
		query += ", " + set
	}
	query += ` WHERE id = ? AND status = ?`

	full := make([]any, 0, len(args)+4)
	full = append(full, to, time.Now().UTC().Format(time.RFC3339Nano))
	full = append(full, args...)
	full = append(full, id, from)

	res, err := s.execWithRetry(ctx, query, full...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if affected == 0 {
		lecture, getErr := s.GetLecture(ctx, id)
		if getErr != nil {
			return getErr
		}
		return &InvalidStateError{Op: op, Status: lecture.Status, Want: []Status{from}}
	}
	return nil
}

// MarkFinalized locks a draft lecture's notes by moving it to finalized.
func (s *Store) MarkFinalized(ctx context.Context, id int64) error {
	return s.transition(ctx, id, "finalize", StatusDraft, StatusFinalized, "")
}

// MarkReviewing moves a finalized lecture into review, clearing any previous
// run's error and progress.
func (s *Store) MarkReviewing(ctx context.Context, id int64) error {
	return s.transition(ctx, id, "start review", StatusFinalized, StatusReviewing,
		`error_message = NULL, progress_done = 0, progress_total = 0, progress_message = ?`,
		"queued for review",
	)
}

// MarkReviewed completes a review run once every card has settled. The
// progress message written by dispatch is kept for display.
func (s *Store) MarkReviewed(ctx context.Context, id int64) error {
	return s.transition(ctx, id, "complete review", StatusReviewing, StatusReviewed,
		`last_heartbeat = NULL`,
	)
}

// MarkRunFailed returns a lecture from reviewing to finalized after a failed
// run, recording the error for display. The notes stay locked.
func (s *Store) MarkRunFailed(ctx context.Context, id int64, message string) error {
	return s.transition(ctx, id, "fail review run", StatusReviewing, StatusFinalized,
		`error_message = ?, progress_message = ?, last_heartbeat = NULL`,
		message, message,
	)
}

// UpdateHeartbeat updates the last heartbeat timestamp for an in-flight
// lecture.
func (s *Store) UpdateHeartbeat(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE lectures SET last_heartbeat = ?, updated_at = ? WHERE id = ?`,
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}

// UpdateProgress persists the settled/total counters for status display.
func (s *Store) UpdateProgress(ctx context.Context, id int64, done, total int, message string) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE lectures SET progress_done = ?, progress_total = ?, progress_message = ?, updated_at = ? WHERE id = ?`,
		done,
		total,
		nullableString(message),
		time.Now().UTC().Format(time.RFC3339Nano),
		id,
	); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// ResetStuckReviewing clears heartbeat and progress on lectures left in
// reviewing by an interrupted daemon. The status is kept so the manager
// re-runs them; dispatch discards the partial cards.
func (s *Store) ResetStuckReviewing(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE lectures
         SET progress_done = 0, progress_total = 0, progress_message = ?,
             last_heartbeat = NULL, updated_at = ?
         WHERE status = ?`,
		"reset after interrupted run",
		time.Now().UTC().Format(time.RFC3339Nano),
		StatusReviewing,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck lectures: %w", err)
	}
	return res.RowsAffected()
}
