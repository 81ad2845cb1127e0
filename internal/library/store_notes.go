package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gloss/internal/notes"
)

const noteColumns = "id, lecture_id, position, slide, kind, text, created_at, updated_at"

func scanNote(scanner rowScanner) (*Note, error) {
	var (
		id         int64
		lectureID  int64
		position   int
		slide      int
		kindStr    string
		text       string
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&id, &lectureID, &position, &slide, &kindStr, &text, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	note := &Note{
		ID:        id,
		LectureID: lectureID,
		Position:  position,
		Slide:     slide,
		Kind:      notes.Kind(kindStr),
		Text:      text,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		note.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		note.UpdatedAt = updated
	}
	return note, nil
}

func validateSlide(slide, deckPages int) error {
	if slide < 1 {
		return fmt.Errorf("slide %d out of range: slide numbers start at 1", slide)
	}
	if deckPages > 0 && slide > deckPages {
		return fmt.Errorf("slide %d out of range: deck has %d pages", slide, deckPages)
	}
	return nil
}

// draftGuardTx loads the owning lecture's status and deck size inside the
// transaction and rejects the mutation once the lecture has left draft.
func draftGuardTx(ctx context.Context, tx *sql.Tx, lectureID int64, op string) (deckPages int, err error) {
	var statusStr string
	row := tx.QueryRowContext(ctx, `SELECT status, deck_pages FROM lectures WHERE id = ?`, lectureID)
	if err := row.Scan(&statusStr, &deckPages); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("lecture %d: %w", lectureID, ErrNotFound)
		}
		return 0, fmt.Errorf("load lecture status: %w", err)
	}
	if Status(statusStr) != StatusDraft {
		return 0, &InvalidStateError{Op: op, Status: Status(statusStr), Want: []Status{StatusDraft}}
	}
	return deckPages, nil
}

// AppendNote adds a classified note line to a draft lecture.
func (s *Store) AppendNote(ctx context.Context, lectureID int64, slide int, kind notes.Kind, text string) (*Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &EmptyInputError{Field: "note text"}
	}
	if kind == "" {
		kind = notes.KindUntagged
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin note tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deckPages, err := draftGuardTx(ctx, tx, lectureID, "add note")
	if err != nil {
		return nil, err
	}
	if err := validateSlide(slide, deckPages); err != nil {
		return nil, err
	}

	var position int
	row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(position), 0) + 1 FROM notes WHERE lecture_id = ?`, lectureID)
	if err := row.Scan(&position); err != nil {
		return nil, fmt.Errorf("next note position: %w", err)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := tx.ExecContext(
		ctx,
		`INSERT INTO notes (lecture_id, position, slide, kind, text, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		lectureID, position, slide, string(kind), text, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit note: %w", err)
	}
	return s.GetNote(ctx, id)
}

// UpdateNote rewrites a note's slide, kind, and text while the lecture is
// still in draft.
func (s *Store) UpdateNote(ctx context.Context, noteID int64, slide int, kind notes.Kind, text string) (*Note, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &EmptyInputError{Field: "note text"}
	}
	if kind == "" {
		kind = notes.KindUntagged
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin note tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var lectureID int64
	row := tx.QueryRowContext(ctx, `SELECT lecture_id FROM notes WHERE id = ?`, noteID)
	if err := row.Scan(&lectureID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("note %d: %w", noteID, ErrNotFound)
		}
		return nil, fmt.Errorf("load note: %w", err)
	}

	deckPages, err := draftGuardTx(ctx, tx, lectureID, "edit note")
	if err != nil {
		return nil, err
	}
	if err := validateSlide(slide, deckPages); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(
		ctx,
		`UPDATE notes SET slide = ?, kind = ?, text = ?, updated_at = ? WHERE id = ?`,
		slide, string(kind), text, time.Now().UTC().Format(time.RFC3339Nano), noteID,
	); err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit note: %w", err)
	}
	return s.GetNote(ctx, noteID)
}

// DeleteNote removes a note from a draft lecture.
func (s *Store) DeleteNote(ctx context.Context, noteID int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin note tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var lectureID int64
	row := tx.QueryRowContext(ctx, `SELECT lecture_id FROM notes WHERE id = ?`, noteID)
	if err := row.Scan(&lectureID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("load note: %w", err)
	}

	if _, err := draftGuardTx(ctx, tx, lectureID, "delete note"); err != nil {
		return false, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, noteID)
	if err != nil {
		return false, fmt.Errorf("delete note: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete: %w", err)
	}
	return affected > 0, nil
}

// GetNote fetches a note by identifier.
func (s *Store) GetNote(ctx context.Context, id int64) (*Note, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return note, nil
}

// ListNotes returns a lecture's notes in creation order.
func (s *Store) ListNotes(ctx context.Context, lectureID int64) ([]*Note, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+noteColumns+` FROM notes WHERE lecture_id = ? ORDER BY position, id`,
		lectureID,
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var list []*Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, note)
	}
	return list, rows.Err()
}
