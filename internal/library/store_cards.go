package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gloss/internal/notes"
)

const cardColumns = "id, lecture_id, note_id, position, slide, kind, note_text, response, failed, error_message, model, input_tokens, output_tokens, created_at, updated_at"

func scanCard(scanner rowScanner) (*ReviewCard, error) {
	var (
		id           int64
		lectureID    int64
		noteID       int64
		position     int
		slide        int
		kindStr      string
		noteText     string
		response     sql.NullString
		failed       sql.NullInt64
		errorMessage sql.NullString
		model        sql.NullString
		inputTokens  sql.NullInt64
		outputTokens sql.NullInt64
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(
		&id,
		&lectureID,
		&noteID,
		&position,
		&slide,
		&kindStr,
		&noteText,
		&response,
		&failed,
		&errorMessage,
		&model,
		&inputTokens,
		&outputTokens,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	card := &ReviewCard{
		ID:           id,
		LectureID:    lectureID,
		NoteID:       noteID,
		Position:     position,
		Slide:        slide,
		Kind:         notes.Kind(kindStr),
		NoteText:     noteText,
		Response:     response.String,
		Failed:       failed.Int64 != 0,
		ErrorMessage: errorMessage.String,
		Model:        model.String,
		InputTokens:  inputTokens.Int64,
		OutputTokens: outputTokens.Int64,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		card.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		card.UpdatedAt = updated
	}
	return card, nil
}

// ReplaceCards discards any cards from a previous run and inserts one
// placeholder per note in note order. Called at dispatch time.
func (s *Store) ReplaceCards(ctx context.Context, lectureID int64, lectureNotes []*Note) ([]*ReviewCard, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin card tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM review_cards WHERE lecture_id = ?`, lectureID); err != nil {
		return nil, fmt.Errorf("clear previous cards: %w", err)
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	for _, note := range lectureNotes {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO review_cards (lecture_id, note_id, position, slide, kind, note_text, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			lectureID,
			note.ID,
			note.Position,
			note.Slide,
			string(note.Kind),
			note.Text,
			timestamp,
			timestamp,
		); err != nil {
			return nil, fmt.Errorf("insert card placeholder: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cards: %w", err)
	}
	return s.ListCards(ctx, lectureID)
}

// SetCardResult records a successful provider response on a card.
func (s *Store) SetCardResult(ctx context.Context, cardID int64, response, model string, inputTokens, outputTokens int64) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE review_cards
         SET response = ?, failed = 0, error_message = NULL, model = ?,
             input_tokens = ?, output_tokens = ?, updated_at = ?
         WHERE id = ?`,
		response,
		nullableString(model),
		inputTokens,
		outputTokens,
		time.Now().UTC().Format(time.RFC3339Nano),
		cardID,
	); err != nil {
		return fmt.Errorf("set card result: %w", err)
	}
	return nil
}

// SetCardFailed marks a single card's request as failed. The rest of the
// batch is unaffected.
func (s *Store) SetCardFailed(ctx context.Context, cardID int64, message string) error {
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE review_cards
         SET response = NULL, failed = 1, error_message = ?, updated_at = ?
         WHERE id = ?`,
		message,
		time.Now().UTC().Format(time.RFC3339Nano),
		cardID,
	); err != nil {
		return fmt.Errorf("set card failed: %w", err)
	}
	return nil
}

// GetCard fetches a review card by identifier.
func (s *Store) GetCard(ctx context.Context, id int64) (*ReviewCard, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+cardColumns+` FROM review_cards WHERE id = ?`, id)
	card, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("card %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get card: %w", err)
	}
	return card, nil
}

// ListCards returns a lecture's cards in note order.
func (s *Store) ListCards(ctx context.Context, lectureID int64) ([]*ReviewCard, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+cardColumns+` FROM review_cards WHERE lecture_id = ? ORDER BY position, id`,
		lectureID,
	)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []*ReviewCard
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}
