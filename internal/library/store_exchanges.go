package library

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const exchangeColumns = "id, card_id, position, question, answer, created_at"

func scanExchange(scanner rowScanner) (*Exchange, error) {
	var (
		id         int64
		cardID     int64
		position   int
		question   string
		answer     string
		createdRaw string
	)
	if err := scanner.Scan(&id, &cardID, &position, &question, &answer, &createdRaw); err != nil {
		return nil, err
	}
	exchange := &Exchange{
		ID:       id,
		CardID:   cardID,
		Position: position,
		Question: question,
		Answer:   answer,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		exchange.CreatedAt = created
	}
	return exchange, nil
}

// AppendExchange adds one follow-up question and answer to a card's thread.
func (s *Store) AppendExchange(ctx context.Context, cardID int64, question, answer string) (*Exchange, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &EmptyInputError{Field: "follow-up question"}
	}
	if _, err := s.GetCard(ctx, cardID); err != nil {
		return nil, err
	}

	position, err := s.nextPosition(ctx, "exchanges", "card_id", cardID)
	if err != nil {
		return nil, err
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO exchanges (card_id, position, question, answer, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		cardID, position, question, answer, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert exchange: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+exchangeColumns+` FROM exchanges WHERE id = ?`, id)
	exchange, err := scanExchange(row)
	if err != nil {
		return nil, fmt.Errorf("get exchange: %w", err)
	}
	return exchange, nil
}

// ListExchanges returns a card's follow-up thread in order.
func (s *Store) ListExchanges(ctx context.Context, cardID int64) ([]*Exchange, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+exchangeColumns+` FROM exchanges WHERE card_id = ? ORDER BY position, id`,
		cardID,
	)
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []*Exchange
	for rows.Next() {
		exchange, err := scanExchange(rows)
		if err != nil {
			return nil, err
		}
		exchanges = append(exchanges, exchange)
	}
	return exchanges, rows.Err()
}

// ClearExchanges drops a card's thread. Used when a card is regenerated and
// the thread would reference the replaced response.
func (s *Store) ClearExchanges(ctx context.Context, cardID int64) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM exchanges WHERE card_id = ?`, cardID)
	if err != nil {
		return 0, fmt.Errorf("clear exchanges: %w", err)
	}
	return res.RowsAffected()
}
