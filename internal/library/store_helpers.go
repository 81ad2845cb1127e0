package library

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt64(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	v := value.UTC().Format(time.RFC3339Nano)
	return v
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}

// nextPosition returns MAX(position)+1 scoped by an optional owner column so
// new rows append to the end of their ordering.
func (s *Store) nextPosition(ctx context.Context, table, ownerColumn string, ownerID any) (int, error) {
	query := "SELECT COALESCE(MAX(position), 0) + 1 FROM " + table
	args := []any{}
	if ownerColumn != "" {
		query += " WHERE " + ownerColumn + " = ?"
		args = append(args, ownerID)
	}
	var position int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&position); err != nil {
		return 0, fmt.Errorf("next position for %s: %w", table, err)
	}
	return position, nil
}
