package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gloss/internal/textutil"
)

const lectureColumns = "id, course_id, group_id, title, slug, position, deck_path, deck_pages, status, error_message, progress_done, progress_total, progress_message, last_heartbeat, created_at, updated_at"

func scanLecture(scanner rowScanner) (*Lecture, error) {
	var (
		id               int64
		courseID         int64
		groupID          sql.NullInt64
		title            string
		slug             string
		position         int
		deckPath         sql.NullString
		deckPages        sql.NullInt64
		statusStr        string
		errorMessage     sql.NullString
		progressDone     sql.NullInt64
		progressTotal    sql.NullInt64
		progressMessage  sql.NullString
		lastHeartbeatRaw sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&courseID,
		&groupID,
		&title,
		&slug,
		&position,
		&deckPath,
		&deckPages,
		&statusStr,
		&errorMessage,
		&progressDone,
		&progressTotal,
		&progressMessage,
		&lastHeartbeatRaw,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	lecture := &Lecture{
		ID:              id,
		CourseID:        courseID,
		Title:           title,
		Slug:            slug,
		Position:        position,
		DeckPath:        deckPath.String,
		DeckPages:       int(deckPages.Int64),
		Status:          Status(statusStr),
		ErrorMessage:    errorMessage.String,
		ProgressDone:    int(progressDone.Int64),
		ProgressTotal:   int(progressTotal.Int64),
		ProgressMessage: progressMessage.String,
	}
	if groupID.Valid {
		gid := groupID.Int64
		lecture.GroupID = &gid
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			lecture.LastHeartbeat = &heartbeat
		}
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		lecture.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		lecture.UpdatedAt = updated
	}
	return lecture, nil
}

func (s *Store) lectureSlugTaken(ctx context.Context, courseID, excludeID int64) (func(string) bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, slug FROM lectures WHERE course_id = ?`, courseID)
	if err != nil {
		return nil, fmt.Errorf("load lecture slugs: %w", err)
	}
	defer rows.Close()

	taken := make(map[string]struct{})
	for rows.Next() {
		var id int64
		var slug string
		if err := rows.Scan(&id, &slug); err != nil {
			return nil, err
		}
		if id == excludeID {
			continue
		}
		taken[slug] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return func(candidate string) bool {
		_, ok := taken[candidate]
		return ok
	}, nil
}

// CreateLecture inserts a new draft lecture in a course, optionally inside a
// group belonging to the same course.
func (s *Store) CreateLecture(ctx context.Context, courseID int64, groupID *int64, title string) (*Lecture, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &EmptyInputError{Field: "lecture title"}
	}
	if _, err := s.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	if groupID != nil {
		group, err := s.GetGroup(ctx, *groupID)
		if err != nil {
			return nil, err
		}
		if group.CourseID != courseID {
			return nil, fmt.Errorf("group %d belongs to course %d, not %d", group.ID, group.CourseID, courseID)
		}
	}

	taken, err := s.lectureSlugTaken(ctx, courseID, 0)
	if err != nil {
		return nil, err
	}
	slug := textutil.UniqueSlug(textutil.Slugify(title), taken)

	position, err := s.nextPosition(ctx, "lectures", "course_id", courseID)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO lectures (course_id, group_id, title, slug, position, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		courseID,
		nullableInt64(groupID),
		title,
		slug,
		position,
		StatusDraft,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert lecture: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetLecture(ctx, id)
}

// GetLecture fetches a lecture by identifier.
func (s *Store) GetLecture(ctx context.Context, id int64) (*Lecture, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+lectureColumns+` FROM lectures WHERE id = ?`, id)
	lecture, err := scanLecture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lecture %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get lecture: %w", err)
	}
	return lecture, nil
}

// GetLectureBySlug fetches a lecture by its slug within a course.
func (s *Store) GetLectureBySlug(ctx context.Context, courseID int64, slug string) (*Lecture, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+lectureColumns+` FROM lectures WHERE course_id = ? AND slug = ?`,
		courseID, slug,
	)
	lecture, err := scanLecture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("lecture %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get lecture by slug: %w", err)
	}
	return lecture, nil
}

// ListLectures returns a course's lectures in user order.
func (s *Store) ListLectures(ctx context.Context, courseID int64) ([]*Lecture, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+lectureColumns+` FROM lectures WHERE course_id = ? ORDER BY position, id`,
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}
	defer rows.Close()

	var lectures []*Lecture
	for rows.Next() {
		lecture, err := scanLecture(rows)
		if err != nil {
			return nil, err
		}
		lectures = append(lectures, lecture)
	}
	return lectures, rows.Err()
}

// ListLecturesByStatus returns lectures across all courses filtered by status
// set, or every lecture when no status is provided. Ordered by creation time.
func (s *Store) ListLecturesByStatus(ctx context.Context, statuses ...Status) ([]*Lecture, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + lectureColumns + ` FROM lectures`
	orderClause := ` ORDER BY created_at, id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list lectures by status: %w", err)
	}
	defer rows.Close()

	var lectures []*Lecture
	for rows.Next() {
		lecture, err := scanLecture(rows)
		if err != nil {
			return nil, err
		}
		lectures = append(lectures, lecture)
	}
	return lectures, rows.Err()
}

// NextForStatuses returns the oldest lecture matching any of the provided
// statuses.
func (s *Store) NextForStatuses(ctx context.Context, statuses ...Status) (*Lecture, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = status
	}

	query := `SELECT ` + lectureColumns + ` FROM lectures WHERE status IN (` + placeholders + `) ORDER BY created_at, id LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, args...)
	lecture, err := scanLecture(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return lecture, nil
}

// UpdateLecture persists changes to an existing lecture.
func (s *Store) UpdateLecture(ctx context.Context, lecture *Lecture) error {
	if lecture == nil {
		return errors.New("lecture is nil")
	}
	lecture.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE lectures
         SET group_id = ?, title = ?, slug = ?, position = ?, deck_path = ?, deck_pages = ?,
             status = ?, error_message = ?, progress_done = ?, progress_total = ?,
             progress_message = ?, last_heartbeat = ?, updated_at = ?
         WHERE id = ?`,
		nullableInt64(lecture.GroupID),
		lecture.Title,
		lecture.Slug,
		lecture.Position,
		nullableString(lecture.DeckPath),
		lecture.DeckPages,
		lecture.Status,
		nullableString(lecture.ErrorMessage),
		lecture.ProgressDone,
		lecture.ProgressTotal,
		nullableString(lecture.ProgressMessage),
		nullableTime(lecture.LastHeartbeat),
		lecture.UpdatedAt.Format(time.RFC3339Nano),
		lecture.ID,
	); err != nil {
		return fmt.Errorf("update lecture: %w", err)
	}
	return nil
}

// RenameLecture updates a lecture's title and re-derives its slug.
func (s *Store) RenameLecture(ctx context.Context, id int64, title string) (*Lecture, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, &EmptyInputError{Field: "lecture title"}
	}
	lecture, err := s.GetLecture(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.lectureSlugTaken(ctx, lecture.CourseID, id)
	if err != nil {
		return nil, err
	}
	slug := textutil.UniqueSlug(textutil.Slugify(title), taken)

	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE lectures SET title = ?, slug = ?, updated_at = ? WHERE id = ?`,
		title, slug, time.Now().UTC().Format(time.RFC3339Nano), id,
	); err != nil {
		return nil, fmt.Errorf("rename lecture: %w", err)
	}
	return s.GetLecture(ctx, id)
}

// MoveLecture places a lecture in a group (or clears the group when nil).
// The group must belong to the lecture's course.
func (s *Store) MoveLecture(ctx context.Context, id int64, groupID *int64) (*Lecture, error) {
	lecture, err := s.GetLecture(ctx, id)
	if err != nil {
		return nil, err
	}
	if groupID != nil {
		group, err := s.GetGroup(ctx, *groupID)
		if err != nil {
			return nil, err
		}
		if group.CourseID != lecture.CourseID {
			return nil, fmt.Errorf("group %d belongs to course %d, not %d", group.ID, group.CourseID, lecture.CourseID)
		}
	}

	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE lectures SET group_id = ?, updated_at = ? WHERE id = ?`,
		nullableInt64(groupID), time.Now().UTC().Format(time.RFC3339Nano), id,
	); err != nil {
		return nil, fmt.Errorf("move lecture: %w", err)
	}
	return s.GetLecture(ctx, id)
}

// AttachDeck records the managed deck copy and its page count. Rejected while
// a review run is in flight.
func (s *Store) AttachDeck(ctx context.Context, id int64, deckPath string, pages int) (*Lecture, error) {
	lecture, err := s.GetLecture(ctx, id)
	if err != nil {
		return nil, err
	}
	if lecture.Status == StatusReviewing {
		return nil, &InvalidStateError{
			Op:     "attach deck",
			Status: lecture.Status,
			Want:   []Status{StatusDraft, StatusFinalized, StatusReviewed},
		}
	}

	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE lectures SET deck_path = ?, deck_pages = ?, updated_at = ? WHERE id = ?`,
		nullableString(deckPath), pages, time.Now().UTC().Format(time.RFC3339Nano), id,
	); err != nil {
		return nil, fmt.Errorf("attach deck: %w", err)
	}
	return s.GetLecture(ctx, id)
}

// RemoveLecture deletes a lecture and cascades to its notes, cards, and
// exchanges.
func (s *Store) RemoveLecture(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM lectures WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete lecture: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
