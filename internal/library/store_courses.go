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

const courseColumns = "id, name, slug, position, created_at, updated_at"

func scanCourse(scanner rowScanner) (*Course, error) {
	var (
		id         int64
		name       string
		slug       string
		position   int
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&id, &name, &slug, &position, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	course := &Course{ID: id, Name: name, Slug: slug, Position: position}
	if created, err := parseTimeString(createdRaw); err == nil {
		course.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		course.UpdatedAt = updated
	}
	return course, nil
}

func (s *Store) courseSlugTaken(ctx context.Context, excludeID int64) (func(string) bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, slug FROM courses`)
	if err != nil {
		return nil, fmt.Errorf("load course slugs: %w", err)
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

// CreateCourse inserts a new course with a unique slug derived from the name.
func (s *Store) CreateCourse(ctx context.Context, name string) (*Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &EmptyInputError{Field: "course name"}
	}

	taken, err := s.courseSlugTaken(ctx, 0)
	if err != nil {
		return nil, err
	}
	slug := textutil.UniqueSlug(textutil.Slugify(name), taken)

	position, err := s.nextPosition(ctx, "courses", "", nil)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO courses (name, slug, position, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		name, slug, position, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert course: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetCourse(ctx, id)
}

// GetCourse fetches a course by identifier.
func (s *Store) GetCourse(ctx context.Context, id int64) (*Course, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = ?`, id)
	course, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("course %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return course, nil
}

// GetCourseBySlug fetches a course by its slug.
func (s *Store) GetCourseBySlug(ctx context.Context, slug string) (*Course, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+courseColumns+` FROM courses WHERE slug = ?`, slug)
	course, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("course %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get course by slug: %w", err)
	}
	return course, nil
}

// FindCourseByName fetches a course by case-insensitive display name.
func (s *Store) FindCourseByName(ctx context.Context, name string) (*Course, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+courseColumns+` FROM courses WHERE name = ? COLLATE NOCASE ORDER BY id LIMIT 1`,
		strings.TrimSpace(name),
	)
	course, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("course %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find course by name: %w", err)
	}
	return course, nil
}

// ListCourses returns all courses in user order.
func (s *Store) ListCourses(ctx context.Context) ([]*Course, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+courseColumns+` FROM courses ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	defer rows.Close()

	var courses []*Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, course)
	}
	return courses, rows.Err()
}

// RenameCourse updates a course's display name and re-derives its slug.
func (s *Store) RenameCourse(ctx context.Context, id int64, name string) (*Course, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &EmptyInputError{Field: "course name"}
	}
	if _, err := s.GetCourse(ctx, id); err != nil {
		return nil, err
	}

	taken, err := s.courseSlugTaken(ctx, id)
	if err != nil {
		return nil, err
	}
	slug := textutil.UniqueSlug(textutil.Slugify(name), taken)

	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE courses SET name = ?, slug = ?, updated_at = ? WHERE id = ?`,
		name, slug, time.Now().UTC().Format(time.RFC3339Nano), id,
	); err != nil {
		return nil, fmt.Errorf("rename course: %w", err)
	}
	return s.GetCourse(ctx, id)
}

// ReorderCourse moves a course to the given 1-based position in the list,
// shifting the others.
func (s *Store) ReorderCourse(ctx context.Context, id int64, position int) error {
	courses, err := s.ListCourses(ctx)
	if err != nil {
		return err
	}

	index := -1
	for i, course := range courses {
		if course.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return fmt.Errorf("course %d: %w", id, ErrNotFound)
	}

	if position < 1 {
		position = 1
	}
	if position > len(courses) {
		position = len(courses)
	}

	moved := courses[index]
	rest := append(append([]*Course{}, courses[:index]...), courses[index+1:]...)
	ordered := append(append(append([]*Course{}, rest[:position-1]...), moved), rest[position-1:]...)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	for i, course := range ordered {
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE courses SET position = ?, updated_at = ? WHERE id = ?`,
			i+1, timestamp, course.ID,
		); err != nil {
			return fmt.Errorf("reorder course %d: %w", course.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

// RemoveCourse deletes a course and cascades to its groups, lectures, notes,
// cards, and exchanges.
func (s *Store) RemoveCourse(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
