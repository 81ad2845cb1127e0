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

const groupColumns = "id, course_id, name, slug, position, created_at, updated_at"

func scanGroup(scanner rowScanner) (*Group, error) {
	var (
		id         int64
		courseID   int64
		name       string
		slug       string
		position   int
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(&id, &courseID, &name, &slug, &position, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	group := &Group{ID: id, CourseID: courseID, Name: name, Slug: slug, Position: position}
	if created, err := parseTimeString(createdRaw); err == nil {
		group.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		group.UpdatedAt = updated
	}
	return group, nil
}

func (s *Store) groupSlugTaken(ctx context.Context, courseID, excludeID int64) (func(string) bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, slug FROM lecture_groups WHERE course_id = ?`, courseID)
	if err != nil {
		return nil, fmt.Errorf("load group slugs: %w", err)
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

// CreateGroup inserts a named section inside a course.
func (s *Store) CreateGroup(ctx context.Context, courseID int64, name string) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &EmptyInputError{Field: "group name"}
	}
	if _, err := s.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}

	taken, err := s.groupSlugTaken(ctx, courseID, 0)
	if err != nil {
		return nil, err
	}
	slug := textutil.UniqueSlug(textutil.Slugify(name), taken)

	position, err := s.nextPosition(ctx, "lecture_groups", "course_id", courseID)
	if err != nil {
		return nil, err
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO lecture_groups (course_id, name, slug, position, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		courseID, name, slug, position, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert group: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetGroup(ctx, id)
}

// GetGroup fetches a group by identifier.
func (s *Store) GetGroup(ctx context.Context, id int64) (*Group, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+groupColumns+` FROM lecture_groups WHERE id = ?`, id)
	group, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return group, nil
}

// GetGroupBySlug fetches a group by its slug within a course.
func (s *Store) GetGroupBySlug(ctx context.Context, courseID int64, slug string) (*Group, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+groupColumns+` FROM lecture_groups WHERE course_id = ? AND slug = ?`,
		courseID, slug,
	)
	group, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %q: %w", slug, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get group by slug: %w", err)
	}
	return group, nil
}

// ListGroups returns a course's groups in user order.
func (s *Store) ListGroups(ctx context.Context, courseID int64) ([]*Group, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+groupColumns+` FROM lecture_groups WHERE course_id = ? ORDER BY position, id`,
		courseID,
	)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

// RenameGroup updates a group's display name and re-derives its slug.
func (s *Store) RenameGroup(ctx context.Context, id int64, name string) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &EmptyInputError{Field: "group name"}
	}
	group, err := s.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.groupSlugTaken(ctx, group.CourseID, id)
	if err != nil {
		return nil, err
	}
	slug := textutil.UniqueSlug(textutil.Slugify(name), taken)

	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE lecture_groups SET name = ?, slug = ?, updated_at = ? WHERE id = ?`,
		name, slug, time.Now().UTC().Format(time.RFC3339Nano), id,
	); err != nil {
		return nil, fmt.Errorf("rename group: %w", err)
	}
	return s.GetGroup(ctx, id)
}

// RemoveGroup deletes a group. Lectures in the group stay in the course with
// their group cleared.
func (s *Store) RemoveGroup(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM lecture_groups WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete group: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
