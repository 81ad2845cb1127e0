package api

import (
	"context"
	"errors"
	"fmt"

	"gloss/internal/library"
	"gloss/internal/logging"
	"gloss/internal/slides"
)

// CourseAdd creates a course.
func (s *Service) CourseAdd(ctx context.Context, name string) (*Course, error) {
	course, err := s.store.CreateCourse(ctx, name)
	if err != nil {
		return nil, err
	}
	dto := FromCourse(course)
	return &dto, nil
}

// EnsureCourse resolves a course by name, creating it when no match exists.
// The inbox watcher uses it to lazily create the import course.
func (s *Service) EnsureCourse(ctx context.Context, name string) (*Course, error) {
	course, err := s.resolveCourse(ctx, name)
	if err == nil {
		dto := FromCourse(course)
		return &dto, nil
	}
	if !errors.Is(err, library.ErrNotFound) {
		return nil, err
	}
	return s.CourseAdd(ctx, name)
}

// CourseList returns every course in display order.
func (s *Service) CourseList(ctx context.Context) ([]Course, error) {
	courses, err := s.store.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	return FromCourses(courses), nil
}

// CourseRename renames a course, regenerating its slug.
func (s *Service) CourseRename(ctx context.Context, ref, name string) (*Course, error) {
	course, err := s.resolveCourse(ctx, ref)
	if err != nil {
		return nil, err
	}
	renamed, err := s.store.RenameCourse(ctx, course.ID, name)
	if err != nil {
		return nil, err
	}
	dto := FromCourse(renamed)
	return &dto, nil
}

// CourseReorder moves a course to a 1-based position in the display order.
func (s *Service) CourseReorder(ctx context.Context, ref string, position int) ([]Course, error) {
	course, err := s.resolveCourse(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReorderCourse(ctx, course.ID, position); err != nil {
		return nil, err
	}
	return s.CourseList(ctx)
}

// CourseRemove deletes a course, everything under it, and its deck
// directory.
func (s *Service) CourseRemove(ctx context.Context, ref string) error {
	course, err := s.resolveCourse(ctx, ref)
	if err != nil {
		return err
	}
	removed, err := s.store.RemoveCourse(ctx, course.ID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("course %d: %w", course.ID, library.ErrNotFound)
	}
	if err := slides.RemoveCourse(s.cfg, course.Slug); err != nil {
		s.logger.Warn("failed to remove course deck directory",
			logging.Error(err),
			logging.String("course", course.Slug),
			logging.String(logging.FieldEventType, "deck_remove_failed"),
			logging.String(logging.FieldErrorHint, "delete the directory by hand"),
		)
	}
	return nil
}

// GroupAdd creates a group inside a course.
func (s *Service) GroupAdd(ctx context.Context, courseRef, name string) (*Group, error) {
	course, err := s.resolveCourse(ctx, courseRef)
	if err != nil {
		return nil, err
	}
	group, err := s.store.CreateGroup(ctx, course.ID, name)
	if err != nil {
		return nil, err
	}
	dto := FromGroup(group)
	return &dto, nil
}

// GroupList returns a course's groups in display order.
func (s *Service) GroupList(ctx context.Context, courseRef string) ([]Group, error) {
	course, err := s.resolveCourse(ctx, courseRef)
	if err != nil {
		return nil, err
	}
	groups, err := s.store.ListGroups(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	return FromGroups(groups), nil
}

// GroupRename renames a group within its course.
func (s *Service) GroupRename(ctx context.Context, courseRef, groupRef, name string) (*Group, error) {
	course, err := s.resolveCourse(ctx, courseRef)
	if err != nil {
		return nil, err
	}
	group, err := s.resolveGroup(ctx, course, groupRef)
	if err != nil {
		return nil, err
	}
	renamed, err := s.store.RenameGroup(ctx, group.ID, name)
	if err != nil {
		return nil, err
	}
	dto := FromGroup(renamed)
	return &dto, nil
}

// GroupRemove deletes a group. Lectures in the group stay in the course,
// ungrouped.
func (s *Service) GroupRemove(ctx context.Context, courseRef, groupRef string) error {
	course, err := s.resolveCourse(ctx, courseRef)
	if err != nil {
		return err
	}
	group, err := s.resolveGroup(ctx, course, groupRef)
	if err != nil {
		return err
	}
	removed, err := s.store.RemoveGroup(ctx, group.ID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("group %d: %w", group.ID, library.ErrNotFound)
	}
	return nil
}
