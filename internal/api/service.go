package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gloss/internal/config"
	"gloss/internal/library"
	"gloss/internal/logging"
	"gloss/internal/notifications"
	"gloss/internal/review"
	"gloss/internal/textutil"
)

// Service exposes library and review operations as API DTOs. The IPC server
// wraps it when the daemon is running; the CLI constructs one directly when
// the daemon is down, in which case review runs happen in process.
type Service struct {
	cfg      *config.Config
	store    *library.Store
	logger   *slog.Logger
	engine   *review.Engine
	notifier notifications.Service
}

// NewService constructs a Service with the default review engine and
// notifier wiring.
func NewService(cfg *config.Config, store *library.Store, logger *slog.Logger) *Service {
	return NewServiceWith(cfg, store, logger, review.NewEngine(cfg, store, logger), notifications.NewService(cfg))
}

// NewServiceWith constructs a Service with explicit collaborators. A nil
// engine leaves review operations unavailable, which suits status-only
// callers.
func NewServiceWith(cfg *config.Config, store *library.Store, logger *slog.Logger, engine *review.Engine, notifier notifications.Service) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{cfg: cfg, store: store, logger: logger, engine: engine, notifier: notifier}
}

// Store returns the underlying library store.
func (s *Service) Store() *library.Store {
	return s.store
}

func (s *Service) requireEngine() (*review.Engine, error) {
	if s.engine == nil {
		return nil, fmt.Errorf("review engine not configured")
	}
	return s.engine, nil
}

// parseID reports whether ref is a positive numeric identifier.
func parseID(ref string) (int64, bool) {
	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// resolveCourse maps a course reference to a record. Numeric references are
// IDs; anything else matches the slug, falling back to exact name for
// courses whose slug was deduplicated away from their title.
func (s *Service) resolveCourse(ctx context.Context, ref string) (*library.Course, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &library.EmptyInputError{Field: "course reference"}
	}
	if id, ok := parseID(ref); ok {
		return s.store.GetCourse(ctx, id)
	}
	course, err := s.store.GetCourseBySlug(ctx, textutil.Slugify(ref))
	if errors.Is(err, library.ErrNotFound) {
		return s.store.FindCourseByName(ctx, ref)
	}
	return course, err
}

// resolveLecture maps a lecture reference to a record. Numeric references
// are IDs; anything else must be a course/lecture slug path because lecture
// slugs are only unique within their course.
func (s *Service) resolveLecture(ctx context.Context, ref string) (*library.Lecture, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &library.EmptyInputError{Field: "lecture reference"}
	}
	if id, ok := parseID(ref); ok {
		return s.store.GetLecture(ctx, id)
	}
	courseRef, lectureRef, ok := strings.Cut(ref, "/")
	if !ok {
		return nil, fmt.Errorf("lecture reference %q must be an id or a course/lecture path", ref)
	}
	course, err := s.resolveCourse(ctx, courseRef)
	if err != nil {
		return nil, err
	}
	return s.store.GetLectureBySlug(ctx, course.ID, textutil.Slugify(lectureRef))
}

// resolveGroup maps a group reference to a record inside course. A numeric
// reference naming a group from another course resolves to not found.
func (s *Service) resolveGroup(ctx context.Context, course *library.Course, ref string) (*library.Group, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &library.EmptyInputError{Field: "group reference"}
	}
	if id, ok := parseID(ref); ok {
		group, err := s.store.GetGroup(ctx, id)
		if err != nil {
			return nil, err
		}
		if group.CourseID != course.ID {
			return nil, fmt.Errorf("group %d: %w", id, library.ErrNotFound)
		}
		return group, nil
	}
	return s.store.GetGroupBySlug(ctx, course.ID, textutil.Slugify(ref))
}
