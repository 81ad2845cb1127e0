package api

import (
	"context"
	"fmt"
	"strings"

	"gloss/internal/library"
	"gloss/internal/logging"
	"gloss/internal/slides"
)

// LectureAdd creates a lecture in a course, optionally inside a group and
// with a slide deck imported right away. The deck is validated before the
// lecture row is created so a bad path leaves nothing behind.
func (s *Service) LectureAdd(ctx context.Context, courseRef, title, groupRef, deckPath string) (*Lecture, error) {
	course, err := s.resolveCourse(ctx, courseRef)
	if err != nil {
		return nil, err
	}

	var groupID *int64
	if strings.TrimSpace(groupRef) != "" {
		group, err := s.resolveGroup(ctx, course, groupRef)
		if err != nil {
			return nil, err
		}
		groupID = &group.ID
	}

	deckPath = strings.TrimSpace(deckPath)
	if deckPath != "" {
		if err := slides.Validate(deckPath); err != nil {
			return nil, err
		}
	}

	lecture, err := s.store.CreateLecture(ctx, course.ID, groupID, title)
	if err != nil {
		return nil, err
	}
	if deckPath != "" {
		lecture, err = s.importDeck(ctx, lecture, course.Slug, deckPath)
		if err != nil {
			return nil, err
		}
	}
	dto := FromLecture(lecture)
	return &dto, nil
}

// LectureList returns a course's lectures in display order.
func (s *Service) LectureList(ctx context.Context, courseRef string) ([]Lecture, error) {
	course, err := s.resolveCourse(ctx, courseRef)
	if err != nil {
		return nil, err
	}
	lectures, err := s.store.ListLectures(ctx, course.ID)
	if err != nil {
		return nil, err
	}
	return FromLectures(lectures), nil
}

// LectureShow returns a lecture together with its notes.
func (s *Service) LectureShow(ctx context.Context, ref string) (*LectureDetail, error) {
	lecture, err := s.resolveLecture(ctx, ref)
	if err != nil {
		return nil, err
	}
	lectureNotes, err := s.store.ListNotes(ctx, lecture.ID)
	if err != nil {
		return nil, err
	}
	return &LectureDetail{
		Lecture: FromLecture(lecture),
		Notes:   FromNotes(lectureNotes),
	}, nil
}

// LectureRename retitles a lecture, regenerating its slug. The managed deck
// copy keeps its old filename; the lecture row points at it either way.
func (s *Service) LectureRename(ctx context.Context, ref, title string) (*Lecture, error) {
	lecture, err := s.resolveLecture(ctx, ref)
	if err != nil {
		return nil, err
	}
	renamed, err := s.store.RenameLecture(ctx, lecture.ID, title)
	if err != nil {
		return nil, err
	}
	dto := FromLecture(renamed)
	return &dto, nil
}

// LectureMove places a lecture in a group, or ungroups it when groupRef is
// empty. The lecture stays in its course.
func (s *Service) LectureMove(ctx context.Context, ref, groupRef string) (*Lecture, error) {
	lecture, err := s.resolveLecture(ctx, ref)
	if err != nil {
		return nil, err
	}

	var groupID *int64
	if strings.TrimSpace(groupRef) != "" {
		course, err := s.store.GetCourse(ctx, lecture.CourseID)
		if err != nil {
			return nil, err
		}
		group, err := s.resolveGroup(ctx, course, groupRef)
		if err != nil {
			return nil, err
		}
		groupID = &group.ID
	}

	moved, err := s.store.MoveLecture(ctx, lecture.ID, groupID)
	if err != nil {
		return nil, err
	}
	dto := FromLecture(moved)
	return &dto, nil
}

// LectureAttachDeck imports a PDF as the lecture's deck, replacing any
// earlier one. Rejected while a review run is in flight.
func (s *Service) LectureAttachDeck(ctx context.Context, ref, deckPath string) (*Lecture, error) {
	lecture, err := s.resolveLecture(ctx, ref)
	if err != nil {
		return nil, err
	}
	course, err := s.store.GetCourse(ctx, lecture.CourseID)
	if err != nil {
		return nil, err
	}
	lecture, err = s.importDeck(ctx, lecture, course.Slug, deckPath)
	if err != nil {
		return nil, err
	}
	dto := FromLecture(lecture)
	return &dto, nil
}

// LectureRemove deletes a lecture, its notes and cards, and the managed deck
// copy.
func (s *Service) LectureRemove(ctx context.Context, ref string) error {
	lecture, err := s.resolveLecture(ctx, ref)
	if err != nil {
		return err
	}
	removed, err := s.store.RemoveLecture(ctx, lecture.ID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("lecture %d: %w", lecture.ID, library.ErrNotFound)
	}
	if lecture.HasDeck() {
		if err := slides.Remove(lecture.DeckPath); err != nil {
			s.logger.Warn("failed to remove deck file",
				logging.Error(err),
				logging.Int64(logging.FieldLectureID, lecture.ID),
				logging.String("deck_path", lecture.DeckPath),
				logging.String(logging.FieldEventType, "deck_remove_failed"),
				logging.String(logging.FieldErrorHint, "delete the file by hand"),
			)
		}
	}
	return nil
}

func (s *Service) importDeck(ctx context.Context, lecture *library.Lecture, courseSlug, src string) (*library.Lecture, error) {
	deckPath, pages, err := slides.Import(s.cfg, courseSlug, lecture.Slug, src)
	if err != nil {
		return nil, err
	}
	return s.store.AttachDeck(ctx, lecture.ID, deckPath, pages)
}
