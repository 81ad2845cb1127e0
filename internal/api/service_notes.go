package api

import (
	"context"
	"fmt"

	"gloss/internal/library"
	"gloss/internal/notes"
)

// NoteAdd appends note text to a draft lecture at the given slide. The text
// runs through the markup parser, so a multi-block paste lands as several
// notes in source order, each classified by its opening symbol.
func (s *Service) NoteAdd(ctx context.Context, lectureRef string, slide int, text string) ([]Note, error) {
	lecture, err := s.resolveLecture(ctx, lectureRef)
	if err != nil {
		return nil, err
	}

	blocks := notes.ParseBlocks(text)
	if len(blocks) == 0 {
		return nil, &library.EmptyInputError{Field: "note text"}
	}

	created := make([]Note, 0, len(blocks))
	for _, block := range blocks {
		note, err := s.store.AppendNote(ctx, lecture.ID, slide, block.Kind, block.Text)
		if err != nil {
			return nil, err
		}
		created = append(created, FromNote(note))
	}
	return created, nil
}

// NoteList returns a lecture's notes in position order.
func (s *Service) NoteList(ctx context.Context, lectureRef string) ([]Note, error) {
	lecture, err := s.resolveLecture(ctx, lectureRef)
	if err != nil {
		return nil, err
	}
	lectureNotes, err := s.store.ListNotes(ctx, lecture.ID)
	if err != nil {
		return nil, err
	}
	return FromNotes(lectureNotes), nil
}

// NoteEdit rewrites a note's text, reclassifying it from its markup symbol.
// A slide of zero keeps the note's current slide.
func (s *Service) NoteEdit(ctx context.Context, noteID int64, slide int, text string) (*Note, error) {
	note, err := s.store.GetNote(ctx, noteID)
	if err != nil {
		return nil, err
	}
	if slide == 0 {
		slide = note.Slide
	}
	kind, cleaned := notes.Classify(text)
	updated, err := s.store.UpdateNote(ctx, noteID, slide, kind, cleaned)
	if err != nil {
		return nil, err
	}
	dto := FromNote(updated)
	return &dto, nil
}

// NoteRemove deletes a note from a draft lecture.
func (s *Service) NoteRemove(ctx context.Context, noteID int64) error {
	removed, err := s.store.DeleteNote(ctx, noteID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("note %d: %w", noteID, library.ErrNotFound)
	}
	return nil
}
