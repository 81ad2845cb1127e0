package testsupport

import (
	"context"
	"testing"

	"gloss/internal/config"
	"gloss/internal/library"
	"gloss/internal/notes"
)

// MustOpenStore opens a library.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("library.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewCourse creates a course for tests using the provided store.
func NewCourse(t testing.TB, store *library.Store, name string) *library.Course {
	t.Helper()

	course, err := store.CreateCourse(context.Background(), name)
	if err != nil {
		t.Fatalf("store.CreateCourse: %v", err)
	}
	return course
}

// NewLecture creates a draft lecture for tests using the provided store.
func NewLecture(t testing.TB, store *library.Store, courseID int64, title string) *library.Lecture {
	t.Helper()

	lecture, err := store.CreateLecture(context.Background(), courseID, nil, title)
	if err != nil {
		t.Fatalf("store.CreateLecture: %v", err)
	}
	return lecture
}

// AddNote appends a classified note for tests using the provided store.
func AddNote(t testing.TB, store *library.Store, lectureID int64, slide int, kind notes.Kind, text string) *library.Note {
	t.Helper()

	note, err := store.AppendNote(context.Background(), lectureID, slide, kind, text)
	if err != nil {
		t.Fatalf("store.AppendNote: %v", err)
	}
	return note
}
