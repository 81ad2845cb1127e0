package api

import (
	"testing"
	"time"

	"gloss/internal/library"
	"gloss/internal/notes"
	"gloss/internal/stage"
	"gloss/internal/workflow"
)

func TestFromLectureFormatsTimesAndProgress(t *testing.T) {
	heartbeat := time.Date(2026, 3, 14, 9, 26, 53, 589e6, time.UTC)
	groupID := int64(7)
	lecture := &library.Lecture{
		ID:              12,
		CourseID:        3,
		GroupID:         &groupID,
		Title:           "Virtual Memory",
		Slug:            "virtual-memory",
		Status:          library.StatusReviewing,
		DeckPath:        "/library/decks/operating-systems/virtual-memory.pdf",
		DeckPages:       24,
		ProgressDone:    2,
		ProgressTotal:   5,
		ProgressMessage: "Reviewed 2 of 5 note(s)",
		LastHeartbeat:   &heartbeat,
		CreatedAt:       heartbeat.Add(-time.Hour),
	}

	dto := FromLecture(lecture)
	if dto.Status != "reviewing" {
		t.Fatalf("expected status reviewing, got %q", dto.Status)
	}
	if dto.Progress.Done != 2 || dto.Progress.Total != 5 {
		t.Fatalf("unexpected progress: %+v", dto.Progress)
	}
	if dto.Progress.Message != "Reviewed 2 of 5 note(s)" {
		t.Fatalf("unexpected progress message: %q", dto.Progress.Message)
	}
	if dto.LastHeartbeat != "2026-03-14T09:26:53.589Z" {
		t.Fatalf("unexpected heartbeat: %q", dto.LastHeartbeat)
	}
	if dto.GroupID == nil || *dto.GroupID != 7 {
		t.Fatalf("expected group id 7, got %v", dto.GroupID)
	}
	if dto.CreatedAt != "2026-03-14T08:26:53.589Z" {
		t.Fatalf("unexpected created at: %q", dto.CreatedAt)
	}
	if dto.UpdatedAt != "" {
		t.Fatalf("expected zero updated at to stay empty, got %q", dto.UpdatedAt)
	}
}

func TestFromLectureOmitsMissingHeartbeat(t *testing.T) {
	dto := FromLecture(&library.Lecture{ID: 1, Status: library.StatusDraft})
	if dto.LastHeartbeat != "" {
		t.Fatalf("expected empty heartbeat, got %q", dto.LastHeartbeat)
	}
	if dto.GroupID != nil {
		t.Fatalf("expected nil group id, got %v", *dto.GroupID)
	}
}

func TestFromNoteCarriesKindAndLabel(t *testing.T) {
	note := &library.Note{ID: 4, Slide: 9, Kind: notes.KindQuestion, Text: "Why is the page walk two levels?"}
	dto := FromNote(note)
	if dto.Kind != "question" {
		t.Fatalf("expected kind question, got %q", dto.Kind)
	}
	if dto.Label != "QUESTION" {
		t.Fatalf("expected label QUESTION, got %q", dto.Label)
	}
}

func TestFromCardCarriesFailureState(t *testing.T) {
	card := &library.ReviewCard{
		ID:           8,
		Kind:         notes.KindUncertain,
		NoteText:     "Pages are always 4 KiB",
		Failed:       true,
		ErrorMessage: "provider rejected the request",
	}
	dto := FromCard(card)
	if !dto.Failed {
		t.Fatal("expected failed card")
	}
	if dto.ErrorMessage != "provider rejected the request" {
		t.Fatalf("unexpected error message: %q", dto.ErrorMessage)
	}
	if dto.Label != "UNCERTAIN" {
		t.Fatalf("expected label UNCERTAIN, got %q", dto.Label)
	}
}

func TestFromStatusSummary(t *testing.T) {
	summary := workflow.StatusSummary{
		Running: true,
		LectureStats: map[library.Status]int{
			library.StatusDraft:    1,
			library.StatusReviewed: 2,
		},
		LastError:   "provider rejected the request",
		LastLecture: &library.Lecture{ID: 9, Title: "Deadlocks", Status: library.StatusFinalized},
		StageHealth: map[string]stage.Health{
			"review": stage.Unhealthy("review", "provider is not ready"),
		},
	}

	wf := FromStatusSummary(summary)
	if !wf.Running {
		t.Fatal("expected running workflow")
	}
	if wf.LectureStats["reviewed"] != 2 || wf.LectureStats["draft"] != 1 {
		t.Fatalf("unexpected stats: %+v", wf.LectureStats)
	}
	if wf.LastError != "provider rejected the request" {
		t.Fatalf("unexpected last error: %q", wf.LastError)
	}
	if wf.LastLecture == nil || wf.LastLecture.ID != 9 {
		t.Fatalf("expected last lecture 9, got %+v", wf.LastLecture)
	}
	if len(wf.StageHealth) != 1 || wf.StageHealth[0].Name != "review" || wf.StageHealth[0].Ready {
		t.Fatalf("unexpected stage health: %+v", wf.StageHealth)
	}
}

func TestStageHealthSliceSortsByName(t *testing.T) {
	health := map[string]stage.Health{
		"watcher": stage.Healthy("watcher"),
		"review":  stage.Healthy("review"),
	}
	out := StageHealthSlice(health)
	if len(out) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(out))
	}
	if out[0].Name != "review" || out[1].Name != "watcher" {
		t.Fatalf("expected sorted names, got %q then %q", out[0].Name, out[1].Name)
	}
	if StageHealthSlice(nil) != nil {
		t.Fatal("expected nil slice for empty map")
	}
}

func TestFormatTimeZeroValue(t *testing.T) {
	if got := FormatTime(time.Time{}); got != "" {
		t.Fatalf("expected empty string for zero time, got %q", got)
	}
}
