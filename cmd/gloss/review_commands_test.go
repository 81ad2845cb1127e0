package main

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gloss/internal/library"
	"gloss/internal/notes"
)

func TestFinalizeCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	course, err := env.store.CreateCourse(ctx, "Algorithms")
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	lecture, err := env.store.CreateLecture(ctx, course.ID, nil, "Sorting")
	if err != nil {
		t.Fatalf("create lecture: %v", err)
	}
	if _, err := env.store.AppendNote(ctx, lecture.ID, 3, notes.KindQuestion, "Why nlogn?"); err != nil {
		t.Fatalf("append note: %v", err)
	}

	out, _, err := runCLI(t, []string{"finalize", "1"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	requireContains(t, out, `Finalized lecture "Sorting"`)
	requireContains(t, out, "gloss review 1")

	updated, err := env.store.GetLecture(ctx, lecture.ID)
	if err != nil {
		t.Fatalf("get lecture: %v", err)
	}
	if updated.Status != library.StatusFinalized {
		t.Fatalf("expected finalized, got %s", updated.Status)
	}

	_, _, err = runCLI(t, []string{"finalize", "1"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "requires status draft") {
		t.Fatalf("expected draft guard error, got %v", err)
	}
}

func TestCardsAndCardDetail(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	course, err := env.store.CreateCourse(ctx, "Algorithms")
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	lecture, err := env.store.CreateLecture(ctx, course.ID, nil, "Sorting")
	if err != nil {
		t.Fatalf("create lecture: %v", err)
	}
	first, err := env.store.AppendNote(ctx, lecture.ID, 3, notes.KindQuestion, "Why does quicksort degrade on sorted input?")
	if err != nil {
		t.Fatalf("append first note: %v", err)
	}
	second, err := env.store.AppendNote(ctx, lecture.ID, 0, notes.KindUncertain, "Heapsort constants felt hand-wavy")
	if err != nil {
		t.Fatalf("append second note: %v", err)
	}
	if err := env.store.MarkFinalized(ctx, lecture.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	cards, err := env.store.ReplaceCards(ctx, lecture.ID, []*library.Note{first, second})
	if err != nil {
		t.Fatalf("replace cards: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	if err := env.store.SetCardResult(ctx, cards[0].ID, "A sorted input makes every pivot the minimum, so the partitions are maximally unbalanced.", "claude-sonnet-4", 120, 240); err != nil {
		t.Fatalf("set card result: %v", err)
	}
	if _, err := env.store.AppendExchange(ctx, cards[0].ID, "Does a random pivot fix it?", "In expectation, yes."); err != nil {
		t.Fatalf("append exchange: %v", err)
	}

	out, _, err := runCLI(t, []string{"cards", "1"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("cards: %v", err)
	}
	requireContains(t, out, "QUESTION")
	requireContains(t, out, "OK")
	requireContains(t, out, "PENDING")

	out, _, err = runCLI(t, []string{"card", fmt.Sprintf("%d", cards[0].ID)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("card: %v", err)
	}
	requireContains(t, out, fmt.Sprintf("Card %d: QUESTION (slide 3)", cards[0].ID))
	requireContains(t, out, "Model: claude-sonnet-4 (120 input / 240 output tokens)")
	requireContains(t, out, "Note:")
	requireContains(t, out, "Review:")
	requireContains(t, out, "Q1: Does a random pivot fix it?")
	requireContains(t, out, "In expectation, yes.")
}

func TestCardFailedState(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	course, err := env.store.CreateCourse(ctx, "Algorithms")
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	lecture, err := env.store.CreateLecture(ctx, course.ID, nil, "Sorting")
	if err != nil {
		t.Fatalf("create lecture: %v", err)
	}
	note, err := env.store.AppendNote(ctx, lecture.ID, 0, notes.KindQuestion, "Why nlogn?")
	if err != nil {
		t.Fatalf("append note: %v", err)
	}
	if err := env.store.MarkFinalized(ctx, lecture.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	cards, err := env.store.ReplaceCards(ctx, lecture.ID, []*library.Note{note})
	if err != nil {
		t.Fatalf("replace cards: %v", err)
	}
	if err := env.store.SetCardFailed(ctx, cards[0].ID, "request timed out"); err != nil {
		t.Fatalf("set card failed: %v", err)
	}

	out, _, err := runCLI(t, []string{"cards", "1"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("cards: %v", err)
	}
	requireContains(t, out, "FAILED")

	out, _, err = runCLI(t, []string{"card", fmt.Sprintf("%d", cards[0].ID)}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("card: %v", err)
	}
	requireContains(t, out, "[ERROR] request timed out")
}

func TestReviewOperationsRequireEngine(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	course, err := env.store.CreateCourse(ctx, "Algorithms")
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	lecture, err := env.store.CreateLecture(ctx, course.ID, nil, "Sorting")
	if err != nil {
		t.Fatalf("create lecture: %v", err)
	}
	if err := env.store.MarkFinalized(ctx, lecture.ID); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	// The test daemon runs without a review engine, so review requests fail
	// over IPC while library commands keep working.
	_, _, err = runCLI(t, []string{"review", "1"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "review engine not configured") {
		t.Fatalf("expected engine error from review, got %v", err)
	}

	_, _, err = runCLI(t, []string{"ask", "1", "What", "about", "radix?"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "review engine not configured") {
		t.Fatalf("expected engine error from ask, got %v", err)
	}

	_, _, err = runCLI(t, []string{"regen", "1"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "review engine not configured") {
		t.Fatalf("expected engine error from regen, got %v", err)
	}
}

func TestCardInvalidID(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"card", "abc"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "invalid card id") {
		t.Fatalf("expected invalid card id error, got %v", err)
	}
}

func TestCardsEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	course, err := env.store.CreateCourse(ctx, "Algorithms")
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	if _, err := env.store.CreateLecture(ctx, course.ID, nil, "Sorting"); err != nil {
		t.Fatalf("create lecture: %v", err)
	}

	out, _, err := runCLI(t, []string{"cards", "1"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("cards: %v", err)
	}
	requireContains(t, out, "No review cards yet")
}
