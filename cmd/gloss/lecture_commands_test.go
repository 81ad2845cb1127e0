package main

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
)

func TestLectureAddListShow(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"course", "add", "Algorithms"}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("course add: %v", err)
	}

	out, _, err := runCLI(t, []string{"lecture", "add", "algorithms", "Sorting"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("lecture add: %v", err)
	}
	requireContains(t, out, `Added lecture "Sorting" (id 1)`)

	out, _, err = runCLI(t, []string{"lecture", "list", "algorithms"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("lecture list: %v", err)
	}
	requireContains(t, out, "Sorting")
	requireContains(t, out, "Draft")

	out, _, err = runCLI(t, []string{"lecture", "show", "algorithms/sorting"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("lecture show: %v", err)
	}
	requireContains(t, out, "Title:    Sorting")
	requireContains(t, out, "Status:   Draft")
	requireContains(t, out, "No notes yet")
}

func TestLectureMoveAndRename(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"course", "add", "Algorithms"}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("course add: %v", err)
	}
	if _, _, err := runCLI(t, []string{"group", "add", "algorithms", "Week 1"}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("group add: %v", err)
	}
	if _, _, err := runCLI(t, []string{"lecture", "add", "algorithms", "Sorting"}, env.socketPath, env.configPath); err != nil {
		t.Fatalf("lecture add: %v", err)
	}

	out, _, err := runCLI(t, []string{"lecture", "move", "algorithms/sorting", "week-1"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("lecture move: %v", err)
	}
	requireContains(t, out, `Moved lecture "Sorting" to group week-1`)

	out, _, err = runCLI(t, []string{"lecture", "list", "algorithms"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("lecture list: %v", err)
	}
	requireContains(t, out, "Week 1")

	out, _, err = runCLI(t, []string{"lecture", "move", "1"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("lecture move ungroup: %v", err)
	}
	requireContains(t, out, `Ungrouped lecture "Sorting"`)

	out, _, err = runCLI(t, []string{"lecture", "rename", "1", "Quicksort"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("lecture rename: %v", err)
	}
	requireContains(t, out, `Renamed lecture to "Quicksort"`)
}

func TestLectureDeckDisplay(t *testing.T) {
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
	deckPath := filepath.Join(env.baseDir, "sorting.pdf")
	if _, err := env.store.AttachDeck(ctx, lecture.ID, deckPath, 12); err != nil {
		t.Fatalf("attach deck: %v", err)
	}

	out, _, err := runCLI(t, []string{"lecture", "list", "algorithms"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("lecture list: %v", err)
	}
	requireContains(t, out, "sorting.pdf (12 pages)")

	out, _, err = runCLI(t, []string{"lecture", "show", "1"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("lecture show: %v", err)
	}
	requireContains(t, out, "Deck:     sorting.pdf (12 pages)")
}

func TestLectureShowJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	course, err := env.store.CreateCourse(ctx, "Algorithms")
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	if _, err := env.store.CreateLecture(ctx, course.ID, nil, "Sorting"); err != nil {
		t.Fatalf("create lecture: %v", err)
	}

	out, _, err := runCLI(t, []string{"lecture", "show", "1", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("lecture show --json: %v", err)
	}

	var detail map[string]any
	if err := json.Unmarshal([]byte(out), &detail); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	lecture, ok := detail["lecture"].(map[string]any)
	if !ok {
		t.Fatalf("expected lecture object in JSON, got: %v", detail)
	}
	if lecture["title"] != "Sorting" {
		t.Fatalf("expected title Sorting, got %v", lecture["title"])
	}
	if lecture["status"] != "draft" {
		t.Fatalf("expected status draft, got %v", lecture["status"])
	}
}

func TestLectureRemove(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	course, err := env.store.CreateCourse(ctx, "Algorithms")
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	if _, err := env.store.CreateLecture(ctx, course.ID, nil, "Sorting"); err != nil {
		t.Fatalf("create lecture: %v", err)
	}

	out, _, err := runCLI(t, []string{"lecture", "rm", "1"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("lecture rm: %v", err)
	}
	requireContains(t, out, "Removed lecture 1")

	_, _, err = runCLI(t, []string{"lecture", "show", "1"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestLectureBadReference(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"lecture", "show", "sorting"}, env.socketPath, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "must be an id or a course/lecture path") {
		t.Fatalf("expected reference format error, got %v", err)
	}
}
