package main

import (
	"context"
	"encoding/json"
	"testing"
)

func TestHealthCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	course, err := env.store.CreateCourse(ctx, "Algorithms")
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	if _, err := env.store.CreateLecture(ctx, course.ID, nil, "Sorting"); err != nil {
		t.Fatalf("create lecture: %v", err)
	}

	out, _, err := runCLI(t, []string{"health"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	requireContains(t, out, "Lectures: 1 total (1 draft, 0 finalized, 0 reviewing, 0 reviewed)")
	requireContains(t, out, "Database path:")
	requireContains(t, out, "lectures table present: yes")
	requireContains(t, out, "Missing columns: none")
	requireContains(t, out, "Integrity check: yes")
}

func TestHealthJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	course, err := env.store.CreateCourse(ctx, "Algorithms")
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	if _, err := env.store.CreateLecture(ctx, course.ID, nil, "Sorting"); err != nil {
		t.Fatalf("create lecture: %v", err)
	}

	out, _, err := runCLI(t, []string{"health", "--json"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("health --json: %v", err)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid JSON: %v\noutput: %s", err, out)
	}
	lectures, ok := payload["lectures"].(map[string]any)
	if !ok {
		t.Fatalf("expected lectures object, got: %v", payload)
	}
	if lectures["total"] != float64(1) {
		t.Fatalf("expected total=1, got %v", lectures["total"])
	}
	database, ok := payload["database"].(map[string]any)
	if !ok {
		t.Fatalf("expected database object, got: %v", payload)
	}
	if database["tableExists"] != true {
		t.Fatalf("expected tableExists=true, got %v", database["tableExists"])
	}
}
