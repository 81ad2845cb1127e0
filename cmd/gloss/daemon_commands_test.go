package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"gloss/internal/library"
)

// syncBuffer guards a bytes.Buffer so the follow loop can write from its
// goroutine while the test polls the contents.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestDaemonStartAndStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	// The stop path would force-kill the test process itself, so only start
	// and status are exercised against the in-process daemon.
	out, _, err := runCLI(t, []string{"start"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	requireContains(t, out, "Daemon started")

	course, err := env.store.CreateCourse(ctx, "Algorithms")
	if err != nil {
		t.Fatalf("create course: %v", err)
	}
	mustCreate := func(title string) *library.Lecture {
		t.Helper()
		lec, err := env.store.CreateLecture(ctx, course.ID, nil, title)
		if err != nil {
			t.Fatalf("create lecture %q: %v", title, err)
		}
		return lec
	}
	mustCreate("Sorting")
	locked := mustCreate("Graphs")
	if err := env.store.MarkFinalized(ctx, locked.ID); err != nil {
		t.Fatalf("finalize lecture: %v", err)
	}

	out, _, err = runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"== Daemon ==", "Running", "== Lectures ==", "Draft", "Finalized"} {
		requireContains(t, out, want)
	}
}

func TestStatusNotRunning(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.socketPath, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "Not running")
	requireContains(t, out, "Library is empty")
}

func TestLogsFollow(t *testing.T) {
	env := setupCLITestEnv(t)

	if err := appendLine(env.logPath, "first"); err != nil {
		t.Fatalf("append first: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stdout := &syncBuffer{}
	cmd := newRootCommand()
	cmd.SetContext(ctx)
	cmd.SetOut(stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--socket", env.socketPath, "--config", env.configPath, "logs", "--follow"})

	done := make(chan error, 1)
	go func() {
		done <- cmd.Execute()
	}()

	waitFor(t, 2*time.Second, func() bool { return strings.Contains(stdout.String(), "first") })
	if err := appendLine(env.logPath, "second"); err != nil {
		t.Fatalf("append second: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return strings.Contains(stdout.String(), "second") })
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("execute: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("logs --follow did not exit")
	}
}
