package daemonctl_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"gloss/internal/daemonctl"
	"gloss/internal/library"
	"gloss/internal/testsupport"
)

func TestBuildStatusSnapshotOfflineFallback(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	course := testsupport.NewCourse(t, store, "Operating Systems")
	lecture := testsupport.NewLecture(t, store, course.ID, "Virtual Memory")

	ctx := context.Background()
	if err := store.MarkFinalized(ctx, lecture.ID); err != nil {
		t.Fatalf("MarkFinalized: %v", err)
	}
	if err := store.MarkReviewing(ctx, lecture.ID); err != nil {
		t.Fatalf("MarkReviewing: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	socket := filepath.Join(cfg.Paths.LogDir, "gloss.sock")
	snapshot, err := daemonctl.BuildStatusSnapshot(ctx, socket, cfg)
	if err != nil {
		t.Fatalf("BuildStatusSnapshot: %v", err)
	}
	if snapshot.Running {
		t.Fatal("expected offline snapshot to report not running")
	}
	if snapshot.LectureStats[string(library.StatusReviewing)] != 1 {
		t.Fatalf("unexpected lecture stats: %#v", snapshot.LectureStats)
	}
	if !strings.Contains(snapshot.LastError, "queued for review") {
		t.Fatalf("expected queued-review warning, got %q", snapshot.LastError)
	}
	if snapshot.LibraryDBPath != cfg.DatabasePath() {
		t.Fatalf("unexpected library db path: %q", snapshot.LibraryDBPath)
	}
	if snapshot.LockPath != cfg.LockFilePath() {
		t.Fatalf("unexpected lock path: %q", snapshot.LockPath)
	}
}

func TestDeriveLogDirPrefersLockPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if got := daemonctl.DeriveLogDir("/var/lib/gloss/logs/glossd.lock", cfg); got != "/var/lib/gloss/logs" {
		t.Fatalf("unexpected log dir: %q", got)
	}
	if got := daemonctl.DeriveLogDir("", cfg); got != cfg.Paths.LogDir {
		t.Fatalf("expected config fallback, got %q", got)
	}
	if got := daemonctl.DeriveLogDir("", nil); got != "" {
		t.Fatalf("expected empty log dir, got %q", got)
	}
}
