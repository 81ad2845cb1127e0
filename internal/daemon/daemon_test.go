package daemon_test

import (
	"context"
	"os"
	"testing"
	"time"

	"gloss/internal/api"
	"gloss/internal/config"
	"gloss/internal/daemon"
	"gloss/internal/library"
	"gloss/internal/logging"
	"gloss/internal/stage"
	"gloss/internal/testsupport"
	"gloss/internal/workflow"
)

type noopHandler struct{}

func (noopHandler) Prepare(context.Context, *library.Lecture) error { return nil }
func (noopHandler) Execute(context.Context, *library.Lecture) error { return nil }
func (noopHandler) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("noop")
}

func newTestDaemon(t *testing.T, cfg *config.Config) *daemon.Daemon {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()
	mgr := workflow.NewManagerWithHandler(cfg, store, logger, nil, noopHandler{})
	svc := api.NewServiceWith(cfg, store, logger, nil, nil)
	d, err := daemon.New(cfg, store, logger, mgr, svc, "")
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	t.Cleanup(func() {
		d.Close()
	})
	return d
}

func TestDaemonStartStop(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d := newTestDaemon(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	status := d.Status(ctx)
	if !status.Running {
		t.Fatal("expected daemon to report running")
	}
	if status.PID != os.Getpid() {
		t.Fatalf("expected status PID %d, got %d", os.Getpid(), status.PID)
	}
	if status.LibraryDB != cfg.DatabasePath() {
		t.Fatalf("unexpected library db path: %q", status.LibraryDB)
	}
	if status.LockFilePath != cfg.LockFilePath() {
		t.Fatalf("unexpected lock path: %q", status.LockFilePath)
	}

	// Second start should fail
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}

	d.Stop()
	time.Sleep(50 * time.Millisecond)
	status = d.Status(ctx)
	if status.Running {
		t.Fatal("expected daemon to be stopped")
	}
}

func TestDaemonLockExcludesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := newTestDaemon(t, cfg)

	ctx := context.Background()
	if err := first.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer first.Stop()

	cfg2 := *cfg
	cfg2.API.Bind = ""
	second := newTestDaemon(t, &cfg2)
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected second daemon on the same lock file to fail")
	}
}
