package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gloss/internal/api"
	"gloss/internal/logging"
	"gloss/internal/testsupport"
)

func newWatcherFixture(t *testing.T) (*inboxWatcher, *api.Service) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithInbox("Inbox"))
	store := testsupport.MustOpenStore(t, cfg)
	t.Cleanup(func() {
		store.Close()
	})
	svc := api.NewServiceWith(cfg, store, logging.NewNop(), nil, nil)

	w := newInboxWatcher(cfg, svc, logging.NewNop())
	if w == nil {
		t.Fatal("expected watcher when inbox is configured")
	}
	w.settle = 50 * time.Millisecond
	w.tick = 25 * time.Millisecond
	return w, svc
}

func startWatcher(t *testing.T, w *inboxWatcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(w.Stop)
}

func waitForLecture(t *testing.T, svc *api.Service, course string) api.Lecture {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		lectures, err := svc.LectureList(context.Background(), course)
		if err == nil && len(lectures) == 1 {
			return lectures[0]
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("timed out waiting for inbox import")
	return api.Lecture{}
}

func waitForRemoval(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("expected %s to be removed after import", path)
}

func TestInboxWatcherImportsDroppedDeck(t *testing.T) {
	w, svc := newWatcherFixture(t)
	startWatcher(t, w)

	deck := filepath.Join(w.dir, "virtual_memory.pdf")
	testsupport.WritePDFStub(t, deck)

	lecture := waitForLecture(t, svc, "Inbox")
	if lecture.Title != "virtual memory" {
		t.Fatalf("unexpected title: %q", lecture.Title)
	}
	if lecture.Status != "draft" {
		t.Fatalf("expected draft status, got %q", lecture.Status)
	}
	if lecture.DeckPath == "" {
		t.Fatal("expected imported lecture to carry a deck")
	}
	if _, err := os.Stat(lecture.DeckPath); err != nil {
		t.Fatalf("expected managed deck copy to exist: %v", err)
	}
	waitForRemoval(t, deck)
}

func TestInboxWatcherSweepsExistingFiles(t *testing.T) {
	w, svc := newWatcherFixture(t)

	// Dropped while the daemon was down.
	deck := filepath.Join(w.dir, "page_tables.pdf")
	testsupport.WritePDFStub(t, deck)

	startWatcher(t, w)

	lecture := waitForLecture(t, svc, "Inbox")
	if lecture.Title != "page tables" {
		t.Fatalf("unexpected title: %q", lecture.Title)
	}
	waitForRemoval(t, deck)
}

func TestInboxWatcherIgnoresNonPDF(t *testing.T) {
	w, svc := newWatcherFixture(t)
	startWatcher(t, w)

	if err := os.WriteFile(filepath.Join(w.dir, "notes.txt"), []byte("plain text"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	time.Sleep(300 * time.Millisecond)

	if _, err := svc.LectureList(context.Background(), "Inbox"); err == nil {
		t.Fatal("expected no inbox course for non-PDF drop")
	}
	if _, err := os.Stat(filepath.Join(w.dir, "notes.txt")); err != nil {
		t.Fatalf("expected non-PDF file to be left alone: %v", err)
	}
}

func TestNewInboxWatcherDisabledWithoutInboxDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	t.Cleanup(func() {
		store.Close()
	})
	svc := api.NewServiceWith(cfg, store, logging.NewNop(), nil, nil)

	if w := newInboxWatcher(cfg, svc, logging.NewNop()); w != nil {
		t.Fatal("expected nil watcher without an inbox directory")
	}
}
