package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/fsnotify/fsnotify"

	"gloss/internal/api"
	"gloss/internal/config"
	"gloss/internal/logging"
)

// settleInterval paces size checks on files waiting to stabilize.
const settleInterval = 500 * time.Millisecond

// pendingDeck tracks a dropped file until its size stops changing.
type pendingDeck struct {
	size        int64
	stableSince time.Time
}

// inboxWatcher imports PDFs dropped into the inbox directory as draft
// lectures in the configured inbox course. Files are imported only after
// their size has been stable for the settle window, so half-copied decks
// are left alone.
type inboxWatcher struct {
	cfg    *config.Config
	svc    *api.Service
	logger *slog.Logger

	dir    string
	course string
	settle time.Duration
	tick   time.Duration

	pending map[string]*pendingDeck
	// failed records the file size at the last import failure; the file is
	// retried only after it changes again.
	failed map[string]int64

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	fsw *fsnotify.Watcher
}

func newInboxWatcher(cfg *config.Config, svc *api.Service, logger *slog.Logger) *inboxWatcher {
	if cfg == nil || svc == nil {
		return nil
	}
	dir := strings.TrimSpace(cfg.Paths.InboxDir)
	if dir == "" {
		return nil
	}

	watcherLogger := logger
	if watcherLogger != nil {
		watcherLogger = watcherLogger.With(logging.String("component", "inbox-watcher"))
	}

	return &inboxWatcher{
		cfg:     cfg,
		svc:     svc,
		logger:  watcherLogger,
		dir:     dir,
		course:  cfg.Library.InboxCourse,
		settle:  2 * time.Second,
		tick:    settleInterval,
		pending: make(map[string]*pendingDeck),
		failed:  make(map[string]int64),
	}
}

func (w *inboxWatcher) Start(ctx context.Context) error {
	if w == nil {
		return errors.New("inbox watcher unavailable")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return errors.New("inbox watcher already running")
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create inbox directory: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create inbox watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch inbox directory: %w", err)
	}
	w.fsw = fsw

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running = true

	w.sweep()

	w.wg.Add(1)
	go w.loop(runCtx, fsw.Events, fsw.Errors)

	w.log().Info("inbox watcher started",
		logging.String("inbox", w.dir),
		logging.String("course", w.course),
	)
	return nil
}

func (w *inboxWatcher) Stop() {
	if w == nil {
		return
	}
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	cancel := w.cancel
	fsw := w.fsw
	w.running = false
	w.cancel = nil
	w.fsw = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if fsw != nil {
		_ = fsw.Close()
	}
	w.wg.Wait()
}

// sweep queues PDFs already sitting in the inbox, so files dropped while the
// daemon was down are imported too.
func (w *inboxWatcher) sweep() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.log().Warn("failed to scan inbox directory", logging.Error(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(w.dir, entry.Name())
		if isPDF(path) {
			w.track(path)
		}
	}
}

func (w *inboxWatcher) loop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-errs:
			if !ok {
				return
			}
			w.log().Warn("inbox watch error", logging.Error(err))
		case <-ticker.C:
			w.settlePending(ctx)
		}
	}
}

func (w *inboxWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	if !isPDF(event.Name) {
		return
	}
	w.track(event.Name)
}

func (w *inboxWatcher) track(path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if entry, ok := w.pending[path]; ok {
		if entry.size != info.Size() {
			entry.size = info.Size()
			entry.stableSince = time.Now()
		}
		return
	}
	w.pending[path] = &pendingDeck{size: info.Size(), stableSince: time.Now()}
}

// settlePending imports every tracked file whose size has been stable for
// the settle window.
func (w *inboxWatcher) settlePending(ctx context.Context) {
	w.mu.Lock()
	ready := make([]string, 0, len(w.pending))
	now := time.Now()
	for path, entry := range w.pending {
		info, err := os.Stat(path)
		if err != nil {
			delete(w.pending, path)
			delete(w.failed, path)
			continue
		}
		if info.Size() != entry.size {
			entry.size = info.Size()
			entry.stableSince = now
			continue
		}
		if now.Sub(entry.stableSince) < w.settle {
			continue
		}
		if failedSize, ok := w.failed[path]; ok && failedSize == entry.size {
			// Already failed at this size; wait for the file to change.
			delete(w.pending, path)
			continue
		}
		ready = append(ready, path)
	}
	for _, path := range ready {
		delete(w.pending, path)
	}
	w.mu.Unlock()

	for _, path := range ready {
		if ctx.Err() != nil {
			return
		}
		w.importDeck(ctx, path)
	}
}

func (w *inboxWatcher) importDeck(ctx context.Context, path string) {
	if _, err := w.svc.EnsureCourse(ctx, w.course); err != nil {
		w.recordFailure(path, err)
		return
	}
	lecture, err := w.svc.LectureAdd(ctx, w.course, titleFromFilename(path), "", path)
	if err != nil {
		w.recordFailure(path, err)
		return
	}

	if err := os.Remove(path); err != nil {
		w.log().Warn("failed to remove imported inbox file",
			logging.Error(err),
			logging.String("path", path),
			logging.String(logging.FieldErrorHint, "delete the file by hand"),
		)
	}
	w.log().Info("inbox deck imported",
		logging.String(logging.FieldEventType, "inbox_import"),
		logging.Int64(logging.FieldLectureID, lecture.ID),
		logging.String("title", lecture.Title),
		logging.String("source", path),
	)
}

func (w *inboxWatcher) recordFailure(path string, err error) {
	size := int64(-1)
	if info, statErr := os.Stat(path); statErr == nil {
		size = info.Size()
	}
	w.mu.Lock()
	w.failed[path] = size
	w.mu.Unlock()

	w.log().Warn("inbox import failed",
		logging.Error(err),
		logging.String("path", path),
		logging.String(logging.FieldEventType, "inbox_import_failed"),
		logging.String(logging.FieldErrorHint, "fix the file and drop it again"),
		logging.String(logging.FieldImpact, "deck was not imported"),
	)
}

func (w *inboxWatcher) log() *slog.Logger {
	if w.logger == nil {
		return logging.NewNop()
	}
	return w.logger
}

func isPDF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

// titleFromFilename derives a lecture title from a dropped file's name.
// Underscores read as spaces; the extension is dropped.
func titleFromFilename(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	title := strings.TrimSpace(strings.ReplaceAll(stem, "_", " "))
	if title == "" {
		return "Untitled Lecture"
	}
	return title
}
