package api

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"gloss/internal/config"
	"gloss/internal/library"
	"gloss/internal/llm"
	"gloss/internal/logging"
	"gloss/internal/review"
	"gloss/internal/testsupport"
)

// scriptedResponder satisfies review.Responder with a canned result unless a
// complete hook overrides it.
type scriptedResponder struct {
	mu       sync.Mutex
	requests []llm.Request
	complete func(ctx context.Context, req llm.Request) (*llm.Result, error)
}

func (f *scriptedResponder) Complete(ctx context.Context, req llm.Request) (*llm.Result, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.complete != nil {
		return f.complete(ctx, req)
	}
	return &llm.Result{
		Text:  "Looks correct.",
		Model: "scripted-model",
		Usage: llm.Usage{InputTokens: 90, OutputTokens: 15},
	}, nil
}

func (f *scriptedResponder) AttachmentMode() llm.AttachmentMode { return llm.InlinePDF }

func (f *scriptedResponder) Model() string { return "scripted-model" }

func (f *scriptedResponder) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type recordingNotifier struct {
	mu        sync.Mutex
	started   []string
	completed []string
	failures  []string
	tested    int
}

func (r *recordingNotifier) NotifyReviewStarted(_ context.Context, title string, noteCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, fmt.Sprintf("%s/%d", title, noteCount))
	return nil
}

func (r *recordingNotifier) NotifyReviewCompleted(_ context.Context, title string, reviewed, failed int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, fmt.Sprintf("%s/%d/%d", title, reviewed, failed))
	return nil
}

func (r *recordingNotifier) NotifyRunFailed(_ context.Context, title, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, title+": "+message)
	return nil
}

func (r *recordingNotifier) TestNotification(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tested++
	return nil
}

func newTestService(t *testing.T) (*Service, *library.Store, *config.Config, *scriptedResponder, *recordingNotifier) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	responder := &scriptedResponder{}
	notifier := &recordingNotifier{}
	engine := review.NewEngineWithResponder(cfg, store, logging.NewNop(), responder)
	svc := NewServiceWith(cfg, store, logging.NewNop(), engine, notifier)
	return svc, store, cfg, responder, notifier
}

// seedLecture builds a one-course, two-note lecture through the service and
// returns its numeric reference.
func seedLecture(t *testing.T, svc *Service, withDeck bool) string {
	t.Helper()
	ctx := context.Background()

	if _, err := svc.CourseAdd(ctx, "Operating Systems"); err != nil {
		t.Fatalf("CourseAdd: %v", err)
	}
	deck := ""
	if withDeck {
		deck = filepath.Join(t.TempDir(), "virtual-memory.pdf")
		testsupport.WritePDFStub(t, deck)
	}
	lecture, err := svc.LectureAdd(ctx, "Operating Systems", "Virtual Memory", "", deck)
	if err != nil {
		t.Fatalf("LectureAdd: %v", err)
	}
	ref := strconv.FormatInt(lecture.ID, 10)
	text := "- The TLB caches address translations\n\n? Why is the page table walk two levels?"
	if _, err := svc.NoteAdd(ctx, ref, 3, text); err != nil {
		t.Fatalf("NoteAdd: %v", err)
	}
	return ref
}

func TestResolveCourseByIDSlugAndName(t *testing.T) {
	svc, store, _, _, _ := newTestService(t)
	ctx := context.Background()
	course := testsupport.NewCourse(t, store, "Operating Systems")

	for _, ref := range []string{strconv.FormatInt(course.ID, 10), "operating-systems", "Operating Systems"} {
		got, err := svc.resolveCourse(ctx, ref)
		if err != nil {
			t.Fatalf("resolveCourse(%q): %v", ref, err)
		}
		if got.ID != course.ID {
			t.Fatalf("resolveCourse(%q) = %d, want %d", ref, got.ID, course.ID)
		}
	}

	if _, err := svc.resolveCourse(ctx, "databases"); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	var emptyErr *library.EmptyInputError
	if _, err := svc.resolveCourse(ctx, "   "); !errors.As(err, &emptyErr) {
		t.Fatalf("expected empty input error, got %v", err)
	}
}

func TestResolveCourseFallsBackToNameAfterSlugDrift(t *testing.T) {
	svc, store, _, _, _ := newTestService(t)
	ctx := context.Background()

	first := testsupport.NewCourse(t, store, "Algorithms")
	second, err := store.CreateCourse(ctx, "Algorithms")
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if second.Slug == "algorithms" {
		t.Fatalf("expected deduplicated slug, got %q", second.Slug)
	}
	if _, err := store.RemoveCourse(ctx, first.ID); err != nil {
		t.Fatalf("RemoveCourse: %v", err)
	}

	got, err := svc.resolveCourse(ctx, "Algorithms")
	if err != nil {
		t.Fatalf("resolveCourse: %v", err)
	}
	if got.ID != second.ID {
		t.Fatalf("expected course %d, got %d", second.ID, got.ID)
	}
}

func TestResolveLecturePathForm(t *testing.T) {
	svc, store, _, _, _ := newTestService(t)
	ctx := context.Background()
	course := testsupport.NewCourse(t, store, "Operating Systems")
	lecture := testsupport.NewLecture(t, store, course.ID, "Virtual Memory")

	byID, err := svc.resolveLecture(ctx, strconv.FormatInt(lecture.ID, 10))
	if err != nil {
		t.Fatalf("resolveLecture by id: %v", err)
	}
	if byID.ID != lecture.ID {
		t.Fatalf("expected lecture %d, got %d", lecture.ID, byID.ID)
	}

	byPath, err := svc.resolveLecture(ctx, "operating-systems/virtual-memory")
	if err != nil {
		t.Fatalf("resolveLecture by path: %v", err)
	}
	if byPath.ID != lecture.ID {
		t.Fatalf("expected lecture %d, got %d", lecture.ID, byPath.ID)
	}

	if _, err := svc.resolveLecture(ctx, "virtual-memory"); err == nil {
		t.Fatal("expected error for bare slug reference")
	}
	if _, err := svc.resolveLecture(ctx, "operating-systems/paging"); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestResolveGroupScopedToCourse(t *testing.T) {
	svc, store, _, _, _ := newTestService(t)
	ctx := context.Background()
	osCourse := testsupport.NewCourse(t, store, "Operating Systems")
	dbCourse := testsupport.NewCourse(t, store, "Databases")
	group, err := store.CreateGroup(ctx, dbCourse.ID, "Week 1")
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	got, err := svc.resolveGroup(ctx, dbCourse, "week-1")
	if err != nil {
		t.Fatalf("resolveGroup: %v", err)
	}
	if got.ID != group.ID {
		t.Fatalf("expected group %d, got %d", group.ID, got.ID)
	}

	ref := strconv.FormatInt(group.ID, 10)
	if _, err := svc.resolveGroup(ctx, osCourse, ref); !errors.Is(err, library.ErrNotFound) {
		t.Fatalf("expected cross-course lookup to miss, got %v", err)
	}
}

func TestCourseLifecycle(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CourseAdd(ctx, "Operating Systems"); err != nil {
		t.Fatalf("CourseAdd: %v", err)
	}
	added, err := svc.CourseAdd(ctx, "Distributed Systems")
	if err != nil {
		t.Fatalf("CourseAdd: %v", err)
	}
	if added.Slug != "distributed-systems" || added.Position != 2 {
		t.Fatalf("unexpected course: %+v", added)
	}

	reordered, err := svc.CourseReorder(ctx, "distributed-systems", 1)
	if err != nil {
		t.Fatalf("CourseReorder: %v", err)
	}
	if len(reordered) != 2 || reordered[0].Slug != "distributed-systems" {
		t.Fatalf("unexpected order: %+v", reordered)
	}

	renamed, err := svc.CourseRename(ctx, "operating-systems", "Advanced Operating Systems")
	if err != nil {
		t.Fatalf("CourseRename: %v", err)
	}
	if renamed.Slug != "advanced-operating-systems" {
		t.Fatalf("expected slug to follow rename, got %q", renamed.Slug)
	}

	if err := svc.CourseRemove(ctx, "distributed-systems"); err != nil {
		t.Fatalf("CourseRemove: %v", err)
	}
	courses, err := svc.CourseList(ctx)
	if err != nil {
		t.Fatalf("CourseList: %v", err)
	}
	if len(courses) != 1 || courses[0].Slug != "advanced-operating-systems" {
		t.Fatalf("unexpected courses after remove: %+v", courses)
	}
}

func TestGroupLifecycle(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CourseAdd(ctx, "Operating Systems"); err != nil {
		t.Fatalf("CourseAdd: %v", err)
	}
	group, err := svc.GroupAdd(ctx, "operating-systems", "Week 1")
	if err != nil {
		t.Fatalf("GroupAdd: %v", err)
	}
	if group.Slug != "week-1" {
		t.Fatalf("unexpected group slug: %q", group.Slug)
	}

	renamed, err := svc.GroupRename(ctx, "operating-systems", "week-1", "Memory Unit")
	if err != nil {
		t.Fatalf("GroupRename: %v", err)
	}
	if renamed.Slug != "memory-unit" {
		t.Fatalf("expected slug to follow rename, got %q", renamed.Slug)
	}

	if err := svc.GroupRemove(ctx, "operating-systems", "memory-unit"); err != nil {
		t.Fatalf("GroupRemove: %v", err)
	}
	groups, err := svc.GroupList(ctx, "operating-systems")
	if err != nil {
		t.Fatalf("GroupList: %v", err)
	}
	if len(groups) != 0 {
		t.Fatalf("expected no groups, got %+v", groups)
	}
}

func TestEnsureCourseFindsOrCreates(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.EnsureCourse(ctx, "Inbox")
	if err != nil {
		t.Fatalf("EnsureCourse: %v", err)
	}
	if created.Slug != "inbox" {
		t.Fatalf("unexpected slug: %q", created.Slug)
	}

	again, err := svc.EnsureCourse(ctx, "Inbox")
	if err != nil {
		t.Fatalf("EnsureCourse second call: %v", err)
	}
	if again.ID != created.ID {
		t.Fatalf("expected the existing course, got %d and %d", created.ID, again.ID)
	}

	courses, err := svc.CourseList(ctx)
	if err != nil {
		t.Fatalf("CourseList: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("expected a single course, got %d", len(courses))
	}
}
