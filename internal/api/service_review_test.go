package api

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"gloss/internal/library"
	"gloss/internal/llm"
)

// reviewedLecture drives a seeded lecture through finalize, queue, and an
// in-process run.
func reviewedLecture(t *testing.T, svc *Service) string {
	t.Helper()
	ctx := context.Background()
	ref := seedLecture(t, svc, true)
	if _, err := svc.Finalize(ctx, ref); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if _, err := svc.ReviewStart(ctx, ref); err != nil {
		t.Fatalf("ReviewStart: %v", err)
	}
	if _, err := svc.RunQueuedReview(ctx, ref); err != nil {
		t.Fatalf("RunQueuedReview: %v", err)
	}
	return ref
}

func TestFinalizeMovesDraftToFinalized(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()
	ref := seedLecture(t, svc, false)

	dto, err := svc.Finalize(ctx, ref)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if dto.Status != "finalized" {
		t.Fatalf("expected finalized, got %q", dto.Status)
	}

	var stateErr *library.InvalidStateError
	if _, err := svc.Finalize(ctx, ref); !errors.As(err, &stateErr) {
		t.Fatalf("expected invalid state error on second finalize, got %v", err)
	}
}

func TestReviewStartQueuesFinalizedLecture(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()
	ref := seedLecture(t, svc, true)

	if _, err := svc.Finalize(ctx, ref); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	dto, err := svc.ReviewStart(ctx, ref)
	if err != nil {
		t.Fatalf("ReviewStart: %v", err)
	}
	if dto.Status != "reviewing" {
		t.Fatalf("expected reviewing, got %q", dto.Status)
	}
	if dto.Progress.Message != "queued for review" {
		t.Fatalf("expected queued progress message, got %q", dto.Progress.Message)
	}
}

func TestReviewStartRequiresFinalized(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	ref := seedLecture(t, svc, true)

	var stateErr *library.InvalidStateError
	_, err := svc.ReviewStart(context.Background(), ref)
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected invalid state error, got %v", err)
	}
	if !strings.Contains(err.Error(), "start review requires status finalized") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestReviewStartPreflightRejectsMissingDeck(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()
	ref := seedLecture(t, svc, false)

	if _, err := svc.Finalize(ctx, ref); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	var preErr *library.PreconditionError
	if _, err := svc.ReviewStart(ctx, ref); !errors.As(err, &preErr) {
		t.Fatalf("expected precondition error, got %v", err)
	}

	detail, err := svc.LectureShow(ctx, ref)
	if err != nil {
		t.Fatalf("LectureShow: %v", err)
	}
	if detail.Lecture.Status != "finalized" {
		t.Fatalf("expected lecture to stay finalized, got %q", detail.Lecture.Status)
	}
}

func TestRunQueuedReviewCompletes(t *testing.T) {
	svc, _, _, responder, notifier := newTestService(t)
	ctx := context.Background()
	ref := seedLecture(t, svc, true)

	if _, err := svc.Finalize(ctx, ref); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if _, err := svc.ReviewStart(ctx, ref); err != nil {
		t.Fatalf("ReviewStart: %v", err)
	}
	dto, err := svc.RunQueuedReview(ctx, ref)
	if err != nil {
		t.Fatalf("RunQueuedReview: %v", err)
	}

	if dto.Status != "reviewed" {
		t.Fatalf("expected reviewed, got %q", dto.Status)
	}
	if dto.Progress.Done != 2 || dto.Progress.Total != 2 {
		t.Fatalf("unexpected progress: %+v", dto.Progress)
	}
	if dto.Progress.Message != "Review complete" {
		t.Fatalf("unexpected progress message: %q", dto.Progress.Message)
	}
	if dto.LastHeartbeat != "" {
		t.Fatalf("expected cleared heartbeat, got %q", dto.LastHeartbeat)
	}
	if got := responder.requestCount(); got != 2 {
		t.Fatalf("expected 2 provider requests, got %d", got)
	}

	cards, err := svc.Cards(ctx, ref)
	if err != nil {
		t.Fatalf("Cards: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("expected 2 cards, got %d", len(cards))
	}
	for _, card := range cards {
		if card.Failed || card.Response != "Looks correct." {
			t.Fatalf("unexpected card: %+v", card)
		}
		if card.Model != "scripted-model" {
			t.Fatalf("expected model recorded, got %q", card.Model)
		}
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.started) != 1 || notifier.started[0] != "Virtual Memory/2" {
		t.Fatalf("unexpected start notifications: %v", notifier.started)
	}
	if len(notifier.completed) != 1 || notifier.completed[0] != "Virtual Memory/2/0" {
		t.Fatalf("unexpected completion notifications: %v", notifier.completed)
	}
}

func TestRunQueuedReviewRequiresQueuedLecture(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	ctx := context.Background()
	ref := seedLecture(t, svc, true)

	if _, err := svc.Finalize(ctx, ref); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	var stateErr *library.InvalidStateError
	if _, err := svc.RunQueuedReview(ctx, ref); !errors.As(err, &stateErr) {
		t.Fatalf("expected invalid state error, got %v", err)
	}
}

func TestRunQueuedReviewRecordsPerNoteFailure(t *testing.T) {
	svc, _, _, responder, notifier := newTestService(t)
	ctx := context.Background()
	ref := seedLecture(t, svc, true)

	responder.complete = func(_ context.Context, req llm.Request) (*llm.Result, error) {
		if strings.Contains(req.Messages[0].Content, "page table walk") {
			return nil, errors.New("provider rejected the request")
		}
		return &llm.Result{Text: "Looks correct.", Model: "scripted-model"}, nil
	}

	if _, err := svc.Finalize(ctx, ref); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if _, err := svc.ReviewStart(ctx, ref); err != nil {
		t.Fatalf("ReviewStart: %v", err)
	}
	dto, err := svc.RunQueuedReview(ctx, ref)
	if err != nil {
		t.Fatalf("expected per-note failure to still complete the run, got %v", err)
	}
	if dto.Status != "reviewed" {
		t.Fatalf("expected reviewed, got %q", dto.Status)
	}
	if dto.Progress.Message != "Review complete, 1 of 2 note(s) failed" {
		t.Fatalf("unexpected progress message: %q", dto.Progress.Message)
	}

	cards, err := svc.Cards(ctx, ref)
	if err != nil {
		t.Fatalf("Cards: %v", err)
	}
	var failed int
	for _, card := range cards {
		if card.Failed {
			failed++
			if card.ErrorMessage != "provider rejected the request" {
				t.Fatalf("unexpected card error: %q", card.ErrorMessage)
			}
		}
	}
	if failed != 1 {
		t.Fatalf("expected exactly one failed card, got %d", failed)
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.completed) != 1 || notifier.completed[0] != "Virtual Memory/2/1" {
		t.Fatalf("unexpected completion notifications: %v", notifier.completed)
	}
}

func TestRunQueuedReviewFailureReturnsLectureToFinalized(t *testing.T) {
	svc, _, _, _, notifier := newTestService(t)
	ctx := context.Background()
	ref := seedLecture(t, svc, true)

	if _, err := svc.Finalize(ctx, ref); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if _, err := svc.ReviewStart(ctx, ref); err != nil {
		t.Fatalf("ReviewStart: %v", err)
	}

	// The deck vanishing between queue and run is a run-level failure, not a
	// card failure.
	detail, err := svc.LectureShow(ctx, ref)
	if err != nil {
		t.Fatalf("LectureShow: %v", err)
	}
	if err := os.Remove(detail.Lecture.DeckPath); err != nil {
		t.Fatalf("remove deck: %v", err)
	}

	if _, err := svc.RunQueuedReview(ctx, ref); err == nil {
		t.Fatal("expected run failure")
	}

	after, err := svc.LectureShow(ctx, ref)
	if err != nil {
		t.Fatalf("LectureShow: %v", err)
	}
	if after.Lecture.Status != "finalized" {
		t.Fatalf("expected lecture back in finalized, got %q", after.Lecture.Status)
	}
	if !strings.Contains(after.Lecture.ErrorMessage, "slide deck failed validation") {
		t.Fatalf("expected deck validation message, got %q", after.Lecture.ErrorMessage)
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.failures) != 1 || !strings.HasPrefix(notifier.failures[0], "Virtual Memory: ") {
		t.Fatalf("unexpected failure notifications: %v", notifier.failures)
	}
}

func TestFollowUpAppendsExchange(t *testing.T) {
	svc, _, _, responder, _ := newTestService(t)
	ctx := context.Background()
	ref := reviewedLecture(t, svc)

	cards, err := svc.Cards(ctx, ref)
	if err != nil {
		t.Fatalf("Cards: %v", err)
	}
	card := cards[0]

	responder.complete = func(context.Context, llm.Request) (*llm.Result, error) {
		return &llm.Result{Text: "Huge pages skip a level of the walk.", Model: "scripted-model"}, nil
	}
	exchange, err := svc.FollowUp(ctx, card.ID, "What about huge pages?")
	if err != nil {
		t.Fatalf("FollowUp: %v", err)
	}
	if exchange.Question != "What about huge pages?" {
		t.Fatalf("unexpected question: %q", exchange.Question)
	}
	if exchange.Answer != "Huge pages skip a level of the walk." {
		t.Fatalf("unexpected answer: %q", exchange.Answer)
	}

	detail, err := svc.Card(ctx, card.ID)
	if err != nil {
		t.Fatalf("Card: %v", err)
	}
	if len(detail.Exchanges) != 1 {
		t.Fatalf("expected 1 exchange, got %d", len(detail.Exchanges))
	}

	var emptyErr *library.EmptyInputError
	if _, err := svc.FollowUp(ctx, card.ID, "   "); !errors.As(err, &emptyErr) {
		t.Fatalf("expected empty input error, got %v", err)
	}
}

func TestRegenerateReplacesResponseAndClearsThread(t *testing.T) {
	svc, _, _, responder, _ := newTestService(t)
	ctx := context.Background()
	ref := reviewedLecture(t, svc)

	cards, err := svc.Cards(ctx, ref)
	if err != nil {
		t.Fatalf("Cards: %v", err)
	}
	card := cards[0]
	if _, err := svc.FollowUp(ctx, card.ID, "What about huge pages?"); err != nil {
		t.Fatalf("FollowUp: %v", err)
	}

	responder.complete = func(context.Context, llm.Request) (*llm.Result, error) {
		return &llm.Result{Text: "Second look: still correct.", Model: "scripted-model"}, nil
	}
	regenerated, err := svc.Regenerate(ctx, card.ID)
	if err != nil {
		t.Fatalf("Regenerate: %v", err)
	}
	if regenerated.Response != "Second look: still correct." {
		t.Fatalf("unexpected response: %q", regenerated.Response)
	}

	detail, err := svc.Card(ctx, card.ID)
	if err != nil {
		t.Fatalf("Card: %v", err)
	}
	if len(detail.Exchanges) != 0 {
		t.Fatalf("expected cleared thread, got %d exchanges", len(detail.Exchanges))
	}
}

func TestServiceWithoutEngineRejectsReviewOps(t *testing.T) {
	svc, _, _, _, _ := newTestService(t)
	bare := NewServiceWith(svc.cfg, svc.store, nil, nil, nil)

	if _, err := bare.ReviewStart(context.Background(), "1"); err == nil {
		t.Fatal("expected engine-not-configured error")
	}
	if _, err := bare.FollowUp(context.Background(), 1, "question"); err == nil {
		t.Fatal("expected engine-not-configured error")
	}
}
