// Package review turns a finalized lecture's notes into provider responses.
// The engine implements the workflow stage contract for the daemon's review
// lane and is invoked directly for follow-up questions and per-card
// regeneration. Every provider request is issued exactly once: a failure is
// recorded on the card that asked for it and the batch keeps going.
package review

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gloss/internal/config"
	"gloss/internal/library"
	"gloss/internal/llm"
	"gloss/internal/logging"
	"gloss/internal/slides"
	"gloss/internal/stage"
	"gloss/internal/textutil"
)

// Responder issues one provider request. *llm.Client satisfies it.
type Responder interface {
	Complete(ctx context.Context, req llm.Request) (*llm.Result, error)
	AttachmentMode() llm.AttachmentMode
	Model() string
}

// Engine dispatches review requests for a lecture and settles the results
// onto its cards in note order.
type Engine struct {
	store     *library.Store
	cfg       *config.Config
	logger    *slog.Logger
	responder Responder
}

// NewEngine constructs the review engine. The provider client is resolved
// per operation rather than at construction so the daemon can start before
// credentials are configured; preflight reports what is missing.
func NewEngine(cfg *config.Config, store *library.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Engine{
		cfg:    cfg,
		store:  store,
		logger: logging.NewComponentLogger(logger, "review"),
	}
}

// NewEngineWithResponder constructs an engine bound to a fixed responder
// instead of the configured provider client.
func NewEngineWithResponder(cfg *config.Config, store *library.Store, logger *slog.Logger, responder Responder) *Engine {
	engine := NewEngine(cfg, store, logger)
	engine.responder = responder
	return engine
}

func (e *Engine) respond() (Responder, error) {
	if e.responder != nil {
		return e.responder, nil
	}
	return llm.NewClient(e.cfg, e.logger)
}

// deckPayload carries the deck in the form the active provider accepts.
// Exactly one field is populated.
type deckPayload struct {
	base64 string
	text   string
}

func loadDeck(mode llm.AttachmentMode, path string) (deckPayload, error) {
	switch mode {
	case llm.PageText:
		pages, err := slides.PageTexts(path)
		if err != nil {
			return deckPayload{}, err
		}
		return deckPayload{text: joinSlideTexts(pages)}, nil
	default:
		encoded, err := slides.Base64(path)
		if err != nil {
			return deckPayload{}, err
		}
		return deckPayload{base64: encoded}, nil
	}
}

// Preflight verifies a lecture can be dispatched: the deck is present and
// valid on disk, the provider is configured, and the lecture has at least
// one note. It runs before any state transition so a failure leaves the
// lecture untouched and no request is sent.
func (e *Engine) Preflight(ctx context.Context, lecture *library.Lecture) error {
	if e == nil || e.cfg == nil {
		return &library.PreconditionError{Reason: "review engine is not configured"}
	}
	if e.store == nil {
		return &library.PreconditionError{Reason: "library store unavailable"}
	}
	if lecture == nil {
		return &library.PreconditionError{Reason: "lecture unavailable"}
	}
	if !lecture.HasDeck() {
		return &library.PreconditionError{Reason: "lecture has no slide deck attached"}
	}
	if err := slides.Validate(lecture.DeckPath); err != nil {
		return &library.PreconditionError{Reason: "slide deck failed validation", Err: err}
	}
	if _, err := e.respond(); err != nil {
		return &library.PreconditionError{Reason: "provider is not ready", Err: err}
	}
	lectureNotes, err := e.store.ListNotes(ctx, lecture.ID)
	if err != nil {
		return &library.PreconditionError{Reason: "failed to load notes", Err: err}
	}
	if len(lectureNotes) == 0 {
		return &library.PreconditionError{Reason: "lecture has no notes to review"}
	}
	return nil
}

// Prepare re-runs preflight and primes the progress counters before the
// manager hands the lecture to Execute.
func (e *Engine) Prepare(ctx context.Context, lecture *library.Lecture) error {
	if err := e.Preflight(ctx, lecture); err != nil {
		return err
	}
	lecture.SetProgress(0, 0, "Preparing review")
	return e.store.UpdateProgress(ctx, lecture.ID, 0, 0, "Preparing review")
}

// Execute dispatches one provider request per note with bounded concurrency
// and settles each result onto its card. Request failures are recorded on
// the owning card and the batch continues; Execute fails only when the run
// itself cannot proceed. The status transition to reviewed is left to the
// caller once Execute returns nil.
func (e *Engine) Execute(ctx context.Context, lecture *library.Lecture) error {
	dispatchStart := time.Now()
	logger := logging.WithContext(ctx, e.logger)

	responder, err := e.respond()
	if err != nil {
		return fmt.Errorf("resolve provider: %w", err)
	}

	lectureNotes, err := e.store.ListNotes(ctx, lecture.ID)
	if err != nil {
		return fmt.Errorf("load notes: %w", err)
	}
	if len(lectureNotes) == 0 {
		return &library.PreconditionError{Reason: "lecture has no notes to review"}
	}

	deck, err := loadDeck(responder.AttachmentMode(), lecture.DeckPath)
	if err != nil {
		return fmt.Errorf("load deck: %w", err)
	}

	// Discards cards left over from an interrupted run before placeholders
	// are created in note order.
	cards, err := e.store.ReplaceCards(ctx, lecture.ID, lectureNotes)
	if err != nil {
		return fmt.Errorf("create cards: %w", err)
	}

	total := len(cards)
	progressMessage := fmt.Sprintf("Reviewing %d note(s)", total)
	lecture.SetProgress(0, total, progressMessage)
	if err := e.store.UpdateProgress(ctx, lecture.ID, 0, total, progressMessage); err != nil {
		return fmt.Errorf("persist progress: %w", err)
	}

	logger.Info("review dispatch started",
		logging.String(logging.FieldEventType, "dispatch_start"),
		logging.Int("notes", total),
		logging.String("model", responder.Model()),
		logging.String("attachment_mode", responder.AttachmentMode().String()),
	)

	parallel := e.cfg.Review.ParallelRequests
	if parallel <= 0 {
		parallel = 3
	}
	sem := make(chan struct{}, parallel)

	var wg sync.WaitGroup
	var mu sync.Mutex
	settled := 0
	failures := 0
	var inputTokens, outputTokens int64
	var storeErr error

	for _, card := range cards {
		wg.Add(1)
		go func(card *library.ReviewCard) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			result, reqErr := responder.Complete(ctx, llm.Request{
				System:     systemPrompt,
				Messages:   []llm.Message{{Role: llm.RoleUser, Content: reviewMessage(card.Slide, card.Kind, card.NoteText)}},
				DeckBase64: deck.base64,
				DeckText:   deck.text,
				MaxTokens:  e.cfg.LLM.MaxTokens,
			})
			if reqErr != nil && ctx.Err() != nil {
				// Shutdown mid-request. The run fails as a whole and the
				// next dispatch discards these cards, so the placeholder is
				// left untouched rather than marked failed.
				return
			}

			mu.Lock()
			defer mu.Unlock()

			if reqErr != nil {
				failures++
				logger.Warn("note review failed",
					logging.Error(reqErr),
					logging.String(logging.FieldEventType, "note_review_failed"),
					logging.Int64("card_id", card.ID),
					logging.Int("slide", card.Slide),
					logging.String(logging.FieldErrorHint, "fix the cause and run gloss regen"),
					logging.String(logging.FieldImpact, "card has no response until regenerated"),
				)
				if err := e.store.SetCardFailed(ctx, card.ID, reqErr.Error()); err != nil && storeErr == nil {
					storeErr = fmt.Errorf("record card failure: %w", err)
				}
			} else {
				inputTokens += result.Usage.InputTokens
				outputTokens += result.Usage.OutputTokens
				if err := e.store.SetCardResult(ctx, card.ID, result.Text, result.Model, result.Usage.InputTokens, result.Usage.OutputTokens); err != nil && storeErr == nil {
					storeErr = fmt.Errorf("record card result: %w", err)
				}
			}

			settled++
			message := fmt.Sprintf("Reviewed %d of %d note(s)", settled, total)
			if err := e.store.UpdateProgress(ctx, lecture.ID, settled, total, message); err != nil && storeErr == nil {
				storeErr = fmt.Errorf("persist progress: %w", err)
			}
		}(card)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	if storeErr != nil {
		return storeErr
	}

	message := "Review complete"
	if failures > 0 {
		message = fmt.Sprintf("Review complete, %d of %d note(s) failed", failures, total)
	}
	lecture.SetProgress(total, total, message)
	if err := e.store.UpdateProgress(ctx, lecture.ID, total, total, message); err != nil {
		return fmt.Errorf("persist progress: %w", err)
	}

	logger.Info("review dispatch complete",
		logging.String(logging.FieldEventType, "dispatch_complete"),
		logging.String("dispatch_result", textutil.Ternary(failures == 0, "clean", "partial")),
		logging.Int("notes", total),
		logging.Int("failed", failures),
		logging.Int64("input_tokens", inputTokens),
		logging.Int64("output_tokens", outputTokens),
		logging.Duration("stage_duration", time.Since(dispatchStart)),
	)
	return nil
}

// HealthCheck reports readiness for the review stage.
func (e *Engine) HealthCheck(ctx context.Context) stage.Health {
	const name = "review"
	if e == nil || e.cfg == nil {
		return stage.Unhealthy(name, "stage not configured")
	}
	if e.store == nil {
		return stage.Unhealthy(name, "library store unavailable")
	}
	if _, err := e.respond(); err != nil {
		return stage.Unhealthy(name, err.Error())
	}
	return stage.Healthy(name)
}
