package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gloss/internal/library"
	"gloss/internal/llm"
	"gloss/internal/logging"
	"gloss/internal/textutil"
)

// FollowUp sends one follow-up question on a reviewed card and appends the
// answer to its exchange thread. The request replays the card's full thread:
// the original note context, the card's response, every prior exchange, and
// the new question. A provider failure appends nothing.
func (e *Engine) FollowUp(ctx context.Context, cardID int64, question string) (*library.Exchange, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, &library.EmptyInputError{Field: "question"}
	}

	card, lecture, err := e.cardForThread(ctx, cardID, "follow-up")
	if err != nil {
		return nil, err
	}
	if !card.HasResponse() {
		return nil, &library.PreconditionError{Reason: "card has no response to follow up on"}
	}

	responder, err := e.respond()
	if err != nil {
		return nil, fmt.Errorf("resolve provider: %w", err)
	}
	deck, err := loadDeck(responder.AttachmentMode(), lecture.DeckPath)
	if err != nil {
		return nil, fmt.Errorf("load deck: %w", err)
	}
	exchanges, err := e.store.ListExchanges(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("load exchanges: %w", err)
	}

	messages := make([]llm.Message, 0, 2*len(exchanges)+3)
	messages = append(messages,
		llm.Message{Role: llm.RoleUser, Content: followUpOpening(card.Slide, card.Kind, card.NoteText)},
		llm.Message{Role: llm.RoleAssistant, Content: card.Response},
	)
	for _, exchange := range exchanges {
		messages = append(messages,
			llm.Message{Role: llm.RoleUser, Content: exchange.Question},
			llm.Message{Role: llm.RoleAssistant, Content: exchange.Answer},
		)
	}
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})

	start := time.Now()
	result, err := responder.Complete(ctx, llm.Request{
		System:     systemPrompt,
		Messages:   messages,
		DeckBase64: deck.base64,
		DeckText:   deck.text,
		MaxTokens:  e.cfg.LLM.FollowUpMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	exchange, err := e.store.AppendExchange(ctx, cardID, question, result.Text)
	if err != nil {
		return nil, err
	}

	logging.WithContext(ctx, e.logger).Info("follow-up answered",
		logging.String(logging.FieldEventType, "follow_up_complete"),
		logging.Int64("card_id", cardID),
		logging.String("question", textutil.Snippet(question, 80)),
		logging.Int("thread_length", len(exchanges)+1),
		logging.Int64("input_tokens", result.Usage.InputTokens),
		logging.Int64("output_tokens", result.Usage.OutputTokens),
		logging.Duration("request_duration", time.Since(start)),
	)
	return exchange, nil
}

// Regenerate re-issues a single card's review request and replaces its
// result. The card's exchange thread is cleared first so a stale
// conversation never hangs off the new response. Works on failed and
// successful cards alike; a provider failure is recorded on the card.
func (e *Engine) Regenerate(ctx context.Context, cardID int64) (*library.ReviewCard, error) {
	card, lecture, err := e.cardForThread(ctx, cardID, "regenerate")
	if err != nil {
		return nil, err
	}

	responder, err := e.respond()
	if err != nil {
		return nil, fmt.Errorf("resolve provider: %w", err)
	}
	deck, err := loadDeck(responder.AttachmentMode(), lecture.DeckPath)
	if err != nil {
		return nil, fmt.Errorf("load deck: %w", err)
	}

	cleared, err := e.store.ClearExchanges(ctx, cardID)
	if err != nil {
		return nil, fmt.Errorf("clear exchanges: %w", err)
	}

	logger := logging.WithContext(ctx, e.logger)
	start := time.Now()
	result, reqErr := responder.Complete(ctx, llm.Request{
		System:     systemPrompt,
		Messages:   []llm.Message{{Role: llm.RoleUser, Content: reviewMessage(card.Slide, card.Kind, card.NoteText)}},
		DeckBase64: deck.base64,
		DeckText:   deck.text,
		MaxTokens:  e.cfg.LLM.MaxTokens,
	})
	if reqErr != nil {
		logger.Warn("regeneration failed",
			logging.Error(reqErr),
			logging.String(logging.FieldEventType, "regenerate_failed"),
			logging.Int64("card_id", cardID),
			logging.String(logging.FieldErrorHint, "fix the cause and run gloss regen again"),
			logging.String(logging.FieldImpact, "card stays failed with the thread cleared"),
		)
		if err := e.store.SetCardFailed(ctx, cardID, reqErr.Error()); err != nil {
			return nil, fmt.Errorf("record card failure: %w", err)
		}
		return nil, reqErr
	}

	if err := e.store.SetCardResult(ctx, cardID, result.Text, result.Model, result.Usage.InputTokens, result.Usage.OutputTokens); err != nil {
		return nil, fmt.Errorf("record card result: %w", err)
	}

	logger.Info("card regenerated",
		logging.String(logging.FieldEventType, "card_regenerated"),
		logging.Int64("card_id", cardID),
		logging.Int64("exchanges_cleared", cleared),
		logging.Int64("input_tokens", result.Usage.InputTokens),
		logging.Int64("output_tokens", result.Usage.OutputTokens),
		logging.Duration("request_duration", time.Since(start)),
	)
	return e.store.GetCard(ctx, cardID)
}

// cardForThread loads a card and its lecture and checks the lecture is in
// reviewed, the only status where threads may grow or cards regenerate.
func (e *Engine) cardForThread(ctx context.Context, cardID int64, op string) (*library.ReviewCard, *library.Lecture, error) {
	card, err := e.store.GetCard(ctx, cardID)
	if err != nil {
		return nil, nil, err
	}
	lecture, err := e.store.GetLecture(ctx, card.LectureID)
	if err != nil {
		return nil, nil, err
	}
	if lecture.Status != library.StatusReviewed {
		return nil, nil, &library.InvalidStateError{
			Op:     op,
			Status: lecture.Status,
			Want:   []library.Status{library.StatusReviewed},
		}
	}
	return card, lecture, nil
}
