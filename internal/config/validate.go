package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

var knownProviders = map[string]bool{
	"anthropic": true,
	"openai":    true,
	"gemini":    true,
}

// Validate ensures the configuration is usable. API keys are deliberately not
// required here: note-taking works without one, and review start checks the
// active provider's credential as a precondition.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateReview(); err != nil {
		return err
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLLM() error {
	if !knownProviders[c.LLM.Provider] {
		return fmt.Errorf("llm.provider %q is not one of anthropic, openai, gemini", c.LLM.Provider)
	}
	if err := ensurePositive([]positiveValue{
		{"llm.timeout_seconds", c.LLM.TimeoutSeconds},
		{"llm.max_tokens", c.LLM.MaxTokens},
		{"llm.followup_max_tokens", c.LLM.FollowUpMaxTokens},
	}); err != nil {
		return err
	}
	for key, p := range map[string]Provider{
		"llm.anthropic": c.LLM.Anthropic,
		"llm.openai":    c.LLM.OpenAI,
		"llm.gemini":    c.LLM.Gemini,
	} {
		if strings.TrimSpace(p.Model) == "" {
			return fmt.Errorf("%s.model must be set", key)
		}
		if strings.TrimSpace(p.BaseURL) == "" {
			return fmt.Errorf("%s.base_url must be set", key)
		}
	}
	return nil
}

func (c *Config) validateReview() error {
	if err := ensurePositive([]positiveValue{
		{"review.parallel_requests", c.Review.ParallelRequests},
		{"review.queue_poll_interval", c.Review.QueuePollInterval},
		{"review.error_retry_interval", c.Review.ErrorRetryInterval},
		{"review.heartbeat_interval", c.Review.HeartbeatInterval},
		{"review.heartbeat_timeout", c.Review.HeartbeatTimeout},
	}); err != nil {
		return err
	}
	if c.Review.HeartbeatTimeout <= c.Review.HeartbeatInterval {
		return errors.New("review.heartbeat_timeout must be greater than review.heartbeat_interval")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if _, _, err := net.SplitHostPort(c.API.Bind); err != nil {
		return fmt.Errorf("api.bind %q is not a host:port address: %w", c.API.Bind, err)
	}
	return nil
}

type positiveValue struct {
	key   string
	value int
}

func ensurePositive(values []positiveValue) error {
	for _, v := range values {
		if v.value <= 0 {
			return fmt.Errorf("%s must be positive", v.key)
		}
	}
	return nil
}
