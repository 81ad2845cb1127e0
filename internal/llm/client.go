// Package llm sends review and follow-up requests to the configured
// provider. A request is issued exactly once: failures are recorded on the
// card that asked for them, and the user decides whether to regenerate.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"gloss/internal/config"
	"gloss/internal/logging"
)

// maxResponseBytes caps the response body read to guard against a
// misbehaving endpoint streaming unbounded data.
const maxResponseBytes = 10 * 1024 * 1024

// Client drives one vendor adapter with the connection settings from
// configuration. It owns HTTP transport, the per-request timeout, and
// error classification.
type Client struct {
	name       string
	provider   Provider
	settings   config.Provider
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient resolves the active provider from configuration. It fails when
// the provider is unknown or its credential or model is missing, so callers
// can surface configuration problems before any request is dispatched.
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	name, settings := cfg.ActiveProvider()
	provider := GetProvider(name)
	if provider == nil {
		return nil, fmt.Errorf("unknown provider %q (registered: %s)", name, strings.Join(ListProviders(), ", "))
	}
	if strings.TrimSpace(settings.APIKey) == "" {
		return nil, fmt.Errorf("%s api key is not configured", name)
	}
	if strings.TrimSpace(settings.Model) == "" {
		return nil, fmt.Errorf("%s model is not configured", name)
	}

	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Client{
		name:       name,
		provider:   provider,
		settings:   settings,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "llm"),
	}, nil
}

// ProviderName returns the active vendor name.
func (c *Client) ProviderName() string {
	return c.name
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.settings.Model
}

// AttachmentMode reports which deck form requests must carry.
func (c *Client) AttachmentMode() AttachmentMode {
	return c.provider.AttachmentMode()
}

// Complete sends one request and returns the provider's reply. The call is
// made exactly once; the returned error carries a transient or fatal
// classification for display.
func (c *Client) Complete(ctx context.Context, req Request) (*Result, error) {
	if len(req.Messages) == 0 {
		return nil, NewFatalError(errors.New("request has no messages"))
	}

	body, err := c.provider.BuildRequestBody(c.settings.Model, req)
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("build request body: %w", err))
	}

	url := c.provider.BuildURL(c.settings.BaseURL, c.settings.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	c.provider.SetHeaders(httpReq, c.settings.APIKey)

	c.logger.Debug("sending provider request",
		logging.String("provider", c.name),
		logging.String("model", c.settings.Model),
		logging.Int("messages", len(req.Messages)))

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("%s request failed: %w", c.name, err))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("read %s response: %w", c.name, err))
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, classifyHTTPError(c.name, httpResp.StatusCode, respBody)
	}

	result, err := c.provider.ParseResult(respBody)
	if err != nil {
		return nil, NewFatalError(err)
	}
	if strings.TrimSpace(result.Text) == "" {
		return nil, NewTransientError(fmt.Errorf("%s returned an empty response", c.name))
	}
	if result.Model == "" {
		result.Model = c.settings.Model
	}
	return result, nil
}

// classifyHTTPError maps a non-200 status onto transient or fatal. Rate
// limits and server faults are transient; auth and request shape problems
// are fatal.
func classifyHTTPError(name string, statusCode int, body []byte) error {
	bodyStr := strings.TrimSpace(string(body))
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}

	err := fmt.Errorf("%s api error (status %d): %s", name, statusCode, bodyStr)

	switch {
	case statusCode == http.StatusTooManyRequests:
		return NewTransientError(err)
	case statusCode >= 500:
		return NewTransientError(err)
	default:
		return NewFatalError(err)
	}
}
