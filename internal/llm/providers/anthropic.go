// Package providers implements the vendor adapters behind the llm registry.
package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gloss/internal/llm"
)

// anthropicVersion is the API version to use.
const anthropicVersion = "2023-06-01"

// Anthropic implements the Messages API with the deck attached as an inline
// PDF document block.
type Anthropic struct{}

func init() {
	llm.RegisterProvider(&Anthropic{})
}

func (a *Anthropic) Name() string {
	return "anthropic"
}

func (a *Anthropic) AttachmentMode() llm.AttachmentMode {
	return llm.InlinePDF
}

func (a *Anthropic) BuildURL(baseURL, _ string) string {
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	return strings.TrimSuffix(baseURL, "/") + "/v1/messages"
}

func (a *Anthropic) SetHeaders(req *http.Request, apiKey string) {
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

// anthropicMessage content is either a plain string or a block list; only
// the first user turn carries blocks.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type anthropicBlock struct {
	Type         string           `json:"type"`
	Text         string           `json:"text,omitempty"`
	Source       *anthropicSource `json:"source,omitempty"`
	CacheControl *anthropicCache  `json:"cache_control,omitempty"`
}

type anthropicSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicCache struct {
	Type string `json:"type"`
}

// BuildRequestBody attaches the deck to the first user turn as a document
// block with ephemeral cache control, so a follow-up thread reuses the
// provider-side cache instead of re-uploading the PDF cost.
func (a *Anthropic) BuildRequestBody(model string, r llm.Request) ([]byte, error) {
	if r.DeckBase64 == "" {
		return nil, fmt.Errorf("anthropic request is missing the inline deck")
	}

	messages := make([]anthropicMessage, 0, len(r.Messages))
	attached := false
	for _, msg := range r.Messages {
		if !attached && msg.Role == llm.RoleUser {
			messages = append(messages, anthropicMessage{
				Role: msg.Role,
				Content: []anthropicBlock{
					{
						Type: "document",
						Source: &anthropicSource{
							Type:      "base64",
							MediaType: "application/pdf",
							Data:      r.DeckBase64,
						},
						CacheControl: &anthropicCache{Type: "ephemeral"},
					},
					{Type: "text", Text: msg.Content},
				},
			})
			attached = true
			continue
		}
		messages = append(messages, anthropicMessage{Role: msg.Role, Content: msg.Content})
	}

	maxTokens := r.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	return json.Marshal(anthropicRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    r.System,
		Messages:  messages,
	})
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
	Usage struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
}

func (a *Anthropic) ParseResult(body []byte) (*llm.Result, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse anthropic response: %w", err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return &llm.Result{
		Text:  text.String(),
		Model: resp.Model,
		Usage: llm.Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}, nil
}
