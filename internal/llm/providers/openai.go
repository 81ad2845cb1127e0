package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gloss/internal/llm"
)

// OpenAI implements the Chat Completions API. The API takes no PDF input,
// so the deck travels as extracted per-page text inside the first user
// message.
type OpenAI struct{}

func init() {
	llm.RegisterProvider(&OpenAI{})
}

// oSeriesModels take max_completion_tokens instead of max_tokens.
var oSeriesModels = []string{"o1", "o1-mini", "o1-preview", "o3", "o3-mini", "o3-pro"}

func usesMaxCompletionTokens(model string) bool {
	for _, prefix := range oSeriesModels {
		if model == prefix || strings.HasPrefix(model, prefix+"-") {
			return true
		}
	}
	return false
}

func (o *OpenAI) Name() string {
	return "openai"
}

func (o *OpenAI) AttachmentMode() llm.AttachmentMode {
	return llm.PageText
}

func (o *OpenAI) BuildURL(baseURL, _ string) string {
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	return strings.TrimSuffix(baseURL, "/") + "/v1/chat/completions"
}

func (o *OpenAI) SetHeaders(req *http.Request, apiKey string) {
	req.Header.Set("Authorization", "Bearer "+apiKey)
}

type openAIRequest struct {
	Model               string          `json:"model"`
	Messages            []openAIMessage `json:"messages"`
	MaxTokens           int             `json:"max_tokens,omitempty"`
	MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (o *OpenAI) BuildRequestBody(model string, r llm.Request) ([]byte, error) {
	if r.DeckText == "" {
		return nil, fmt.Errorf("openai request is missing the deck text")
	}

	messages := make([]openAIMessage, 0, len(r.Messages)+1)
	if r.System != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: r.System})
	}

	attached := false
	for _, msg := range r.Messages {
		content := msg.Content
		if !attached && msg.Role == llm.RoleUser {
			content = "LECTURE CONTENT:\n" + r.DeckText + "\n\n" + content
			attached = true
		}
		messages = append(messages, openAIMessage{Role: msg.Role, Content: content})
	}

	maxTokens := r.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	req := openAIRequest{Model: model, Messages: messages}
	if usesMaxCompletionTokens(model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}
	return json.Marshal(req)
}

type openAIResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
}

func (o *OpenAI) ParseResult(body []byte) (*llm.Result, error) {
	var resp openAIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse openai response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai response contained no choices")
	}

	return &llm.Result{
		Text:  resp.Choices[0].Message.Content,
		Model: resp.Model,
		Usage: llm.Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}
