package providers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gloss/internal/llm"
)

// Gemini implements the generateContent API with the deck attached as an
// inline_data PDF part.
type Gemini struct{}

func init() {
	llm.RegisterProvider(&Gemini{})
}

func (g *Gemini) Name() string {
	return "gemini"
}

func (g *Gemini) AttachmentMode() llm.AttachmentMode {
	return llm.InlinePDF
}

func (g *Gemini) BuildURL(baseURL, model string) string {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	return strings.TrimSuffix(baseURL, "/") + "/v1beta/models/" + model + ":generateContent"
}

func (g *Gemini) SetHeaders(req *http.Request, apiKey string) {
	req.Header.Set("x-goog-api-key", apiKey)
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
	GenerationConfig  geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens"`
}

// geminiRole maps thread roles onto Gemini's user/model vocabulary.
func geminiRole(role string) string {
	if role == llm.RoleAssistant {
		return "model"
	}
	return "user"
}

func (g *Gemini) BuildRequestBody(model string, r llm.Request) ([]byte, error) {
	if r.DeckBase64 == "" {
		return nil, fmt.Errorf("gemini request is missing the inline deck")
	}

	contents := make([]geminiContent, 0, len(r.Messages))
	attached := false
	for _, msg := range r.Messages {
		parts := make([]geminiPart, 0, 2)
		if !attached && msg.Role == llm.RoleUser {
			parts = append(parts, geminiPart{
				InlineData: &geminiInlineData{
					MimeType: "application/pdf",
					Data:     r.DeckBase64,
				},
			})
			attached = true
		}
		parts = append(parts, geminiPart{Text: msg.Content})
		contents = append(contents, geminiContent{Role: geminiRole(msg.Role), Parts: parts})
	}

	maxTokens := r.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	req := geminiRequest{
		Contents:         contents,
		GenerationConfig: geminiGenConfig{MaxOutputTokens: maxTokens},
	}
	if r.System != "" {
		req.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: r.System}}}
	}
	return json.Marshal(req)
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int64 `json:"promptTokenCount"`
		CandidatesTokenCount int64 `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

func (g *Gemini) ParseResult(body []byte) (*llm.Result, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("gemini response contained no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	return &llm.Result{
		Text: text.String(),
		Usage: llm.Usage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		},
	}, nil
}
