package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gloss/internal/config"
	"gloss/internal/llm"
	_ "gloss/internal/llm/providers" // register vendors
)

func anthropicConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.LLM.Provider = "anthropic"
	cfg.LLM.Anthropic = config.Provider{APIKey: "test-key", Model: "claude-test", BaseURL: baseURL}
	return &cfg
}

func reviewRequest() llm.Request {
	return llm.Request{
		System: "You are a study assistant.",
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: "The student is on slide 3."},
		},
		DeckBase64: "JVBERi0xLjQ=",
		DeckText:   "[Slide 1]\nIntro",
		MaxTokens:  512,
	}
}

func TestAttachmentModes(t *testing.T) {
	require.Equal(t, llm.InlinePDF, llm.GetProvider("anthropic").AttachmentMode())
	require.Equal(t, llm.PageText, llm.GetProvider("openai").AttachmentMode())
	require.Equal(t, llm.InlinePDF, llm.GetProvider("gemini").AttachmentMode())
}

func TestCompleteAnthropic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "claude-test", body["model"])
		assert.Equal(t, float64(512), body["max_tokens"])
		assert.Equal(t, "You are a study assistant.", body["system"])

		messages := body["messages"].([]any)
		require.Len(t, messages, 1)
		blocks := messages[0].(map[string]any)["content"].([]any)
		require.Len(t, blocks, 2)
		doc := blocks[0].(map[string]any)
		assert.Equal(t, "document", doc["type"])
		assert.Equal(t, "application/pdf", doc["source"].(map[string]any)["media_type"])
		assert.Equal(t, "ephemeral", doc["cache_control"].(map[string]any)["type"])
		assert.Equal(t, "text", blocks[1].(map[string]any)["type"])

		resp := map[string]any{
			"model": "claude-test-20250101",
			"content": []map[string]any{
				{"type": "text", "text": "The note is accurate."},
			},
			"usage": map[string]int{"input_tokens": 1500, "output_tokens": 60},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := llm.NewClient(anthropicConfig(t, server.URL), nil)
	require.NoError(t, err)

	result, err := client.Complete(context.Background(), reviewRequest())
	require.NoError(t, err)
	assert.Equal(t, "The note is accurate.", result.Text)
	assert.Equal(t, "claude-test-20250101", result.Model)
	assert.Equal(t, int64(1500), result.Usage.InputTokens)
	assert.Equal(t, int64(60), result.Usage.OutputTokens)
}

func TestCompleteOpenAIWeavesDeckText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		messages := body["messages"].([]any)
		require.Len(t, messages, 2)
		assert.Equal(t, "system", messages[0].(map[string]any)["role"])
		userContent := messages[1].(map[string]any)["content"].(string)
		assert.Contains(t, userContent, "LECTURE CONTENT:\n[Slide 1]\nIntro")
		assert.Contains(t, userContent, "The student is on slide 3.")
		assert.Equal(t, float64(512), body["max_tokens"])

		resp := map[string]any{
			"model": "gpt-test",
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Answer."}},
			},
			"usage": map[string]int{"prompt_tokens": 900, "completion_tokens": 40},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.LLM.Provider = "openai"
	cfg.LLM.OpenAI = config.Provider{APIKey: "test-key", Model: "gpt-test", BaseURL: server.URL}

	client, err := llm.NewClient(&cfg, nil)
	require.NoError(t, err)

	result, err := client.Complete(context.Background(), reviewRequest())
	require.NoError(t, err)
	assert.Equal(t, "Answer.", result.Text)
	assert.Equal(t, int64(900), result.Usage.InputTokens)
	assert.Equal(t, int64(40), result.Usage.OutputTokens)
}

func TestOpenAIOSeriesUsesMaxCompletionTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(512), body["max_completion_tokens"])
		assert.NotContains(t, body, "max_tokens")

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "ok"}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.LLM.Provider = "openai"
	cfg.LLM.OpenAI = config.Provider{APIKey: "test-key", Model: "o3-mini", BaseURL: server.URL}

	client, err := llm.NewClient(&cfg, nil)
	require.NoError(t, err)

	result, err := client.Complete(context.Background(), reviewRequest())
	require.NoError(t, err)
	assert.Equal(t, "o3-mini", result.Model)
}

func TestCompleteGeminiMapsRoles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		contents := body["contents"].([]any)
		require.Len(t, contents, 3)

		first := contents[0].(map[string]any)
		assert.Equal(t, "user", first["role"])
		firstParts := first["parts"].([]any)
		require.Len(t, firstParts, 2)
		inline := firstParts[0].(map[string]any)["inline_data"].(map[string]any)
		assert.Equal(t, "application/pdf", inline["mime_type"])

		assert.Equal(t, "model", contents[1].(map[string]any)["role"])
		assert.Equal(t, "user", contents[2].(map[string]any)["role"])

		require.NotNil(t, body["system_instruction"])

		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "Follow-up answer."}}}},
			},
			"usageMetadata": map[string]int{"promptTokenCount": 2000, "candidatesTokenCount": 90},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.LLM.Provider = "gemini"
	cfg.LLM.Gemini = config.Provider{APIKey: "test-key", Model: "gemini-test", BaseURL: server.URL}

	client, err := llm.NewClient(&cfg, nil)
	require.NoError(t, err)

	req := reviewRequest()
	req.Messages = []llm.Message{
		{Role: llm.RoleUser, Content: "Note context."},
		{Role: llm.RoleAssistant, Content: "Earlier answer."},
		{Role: llm.RoleUser, Content: "New question."},
	}

	result, err := client.Complete(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Follow-up answer.", result.Text)
	assert.Equal(t, "gemini-test", result.Model)
	assert.Equal(t, int64(2000), result.Usage.InputTokens)
}

func TestCompleteDoesNotRetryServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("overloaded"))
	}))
	defer server.Close()

	client, err := llm.NewClient(anthropicConfig(t, server.URL), nil)
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), reviewRequest())
	require.Error(t, err)
	assert.True(t, llm.IsTransient(err))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestCompleteRateLimitIsTransient(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limited"))
	}))
	defer server.Close()

	client, err := llm.NewClient(anthropicConfig(t, server.URL), nil)
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), reviewRequest())
	require.Error(t, err)
	assert.True(t, llm.IsTransient(err))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestCompleteAuthErrorIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid api key"))
	}))
	defer server.Close()

	client, err := llm.NewClient(anthropicConfig(t, server.URL), nil)
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), reviewRequest())
	require.Error(t, err)
	assert.True(t, llm.IsFatal(err))
	assert.Contains(t, err.Error(), "status 401")
}

func TestCompleteEmptyResponseIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]any{
			"model":   "claude-test",
			"content": []map[string]any{{"type": "text", "text": "   "}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client, err := llm.NewClient(anthropicConfig(t, server.URL), nil)
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), reviewRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
	assert.True(t, llm.IsTransient(err))
}

func TestCompleteHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client, err := llm.NewClient(anthropicConfig(t, server.URL), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = client.Complete(ctx, reviewRequest())
	require.Error(t, err)
	assert.True(t, llm.IsTransient(err))
}

func TestNewClientValidatesSettings(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.Provider = "anthropic"
	cfg.LLM.Anthropic = config.Provider{Model: "claude-test"}
	_, err := llm.NewClient(&cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key is not configured")

	cfg.LLM.Anthropic = config.Provider{APIKey: "test-key"}
	_, err = llm.NewClient(&cfg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model is not configured")
}
