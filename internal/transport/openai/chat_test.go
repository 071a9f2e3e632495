package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wayfarer/internal/domain"
)

// openaiChatRequest mirrors the OpenAI-compatible API chat request.
type openaiChatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float32 `json:"temperature"`
}

// openaiChatResponse mirrors the OpenAI-compatible API chat response.
type openaiChatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func chatAnswer(content string, promptTokens, completionTokens int) openaiChatResponse {
	resp := openaiChatResponse{
		ID:     "chatcmpl-test",
		Object: "chat.completion",
	}
	resp.Choices = append(resp.Choices, struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	}{
		Index:        0,
		FinishReason: "stop",
	})
	resp.Choices[0].Message.Role = "assistant"
	resp.Choices[0].Message.Content = content
	resp.Usage.PromptTokens = promptTokens
	resp.Usage.CompletionTokens = completionTokens
	resp.Usage.TotalTokens = promptTokens + completionTokens
	return resp
}

func TestCompleter_Complete(t *testing.T) {
	var gotReq openaiChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatAnswer("The Eiffel Tower is open until midnight.", 50, 12))
	}))
	defer server.Close()

	comp := NewCompleter(&ChatConfig{
		APIKey:       "test-key",
		BaseURL:      server.URL,
		Model:        "test-model",
		SystemPrompt: "You are a helpful assistant.",
		MaxTokens:    512,
		Temperature:  0.7,
		Logger:       zap.NewNop(),
	})

	result, err := comp.Complete(context.Background(), "When does the Eiffel Tower close?")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if result.Text != "The Eiffel Tower is open until midnight." {
		t.Errorf("unexpected answer text: %q", result.Text)
	}
	if result.PromptTokens != 50 {
		t.Errorf("PromptTokens = %d, expected 50", result.PromptTokens)
	}
	if result.CompletionTokens != 12 {
		t.Errorf("CompletionTokens = %d, expected 12", result.CompletionTokens)
	}
	if result.TotalTokens != 62 {
		t.Errorf("TotalTokens = %d, expected 62", result.TotalTokens)
	}

	if gotReq.Model != "test-model" {
		t.Errorf("request model = %q, expected test-model", gotReq.Model)
	}
	if len(gotReq.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[0].Content != "You are a helpful assistant." {
		t.Errorf("unexpected system message: %+v", gotReq.Messages[0])
	}
	if gotReq.Messages[1].Role != "user" || gotReq.Messages[1].Content != "When does the Eiffel Tower close?" {
		t.Errorf("unexpected user message: %+v", gotReq.Messages[1])
	}
	if gotReq.MaxTokens != 512 {
		t.Errorf("request max_tokens = %d, expected 512", gotReq.MaxTokens)
	}
}

func TestCompleter_NoSystemPrompt(t *testing.T) {
	var gotReq openaiChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatAnswer("ok", 5, 1))
	}))
	defer server.Close()

	comp := NewCompleter(&ChatConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	if _, err := comp.Complete(context.Background(), "hello"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if len(gotReq.Messages) != 1 {
		t.Fatalf("expected 1 message without system prompt, got %d", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "user" {
		t.Errorf("expected user message, got role %q", gotReq.Messages[0].Role)
	}
}

func TestCompleter_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "invalid api key",
				"type":    "invalid_request_error",
			},
		})
	}))
	defer server.Close()

	comp := NewCompleter(&ChatConfig{
		APIKey:  "bad-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := comp.Complete(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !errors.Is(err, domain.ErrLLMAuth) {
		t.Errorf("expected ErrLLMAuth, got %v", err)
	}
}

func TestCompleter_ForbiddenMapsToAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "access denied",
				"type":    "invalid_request_error",
			},
		})
	}))
	defer server.Close()

	comp := NewCompleter(&ChatConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := comp.Complete(context.Background(), "hello")
	if !errors.Is(err, domain.ErrLLMAuth) {
		t.Errorf("expected ErrLLMAuth for 403, got %v", err)
	}
}

func TestCompleter_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "upstream overloaded",
				"type":    "server_error",
			},
		})
	}))
	defer server.Close()

	comp := NewCompleter(&ChatConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := comp.Complete(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
	if !errors.Is(err, domain.ErrLLMUnavailable) {
		t.Errorf("expected ErrLLMUnavailable, got %v", err)
	}
}

func TestCompleter_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := openaiChatResponse{ID: "chatcmpl-test", Object: "chat.completion"}
		resp.Usage.TotalTokens = 10
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	comp := NewCompleter(&ChatConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := comp.Complete(context.Background(), "hello")
	if !errors.Is(err, domain.ErrLLMResponse) {
		t.Errorf("expected ErrLLMResponse for empty choices, got %v", err)
	}
}

func TestCompleter_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatAnswer("", 10, 0))
	}))
	defer server.Close()

	comp := NewCompleter(&ChatConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
		Logger:  zap.NewNop(),
	})

	_, err := comp.Complete(context.Background(), "hello")
	if !errors.Is(err, domain.ErrLLMResponse) {
		t.Errorf("expected ErrLLMResponse for empty content, got %v", err)
	}
}
