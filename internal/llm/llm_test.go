package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fuel-planner/internal/config"
	"fuel-planner/internal/shared"
)

func TestNewMissingKey(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		want     string
	}{
		{"Gemini", config.ProviderGemini, "configuration error: GEMINI_API_KEY environment variable not set"},
		{"Groq", config.ProviderGroq, "configuration error: GROQ_API_KEY environment variable not set"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), &config.Config{LLMProvider: tt.provider})
			if !errors.Is(err, shared.ErrConfiguration) {
				t.Fatalf("Expected ErrConfiguration, got %v", err)
			}
			if err.Error() != tt.want {
				t.Errorf("Expected error '%s', got '%s'", tt.want, err.Error())
			}
		})
	}
}

func TestNewGroq(t *testing.T) {
	gen, err := New(context.Background(), &config.Config{LLMProvider: config.ProviderGroq, GroqAPIKey: "k", GroqModel: "m"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ProviderName(gen) != config.ProviderGroq {
		t.Errorf("Expected groq provider, got %s", ProviderName(gen))
	}
}

func TestGroqGenerateContent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer groq_key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var req groqRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "plan my week" {
			t.Errorf("Unexpected messages %+v", req.Messages)
		}
		w.Write([]byte(`{"model":"llama-test","choices":[{"message":{"role":"assistant","content":"[]"}}],
			"usage":{"prompt_tokens":120,"completion_tokens":30,"total_tokens":150}}`))
	}))
	defer ts.Close()

	c := NewGroqClient(&config.Config{GroqAPIKey: "groq_key", GroqModel: "llama-3.3-70b-versatile"})
	c.url = ts.URL

	resp, err := c.GenerateContent(context.Background(), Prompt{System: "rules", User: "plan my week"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if resp.Content != "[]" {
		t.Errorf("Expected content '[]', got '%s'", resp.Content)
	}
	want := shared.TokenUsage{PromptTokens: 120, CompletionTokens: 30, TotalTokens: 150, Model: "llama-test"}
	if resp.Usage != want {
		t.Errorf("Expected usage %+v, got %+v", want, resp.Usage)
	}
}

func TestGroqErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer ts.Close()

	c := NewGroqClient(&config.Config{GroqAPIKey: "groq_key"})
	c.url = ts.URL
	if _, err := c.GenerateContent(context.Background(), Prompt{User: "x"}); err == nil {
		t.Fatal("Expected an error for status 429, got nil")
	}
}
