package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenRouterProvider(t *testing.T) {
	t.Run("model passes through", func(t *testing.T) {
		p, err := NewOpenRouterProvider(OpenRouterConfig{
			APIKey: "sk-or-test",
			Model:  "anthropic/claude-3-haiku",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "anthropic/claude-3-haiku" {
			t.Errorf("model = %q, want %q", p.ModelID(), "anthropic/claude-3-haiku")
		}
	})

	t.Run("empty API key", func(t *testing.T) {
		_, err := NewOpenRouterProvider(OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		})
		if err == nil {
			t.Fatal("expected error for empty API key")
		}
	})
}

func TestOpenRouterProvider_SendsAttributionAndJSONMode(t *testing.T) {
	var gotTitle, gotReferer, gotAuth string
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("X-Title")
		gotReferer = r.Header.Get("HTTP-Referer")
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":    "gen-1",
			"model": "google/gemini-2.0-flash-exp",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": `{"timeComplexity":"O(n)"}`},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19},
		})
	}))
	t.Cleanup(server.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-or-test",
		Model:   "google/gemini-2.0-flash-exp",
		BaseURL: server.URL + "/v1",
		Referer: "https://codecoach.example",
	})
	if err != nil {
		t.Fatalf("NewOpenRouterProvider: %v", err)
	}

	resp, err := p.Generate(context.Background(), Request{
		Messages:    UserPrompt("Analyze the complexity of this code."),
		MaxTokens:   256,
		Temperature: 0.3,
		JSONMode:    true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if resp.Text != `{"timeComplexity":"O(n)"}` {
		t.Errorf("text = %q", resp.Text)
	}
	if resp.Usage.TotalTokens != 19 {
		t.Errorf("total tokens = %d, want 19", resp.Usage.TotalTokens)
	}
	if gotTitle != "codecoach" {
		t.Errorf("X-Title = %q, want %q", gotTitle, "codecoach")
	}
	if gotReferer != "https://codecoach.example" {
		t.Errorf("HTTP-Referer = %q", gotReferer)
	}
	if gotAuth != "Bearer sk-or-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	rf, _ := gotBody["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Errorf("response_format = %v, want json_object", gotBody["response_format"])
	}
}

func TestOpenRouterProvider_NoRefererByDefault(t *testing.T) {
	var sawReferer bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawReferer = r.Header["Http-Referer"]
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message":       map[string]any{"role": "assistant", "content": "{}"},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(server.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{
		APIKey:  "sk-or-test",
		Model:   "meta-llama/llama-3-8b",
		BaseURL: server.URL + "/v1",
	})
	if err != nil {
		t.Fatalf("NewOpenRouterProvider: %v", err)
	}
	if _, err := p.Generate(context.Background(), Request{Messages: UserPrompt("hi")}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if sawReferer {
		t.Error("HTTP-Referer sent without a configured referer")
	}
}
