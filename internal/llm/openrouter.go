package llm

import (
	"fmt"
	"net/http"
)

const (
	defaultOpenRouterBaseURL  = "https://openrouter.ai/api/v1"
	defaultOpenRouterAppTitle = "codecoach"
)

// OpenRouterProvider talks to OpenRouter through its OpenAI-compatible API.
// Model IDs are passed through unchanged.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
// Every request carries the app attribution headers OpenRouter uses for
// its rankings.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	title := cfg.AppTitle
	if title == "" {
		title = defaultOpenRouterAppTitle
	}

	headers := http.Header{}
	headers.Set("X-Title", title)
	if cfg.Referer != "" {
		headers.Set("HTTP-Referer", cfg.Referer)
	}

	inner := newOpenAIProvider(OpenAIConfig{
		APIKey:  cfg.APIKey,
		BaseURL: baseURL,
		Timeout: cfg.Timeout,
	}, cfg.Model, headers)

	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

// headerTransport adds fixed headers to every outgoing request.
type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, vs := range t.headers {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
	return t.base.RoundTrip(req)
}
