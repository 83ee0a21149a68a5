package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "gemini", "openai", "anthropic", "openrouter", "mock"
	Provider string `mapstructure:"provider"`

	Gemini     GeminiConfig     `mapstructure:"gemini"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	OpenRouter OpenRouterConfig `mapstructure:"openrouter"`

	// Timeout bounds a single provider call and is handed to every
	// provider config by WithTimeout. Zero disables it. Default: 60s.
	Timeout time.Duration `mapstructure:"timeout"`
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`    // Default: "gemini-flash"
	BaseURL string `mapstructure:"base_url"` // Optional. Override for proxies.

	Timeout time.Duration `mapstructure:"-"` // Set from Config.Timeout.
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `mapstructure:"base_url"` // Optional. Override for compatible APIs.

	Timeout time.Duration `mapstructure:"-"` // Set from Config.Timeout.
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`    // Default: "claude-haiku"
	BaseURL string `mapstructure:"base_url"` // Optional. Override for proxies.

	Timeout time.Duration `mapstructure:"-"` // Set from Config.Timeout.
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`    // Default: "google/gemini-2.0-flash-exp"
	BaseURL string `mapstructure:"base_url"` // Default: "https://openrouter.ai/api/v1"

	// AppTitle and Referer are sent as X-Title and HTTP-Referer.
	AppTitle string `mapstructure:"app_title"` // Default: "codecoach"
	Referer  string `mapstructure:"referer"`

	Timeout time.Duration `mapstructure:"-"` // Set from Config.Timeout.
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Timeout: 60 * time.Second,
	}
}

// DiscoverConfig probes standard API key env vars in priority order
// (Gemini → OpenAI → Anthropic → OpenRouter) and returns a Config for the
// first provider whose key is found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// WithCredentials returns a copy of c whose selected provider uses apiKey
// and model. Empty arguments leave the existing values untouched.
func (c Config) WithCredentials(apiKey, model string) Config {
	set := func(key, mdl *string) {
		if apiKey != "" {
			*key = apiKey
		}
		if model != "" {
			*mdl = model
		}
	}

	switch c.Provider {
	case "gemini":
		set(&c.Gemini.APIKey, &c.Gemini.Model)
	case "openai":
		set(&c.OpenAI.APIKey, &c.OpenAI.Model)
	case "anthropic":
		set(&c.Anthropic.APIKey, &c.Anthropic.Model)
	case "openrouter":
		set(&c.OpenRouter.APIKey, &c.OpenRouter.Model)
	}
	return c
}

// HasAPIKey reports whether the selected provider has a key set.
func (c Config) HasAPIKey() bool {
	switch c.Provider {
	case "gemini":
		return c.Gemini.APIKey != ""
	case "openai":
		return c.OpenAI.APIKey != ""
	case "anthropic":
		return c.Anthropic.APIKey != ""
	case "openrouter":
		return c.OpenRouter.APIKey != ""
	case "mock":
		return true
	}
	return false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("CODECOACH_LLM_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("CODECOACH_LLM_OPENAI_API_KEY is required for the openai provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("CODECOACH_LLM_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("CODECOACH_LLM_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}

// WithTimeout returns a copy of c with Timeout applied to every provider
// config.
func (c Config) WithTimeout() Config {
	c.Gemini.Timeout = c.Timeout
	c.OpenAI.Timeout = c.Timeout
	c.Anthropic.Timeout = c.Timeout
	c.OpenRouter.Timeout = c.Timeout
	return c
}
