// Package config loads codecoach settings from defaults, an optional
// config file and CODECOACH_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/codecoach/internal/llm"
	"github.com/abhisek/codecoach/internal/logging"
	"github.com/abhisek/codecoach/internal/pipeline"
)

// EnvPrefix prefixes every environment override: llm.openai.api_key is
// read from CODECOACH_LLM_OPENAI_API_KEY.
const EnvPrefix = "CODECOACH"

// Config is the complete application configuration.
type Config struct {
	LLM      llm.Config      `mapstructure:"llm"`
	Pipeline pipeline.Config `mapstructure:"pipeline"`
	Server   ServerConfig    `mapstructure:"server"`
	Log      LogConfig       `mapstructure:"log"`
	DB       DBConfig        `mapstructure:"db"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	AllowOrigins   []string      `mapstructure:"allow_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DBConfig locates the event store. An empty path means
// store.DefaultDBPath.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

func setDefaults(v *viper.Viper) {
	l := llm.DefaultConfig()
	v.SetDefault("llm.provider", l.Provider)
	v.SetDefault("llm.timeout", l.Timeout)
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.model", l.Gemini.Model)
	v.SetDefault("llm.gemini.base_url", "")
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.model", l.OpenAI.Model)
	v.SetDefault("llm.openai.base_url", "")
	v.SetDefault("llm.anthropic.api_key", "")
	v.SetDefault("llm.anthropic.model", l.Anthropic.Model)
	v.SetDefault("llm.anthropic.base_url", "")
	v.SetDefault("llm.openrouter.api_key", "")
	v.SetDefault("llm.openrouter.model", l.OpenRouter.Model)
	v.SetDefault("llm.openrouter.base_url", "")
	v.SetDefault("llm.openrouter.app_title", "")
	v.SetDefault("llm.openrouter.referer", "")

	p := pipeline.DefaultConfig()
	v.SetDefault("pipeline.api_key", "")
	v.SetDefault("pipeline.model_name", "")
	v.SetDefault("pipeline.max_retries", p.MaxRetries)
	v.SetDefault("pipeline.backoff_base", p.BackoffBase)
	v.SetDefault("pipeline.max_backoff", p.MaxBackoff)
	v.SetDefault("pipeline.jitter", p.Jitter)
	v.SetDefault("pipeline.attempt_timeout", p.AttemptTimeout)
	v.SetDefault("pipeline.repair_json", p.RepairJSON)
	v.SetDefault("pipeline.json_mode", p.JSONMode)
	v.SetDefault("pipeline.cache_size", p.CacheSize)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("server.request_timeout", 90*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("db.path", "")
}

// Load reads the configuration. path names an optional YAML, JSON or TOML
// file; an empty path skips the file layer. When the selected provider has
// no API key anywhere in the layers, the standard provider key variables
// (GEMINI_API_KEY, OPENAI_API_KEY, ...) are probed as a fallback.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if !cfg.LLM.HasAPIKey() && cfg.Pipeline.APIKey == "" {
		if found, ok := llm.DiscoverConfig(); ok {
			cfg.LLM.Provider = found.Provider
			cfg.LLM = cfg.LLM.WithCredentials(apiKeyOf(found), "")
		}
	}

	return &cfg, nil
}

// apiKeyOf returns the key of the provider c selects.
func apiKeyOf(c llm.Config) string {
	switch c.Provider {
	case "gemini":
		return c.Gemini.APIKey
	case "openai":
		return c.OpenAI.APIKey
	case "anthropic":
		return c.Anthropic.APIKey
	case "openrouter":
		return c.OpenRouter.APIKey
	}
	return ""
}

// EffectiveLLM returns the provider configuration with the pipeline's
// credential overrides applied.
func (c *Config) EffectiveLLM() llm.Config {
	return c.LLM.WithCredentials(c.Pipeline.APIKey, c.Pipeline.ModelName)
}

// Validate checks the settings needed to run model-backed commands.
func (c *Config) Validate() error {
	var errs []error
	if err := c.EffectiveLLM().Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Pipeline.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Server.RequestTimeout < 0 {
		errs = append(errs, errors.New("server.request_timeout must not be negative"))
	}
	return errors.Join(errs...)
}
