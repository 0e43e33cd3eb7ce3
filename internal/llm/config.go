package llm

import (
	"fmt"
	"maps"
	"os"
	"strings"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Providers lists the provider names that take credentials.
var Providers = []string{ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter}

// Config selects and configures the provider used to draft questions.
type Config struct {
	// Provider is one of the Provider* names.
	Provider string

	// Credentials holds one entry per provider name.
	Credentials map[string]ProviderConfig

	Retry RetryConfig

	// Timeout bounds a single generate call, retries included.
	Timeout time.Duration
}

// ProviderConfig is the connection setting of one provider. Model accepts
// a friendly alias (e.g. "claude-haiku") or a concrete model id.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultModels is the model used per provider when none is configured.
var DefaultModels = map[string]string{
	ProviderAnthropic:  "claude-haiku",
	ProviderOpenAI:     "gpt-4o-mini",
	ProviderGemini:     "gemini-flash",
	ProviderOpenRouter: "google/gemini-2.0-flash-exp",
}

// modelAliases maps the friendly names accepted in configuration to
// concrete model ids, per provider.
var modelAliases = map[string]map[string]string{
	ProviderAnthropic: {
		"claude-haiku":  "claude-haiku-4-5",
		"claude-sonnet": "claude-sonnet-4-5",
		"claude-opus":   "claude-opus-4-1",
	},
	ProviderOpenAI: {
		"gpt-mini": "gpt-4o-mini",
		"gpt":      "gpt-4o",
	},
	ProviderGemini: {
		"gemini-flash": "gemini-2.5-flash",
		"gemini-pro":   "gemini-2.5-pro",
	},
}

// ResolveModel maps an alias of provider to its model id. Names that are
// not aliases are returned unchanged.
func ResolveModel(provider, name string) string {
	if id, ok := modelAliases[provider][name]; ok {
		return id
	}
	return name
}

// DefaultConfig returns a Config with default models and retry policy and
// no credentials.
func DefaultConfig() Config {
	creds := make(map[string]ProviderConfig, len(DefaultModels))
	for name, model := range DefaultModels {
		creds[name] = ProviderConfig{Model: model}
	}
	return Config{
		Provider:    ProviderAnthropic,
		Credentials: creds,
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 60 * time.Second,
	}
}

// Selected returns the settings of the configured provider.
func (c Config) Selected() ProviderConfig {
	return c.Credentials[c.Provider]
}

// vendorKeys are the API key variables the vendors' own tools read.
var vendorKeys = []struct {
	provider string
	env      string
}{
	{ProviderGemini, "GEMINI_API_KEY"},
	{ProviderOpenAI, "OPENAI_API_KEY"},
	{ProviderAnthropic, "ANTHROPIC_API_KEY"},
	{ProviderOpenRouter, "OPENROUTER_API_KEY"},
}

// Discover fills in a provider from the vendors' standard API key
// variables when cfg has no key for its selected provider. The first key
// found wins. It reports whether cfg ends up with usable credentials.
func Discover(cfg Config) (Config, bool) {
	if cfg.Provider == ProviderMock || cfg.Selected().APIKey != "" {
		return cfg, true
	}
	for _, vk := range vendorKeys {
		k := os.Getenv(vk.env)
		if k == "" {
			continue
		}
		creds := maps.Clone(cfg.Credentials)
		if creds == nil {
			creds = map[string]ProviderConfig{}
		}
		pc := creds[vk.provider]
		pc.APIKey = k
		creds[vk.provider] = pc
		cfg.Credentials = creds
		cfg.Provider = vk.provider
		return cfg, true
	}
	return cfg, false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter:
		if c.Selected().APIKey == "" {
			return fmt.Errorf("%w: llm.%s.api_key (QBANK_LLM_%s_API_KEY) is required for the %s provider",
				ErrNotConfigured, c.Provider, strings.ToUpper(c.Provider), c.Provider)
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
