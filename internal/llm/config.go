package llm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds configuration for every model vendor plus the gateway.
type Config struct {
	Anthropic AnthropicConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig

	// Ranking is the fallback order of model names, weakest and cheapest
	// first. The gateway tries a preferred model (when given) before
	// falling back through this list.
	Ranking []string

	// QuotaCeiling is the soft per-model daily call limit. A model at or
	// above the ceiling is skipped during fallback.
	QuotaCeiling int

	// Timeout bounds a single model call. Expiry is treated as a
	// transient failure, like a rate limit.
	Timeout time.Duration

	// MaxTokens is the token budget for the model response.
	MaxTokens int

	// Temperature controls model output randomness (0.0-1.0).
	Temperature float64
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // Optional. Override for OpenAI-compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
}

// DefaultQuotaCeiling is the per-model daily call ceiling.
const DefaultQuotaCeiling = 19

// DefaultRanking orders the known models cheapest first.
func DefaultRanking() []string {
	return []string{"gemini-flash", "gpt-4o-mini", "claude-haiku", "gpt-4o", "claude-sonnet"}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Ranking:      DefaultRanking(),
		QuotaCeiling: DefaultQuotaCeiling,
		Timeout:      45 * time.Second,
		MaxTokens:    1024,
		Temperature:  0.8,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values. FCE_-prefixed variables win over the
// vendors' conventional key names.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.Anthropic.APIKey = firstEnv("FCE_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	cfg.OpenAI.APIKey = firstEnv("FCE_OPENAI_API_KEY", "OPENAI_API_KEY")
	cfg.OpenAI.BaseURL = os.Getenv("FCE_OPENAI_BASE_URL")
	cfg.Gemini.APIKey = firstEnv("FCE_GEMINI_API_KEY", "GEMINI_API_KEY")

	if r := os.Getenv("FCE_MODEL_RANKING"); r != "" {
		var ranking []string
		for _, m := range strings.Split(r, ",") {
			if m = strings.TrimSpace(m); m != "" {
				ranking = append(ranking, m)
			}
		}
		if len(ranking) > 0 {
			cfg.Ranking = ranking
		}
	}

	if c := os.Getenv("FCE_MODEL_QUOTA"); c != "" {
		if n, err := strconv.Atoi(c); err == nil && n > 0 {
			cfg.QuotaCeiling = n
		}
	}

	if t := os.Getenv("FCE_MODEL_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	return cfg
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// modelVendors maps known model names to the vendor that serves them.
var modelVendors = map[string]string{
	"claude-sonnet": "anthropic",
	"claude-haiku":  "anthropic",
	"gpt-4o":        "openai",
	"gpt-4o-mini":   "openai",
	"gemini-flash":  "gemini",
	"gemini-pro":    "gemini",
}

// vendorFor returns the vendor serving the given model name.
func vendorFor(model string) (string, bool) {
	v, ok := modelVendors[model]
	return v, ok
}

// Validate checks that at least one ranked model has a usable API key.
func (c Config) Validate() error {
	if len(c.Ranking) == 0 {
		return fmt.Errorf("model ranking is empty")
	}
	for _, m := range c.Ranking {
		vendor, ok := vendorFor(m)
		if !ok {
			return fmt.Errorf("unknown model %q in ranking", m)
		}
		if c.keyFor(vendor) != "" {
			return nil
		}
	}
	return fmt.Errorf("no API key configured for any ranked model; set FCE_GEMINI_API_KEY, FCE_OPENAI_API_KEY, or FCE_ANTHROPIC_API_KEY")
}

// HasKeyFor reports whether the vendor serving the named model has an API
// key configured.
func (c Config) HasKeyFor(model string) bool {
	vendor, ok := vendorFor(model)
	return ok && c.keyFor(vendor) != ""
}

func (c Config) keyFor(vendor string) string {
	switch vendor {
	case "anthropic":
		return c.Anthropic.APIKey
	case "openai":
		return c.OpenAI.APIKey
	case "gemini":
		return c.Gemini.APIKey
	}
	return ""
}
