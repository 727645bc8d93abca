package llm

import (
	"testing"
	"time"
)

func TestConfigFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{
		"FCE_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY",
		"FCE_OPENAI_API_KEY", "OPENAI_API_KEY",
		"FCE_GEMINI_API_KEY", "GEMINI_API_KEY",
		"FCE_OPENAI_BASE_URL", "FCE_MODEL_RANKING", "FCE_MODEL_QUOTA", "FCE_MODEL_TIMEOUT",
	} {
		t.Setenv(k, "")
	}

	cfg := ConfigFromEnv()
	if cfg.QuotaCeiling != DefaultQuotaCeiling {
		t.Errorf("quota ceiling = %d, want %d", cfg.QuotaCeiling, DefaultQuotaCeiling)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("timeout = %s, want 45s", cfg.Timeout)
	}
	if len(cfg.Ranking) != len(DefaultRanking()) {
		t.Errorf("ranking = %v, want the default ranking", cfg.Ranking)
	}
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("FCE_ANTHROPIC_API_KEY", "prefixed")
	t.Setenv("ANTHROPIC_API_KEY", "conventional")
	t.Setenv("FCE_MODEL_RANKING", "claude-haiku, gpt-4o")
	t.Setenv("FCE_MODEL_QUOTA", "7")
	t.Setenv("FCE_MODEL_TIMEOUT", "10s")

	cfg := ConfigFromEnv()
	if cfg.Anthropic.APIKey != "prefixed" {
		t.Errorf("prefixed key did not win: %q", cfg.Anthropic.APIKey)
	}
	if len(cfg.Ranking) != 2 || cfg.Ranking[0] != "claude-haiku" || cfg.Ranking[1] != "gpt-4o" {
		t.Errorf("unexpected ranking: %v", cfg.Ranking)
	}
	if cfg.QuotaCeiling != 7 {
		t.Errorf("quota ceiling = %d, want 7", cfg.QuotaCeiling)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("timeout = %s, want 10s", cfg.Timeout)
	}
}

func TestConfigFromEnv_ConventionalKeyFallback(t *testing.T) {
	t.Setenv("FCE_GEMINI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "vendor-key")

	cfg := ConfigFromEnv()
	if cfg.Gemini.APIKey != "vendor-key" {
		t.Errorf("conventional key not used: %q", cfg.Gemini.APIKey)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation failure with no API keys")
	}

	cfg.Gemini.APIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}

	cfg.Ranking = []string{"made-up-model"}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation failure for an unknown ranked model")
	}

	cfg.Ranking = nil
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation failure for an empty ranking")
	}
}

func TestHasKeyFor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OpenAI.APIKey = "k"

	if !cfg.HasKeyFor("gpt-4o-mini") {
		t.Error("gpt-4o-mini should resolve to the configured OpenAI key")
	}
	if cfg.HasKeyFor("claude-sonnet") {
		t.Error("claude-sonnet has no key configured")
	}
	if cfg.HasKeyFor("made-up-model") {
		t.Error("unknown models never have keys")
	}
}
