package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"fcegen/internal/store"
)

// BuildGateway constructs a Gateway from configuration. Each ranked model
// whose vendor has an API key becomes a candidate, wrapped with logging
// middleware; models without a usable key are skipped with a warning.
func BuildGateway(ctx context.Context, cfg Config, log *zap.Logger, events store.EventRepo, opts ...GatewayOption) (*Gateway, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var candidates []Candidate
	for _, model := range cfg.Ranking {
		vendor, ok := vendorFor(model)
		if !ok {
			return nil, fmt.Errorf("unknown model %q in ranking", model)
		}

		if cfg.keyFor(vendor) == "" {
			log.Warn("skipping model: no API key for vendor",
				zap.String("model", model), zap.String("vendor", vendor))
			continue
		}

		base, err := newProvider(ctx, cfg, vendor, model)
		if err != nil {
			return nil, fmt.Errorf("initializing %s model %q: %w", vendor, model, err)
		}

		candidates = append(candidates, Candidate{
			Name:     model,
			Provider: WithLogging(base, log, events),
		})
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("no usable models: set FCE_GEMINI_API_KEY, FCE_OPENAI_API_KEY, or FCE_ANTHROPIC_API_KEY")
	}

	quota := NewQuotaRegistry(cfg.QuotaCeiling)
	base := []GatewayOption{
		WithCallTimeout(cfg.Timeout),
		WithSampling(cfg.MaxTokens, cfg.Temperature),
		WithLogger(log),
	}
	return NewGateway(candidates, quota, append(base, opts...)...), nil
}

func newProvider(ctx context.Context, cfg Config, vendor, model string) (Provider, error) {
	switch vendor {
	case "anthropic":
		return NewAnthropicProvider(cfg.Anthropic, model)
	case "openai":
		return NewOpenAIProvider(cfg.OpenAI, model)
	case "gemini":
		return NewGeminiProvider(ctx, cfg.Gemini, model)
	default:
		return nil, fmt.Errorf("unknown vendor %q", vendor)
	}
}
