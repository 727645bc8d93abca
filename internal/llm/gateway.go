package llm

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Candidate pairs a model name with the provider that serves it.
type Candidate struct {
	Name     string
	Provider Provider
}

// GenerateResult is the gateway's output: raw text plus the identifier of
// whichever model ultimately produced it.
type GenerateResult struct {
	Text      string
	ModelUsed string
	Usage     Usage
}

// Gateway sends a prompt to a ranked sequence of models, skipping models at
// their quota ceiling and falling back to the next candidate on transient
// errors. It performs no retries of its own: once every candidate has been
// skipped or has failed, the call fails with ErrAllModelsExhausted.
type Gateway struct {
	candidates  []Candidate
	quota       *QuotaRegistry
	timeout     time.Duration
	maxTokens   int
	temperature float64
	system      string
	log         *zap.Logger
}

// GatewayOption configures a Gateway.
type GatewayOption func(*Gateway)

// WithSystemPrompt sets the system prompt sent with every request.
func WithSystemPrompt(system string) GatewayOption {
	return func(g *Gateway) { g.system = system }
}

// WithCallTimeout bounds each individual model call. Expiry falls through
// to the next candidate like a rate limit.
func WithCallTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.timeout = d }
}

// WithSampling sets the token budget and temperature for model calls.
func WithSampling(maxTokens int, temperature float64) GatewayOption {
	return func(g *Gateway) { g.maxTokens = maxTokens; g.temperature = temperature }
}

// WithLogger sets the gateway's logger.
func WithLogger(log *zap.Logger) GatewayOption {
	return func(g *Gateway) { g.log = log }
}

// NewGateway creates a Gateway over the given ranked candidates. The order
// of candidates is the fallback order, cheapest first.
func NewGateway(candidates []Candidate, quota *QuotaRegistry, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		candidates:  candidates,
		quota:       quota,
		timeout:     45 * time.Second,
		maxTokens:   1024,
		temperature: 0.8,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.quota == nil {
		g.quota = NewQuotaRegistry(DefaultQuotaCeiling)
	}
	return g
}

// Quota returns the gateway's quota registry.
func (g *Gateway) Quota() *QuotaRegistry {
	return g.quota
}

// Models returns the candidate model names in fallback order.
func (g *Gateway) Models() []string {
	out := make([]string, len(g.candidates))
	for i, c := range g.candidates {
		out[i] = c.Name
	}
	return out
}

// Generate sends the prompt to the first available candidate. When
// preferred names a known model, that model is tried first; the remaining
// candidates follow in ranking order with the duplicate removed. The first
// success wins and increments that model's quota counter.
func (g *Gateway) Generate(ctx context.Context, prompt, preferred string) (*GenerateResult, error) {
	ordered := g.ordered(preferred)

	attempted := make([]string, 0, len(ordered))
	for _, cand := range ordered {
		attempted = append(attempted, cand.Name)

		if g.quota.Exhausted(cand.Name) {
			g.log.Debug("skipping model at quota ceiling",
				zap.String("model", cand.Name),
				zap.Int("used", g.quota.Used(cand.Name)))
			continue
		}

		resp, err := g.call(ctx, cand.Provider, prompt)
		if err == nil {
			used := g.quota.Record(cand.Name)
			g.log.Info("model call served",
				zap.String("model", cand.Name),
				zap.Int("quota_used", used))
			return &GenerateResult{
				Text:      resp.Text,
				ModelUsed: cand.Name,
				Usage:     resp.Usage,
			}, nil
		}

		// The caller's context expiring is not a per-model condition;
		// stop falling through and surface it.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var rl *ErrRateLimit
		if errors.As(err, &rl) {
			g.log.Warn("model rate limited, falling back",
				zap.String("model", cand.Name), zap.Error(err))
			continue
		}

		g.log.Warn("model call failed, falling back",
			zap.String("model", cand.Name), zap.Error(err))
	}

	return nil, &ErrAllModelsExhausted{Attempted: attempted}
}

// call issues a single bounded model call.
func (g *Gateway) call(ctx context.Context, p Provider, prompt string) (*Response, error) {
	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	return p.Generate(callCtx, Request{
		System:      g.system,
		Messages:    []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
}

// ordered returns the candidate list with the preferred model (if known)
// moved to the front and its duplicate dropped.
func (g *Gateway) ordered(preferred string) []Candidate {
	if preferred == "" {
		return g.candidates
	}

	var front *Candidate
	for i := range g.candidates {
		if g.candidates[i].Name == preferred {
			front = &g.candidates[i]
			break
		}
	}
	if front == nil {
		return g.candidates
	}

	out := make([]Candidate, 0, len(g.candidates))
	out = append(out, *front)
	for _, c := range g.candidates {
		if c.Name != preferred {
			out = append(out, c)
		}
	}
	return out
}
