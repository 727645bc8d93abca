package exercisegen

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fcegen/internal/llm"
	"fcegen/internal/store"
)

// TextGateway is the slice of the model gateway this package needs.
// *llm.Gateway satisfies it.
type TextGateway interface {
	Generate(ctx context.Context, prompt, preferred string) (*llm.GenerateResult, error)
}

// Result is the outcome of one external generation request. Questions is
// either exactly BatchSize valid questions or empty, signaling "could not
// generate this time"; callers should let the user retry later. Partial
// batches are never returned.
type Result struct {
	Questions []ParsedQuestion `json:"questions"`
	ModelUsed string           `json:"model_used,omitempty"`
}

// Generator drives the compose-call-parse-validate retry loop. It owns the
// retry budget; the gateway owns model fallback within a single attempt.
type Generator struct {
	gateway TextGateway
	cfg     Config
	log     *zap.Logger
	events  store.EventRepo
}

// New creates a Generator over the given gateway.
func New(gateway TextGateway, cfg Config, log *zap.Logger, events store.EventRepo) *Generator {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if log == nil {
		log = zap.NewNop()
	}
	if events == nil {
		events = store.NopEventRepo{}
	}
	return &Generator{gateway: gateway, cfg: cfg, log: log, events: events}
}

// NewSeed returns a fresh opaque randomization token.
func NewSeed() string {
	return uuid.NewString()
}

// Generate produces a batch of exercises for the request, retrying with a
// fresh seed after every failed attempt until the budget is exhausted.
// Only the request's Seed field changes between attempts. An error is
// returned only for context cancellation; budget exhaustion yields an
// empty Result.
func (g *Generator) Generate(ctx context.Context, req GenerationRequest) (*Result, error) {
	if req.Seed == "" {
		req.Seed = NewSeed()
	}

	var (
		lastRaw   string
		lastModel string
	)

	for attempt := 1; attempt <= g.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			req.Seed = NewSeed()
		}

		prompt := ComposePrompt(req)

		res, err := g.gateway.Generate(ctx, prompt, g.cfg.PreferredModel)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			g.log.Warn("generation attempt failed at gateway",
				zap.Int("attempt", attempt),
				zap.String("category", string(req.ErrorCategory)),
				zap.Error(err))
			continue
		}

		lastRaw = res.Text
		lastModel = res.ModelUsed

		batch, perr := ParseBatch(res.Text)
		if perr != nil {
			g.log.Debug("generation attempt failed at parse",
				zap.Int("attempt", attempt),
				zap.String("model", res.ModelUsed),
				zap.Error(perr))
			continue
		}

		if !ValidateBatch(batch, req.ErrorCategory, req.Level) {
			g.log.Debug("generation attempt failed validation",
				zap.Int("attempt", attempt),
				zap.String("model", res.ModelUsed),
				zap.String("category", string(req.ErrorCategory)))
			continue
		}

		g.log.Info("generated exercise batch",
			zap.String("category", string(req.ErrorCategory)),
			zap.String("level", string(req.Level)),
			zap.String("model", res.ModelUsed),
			zap.Int("attempts", attempt))
		g.appendEvent(ctx, req, attempt, true, res.ModelUsed, "")

		return &Result{Questions: batch, ModelUsed: res.ModelUsed}, nil
	}

	// Budget exhausted: a defined empty outcome, not an error. The last
	// raw output and model are logged for offline diagnosis.
	g.log.Error("generation budget exhausted",
		zap.String("category", string(req.ErrorCategory)),
		zap.String("level", string(req.Level)),
		zap.String("last_model", lastModel),
		zap.String("last_output", lastRaw),
		zap.Int("attempts", g.cfg.MaxAttempts))
	g.appendEvent(ctx, req, g.cfg.MaxAttempts, false, lastModel, lastRaw)

	return &Result{Questions: []ParsedQuestion{}}, nil
}

func (g *Generator) appendEvent(ctx context.Context, req GenerationRequest, attempts int, success bool, model, lastOutput string) {
	err := g.events.AppendGeneration(ctx, store.GenerationEvent{
		Category:      string(req.ErrorCategory),
		Level:         string(req.Level),
		Age:           req.Age,
		FirstLanguage: req.FirstLanguage,
		Attempts:      attempts,
		Success:       success,
		ModelUsed:     model,
		LastOutput:    lastOutput,
	})
	if err != nil {
		g.log.Warn("failed to append generation event", zap.Error(err))
	}
}
