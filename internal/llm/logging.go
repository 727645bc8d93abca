package llm

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"fcegen/internal/store"
)

// LoggingProvider is a decorator that logs every model call and appends it
// to the event store. Logging never fails the wrapped call.
type LoggingProvider struct {
	inner  Provider
	log    *zap.Logger
	events store.EventRepo
}

// WithLogging wraps a Provider with structured logging and event capture.
func WithLogging(p Provider, log *zap.Logger, events store.EventRepo) Provider {
	if log == nil {
		log = zap.NewNop()
	}
	if events == nil {
		events = store.NopEventRepo{}
	}
	return &LoggingProvider{inner: p, log: log, events: events}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	resp, err := l.inner.Generate(ctx, req)

	latencyMs := time.Since(start).Milliseconds()

	event := store.ModelCallEvent{
		Model:     l.inner.ModelID(),
		LatencyMs: latencyMs,
		Success:   err == nil,
		Prompt:    serializeRequest(req),
	}

	if resp != nil {
		event.InputTokens = resp.Usage.InputTokens
		event.OutputTokens = resp.Usage.OutputTokens
		event.Model = resp.Model
		event.Response = resp.Text
	}

	if err != nil {
		event.ErrorMessage = err.Error()
		l.log.Warn("model call failed",
			zap.String("model", l.inner.ModelID()),
			zap.Int64("latency_ms", latencyMs),
			zap.Error(err))
	} else {
		l.log.Debug("model call succeeded",
			zap.String("model", event.Model),
			zap.Int64("latency_ms", latencyMs),
			zap.Int("input_tokens", event.InputTokens),
			zap.Int("output_tokens", event.OutputTokens))
	}

	// Append the event but never fail the request over it.
	if appendErr := l.events.AppendModelCall(ctx, event); appendErr != nil {
		l.log.Warn("failed to append model call event", zap.Error(appendErr))
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the model request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		b.WriteString("[")
		b.WriteString(string(m.Role))
		b.WriteString("]\n")
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	return b.String()
}
