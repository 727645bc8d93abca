package llm

import (
	"fmt"
	"strings"
	"time"
)

// ErrRateLimit indicates the provider returned a rate limit error (429).
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model provider unavailable: %v", e.Err)
	}
	return "model provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded indicates the response was truncated because it
// hit the MaxTokens limit.
type ErrMaxTokensExceeded struct {
	Text string
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "model response truncated: max tokens exceeded"
}

// ErrAllModelsExhausted indicates every candidate model was either at its
// quota ceiling or failed. The gateway surfaces this as a hard stop; the
// caller may retry with a fresh attempt but the gateway itself never does.
type ErrAllModelsExhausted struct {
	// Attempted lists the candidate models in the order they were tried,
	// including those skipped for quota.
	Attempted []string
}

func (e *ErrAllModelsExhausted) Error() string {
	return fmt.Sprintf("all models unavailable (tried: %s)", strings.Join(e.Attempted, ", "))
}
