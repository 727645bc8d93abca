package exercisegen

// Config controls the behavior of the Generator.
type Config struct {
	// MaxAttempts is the retry budget: the total number of generation
	// attempts (gateway calls) per external request. Each attempt after
	// the first uses a fresh random seed.
	MaxAttempts int

	// PreferredModel, when set, is tried first by the gateway before the
	// configured fallback ranking.
	PreferredModel string
}

// DefaultConfig returns a Config with the standard retry budget.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 10,
	}
}
