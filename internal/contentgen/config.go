package contentgen

// Config controls generation behavior.
type Config struct {
	// MaxTokens is the token budget for one generation response.
	// Passages and transcripts are long, so the default is large.
	MaxTokens int

	// BaseTemperature is the sampling temperature for the first attempt.
	BaseTemperature float64

	// TemperatureStep is added per retry attempt to steer the model away
	// from content it already produced.
	TemperatureStep float64

	// MaxAttempts is how many times generation is retried when the result
	// duplicates stored history. After the last attempt the result is
	// accepted anyway.
	MaxAttempts int

	// DuplicateThreshold is the keyword-similarity bar above which a
	// result counts as a duplicate.
	DuplicateThreshold float64
}

// DefaultConfig returns the recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:          8192,
		BaseTemperature:    0.3,
		TemperatureStep:    0.2,
		MaxAttempts:        3,
		DuplicateThreshold: 0.6,
	}
}
