package questiongen

import "time"

// Limits on a single request.
const (
	MaxCount       = 20
	maxBodyLen     = 4000
	maxOptionCount = 8
)

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxExisting is the maximum number of existing questions listed in
	// the prompt for deduplication.
	MaxExisting int

	// Timeout bounds one Generate call. Zero means no limit beyond ctx.
	Timeout time.Duration
}

// DefaultConfig returns the recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   4096,
		Temperature: 0.7,
		MaxExisting: 10,
	}
}
