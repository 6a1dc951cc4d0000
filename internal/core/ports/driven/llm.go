package driven

import "context"

// LLMService provides single-shot text generation.
// It keeps no conversation state between calls.
type LLMService interface {
	// Complete sends one system instruction and one human turn and returns
	// the model's text. It never retries.
	Complete(ctx context.Context, system, human string, opts CompleteOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompleteOptions configures a completion request.
type CompleteOptions struct {
	// MaxTokens limits the response length. Zero uses the adapter default.
	MaxTokens int

	// Temperature controls randomness (0.0 - 1.0). Nil uses the model default.
	Temperature *float64
}
