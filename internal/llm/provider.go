package llm

import "context"

// Provider is the abstraction over the external text-completion service.
// The help flow sends one prompt and reads back one block of text.
type Provider interface {
	// Complete sends a single-turn prompt and returns the generated text.
	Complete(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes one completion call.
type Request struct {
	// System is the optional system prompt.
	System string

	// Prompt is the user-turn text.
	Prompt string

	// MaxTokens caps the size of the generated reply.
	MaxTokens int

	// Temperature controls randomness. Zero means provider default.
	Temperature float64
}

// Response holds the provider's output.
type Response struct {
	// Text is the first text block of the reply. Empty when the reply
	// carried no text content.
	Text string

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}
