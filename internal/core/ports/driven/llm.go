package driven

import (
	"context"
)

// LLMService generates the final answer when retrieval produced usable
// context. Generation itself is outside the core; this is the narrow
// contract the answer flow depends on.
type LLMService interface {
	// Generate produces an answer from the tenant's system prompt, the
	// user's message and the retrieved context block. context may be empty.
	Generate(ctx context.Context, systemPrompt, userMessage, contextBlock string) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the LLM service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the LLM service
	Close() error
}
