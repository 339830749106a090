package service

import "context"

// LLMClient defines the interface for sending prompts to a hosted
// language model. It abstracts the provider SDK from the use cases.
type LLMClient interface {
	// Complete sends a single-turn prompt and returns the model's text reply.
	Complete(ctx context.Context, prompt string) (string, error)

	// CompleteWithSystem sends a prompt with a separate system instruction.
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
