// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"github.com/google/uuid"
)

// GeneratePromptOutput returns the generated music-production prompt.
type GeneratePromptOutput struct {
	Prompt string `json:"prompt"`
}

// PromptUsecase defines the interface for generating music-production
// prompts from an order's finalized parameters.
type PromptUsecase interface {
	GeneratePrompt(ctx context.Context, ownerID, orderID uuid.UUID) (*GeneratePromptOutput, error)
}
