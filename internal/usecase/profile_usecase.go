// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"encore/internal/domain/entity"

	"github.com/google/uuid"
)

// ProfileUsecase defines the interface for profile-related business operations.
type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	UpsertProfile(ctx context.Context, userID uuid.UUID, input *UpsertProfileInput) (*entity.Profile, error)
}

// --- Input DTOs ---

// UpsertProfileInput defines the data required to create or update a profile.
type UpsertProfileInput struct {
	Name       string `json:"name"`
	Newsletter bool   `json:"newsletter"`
}
