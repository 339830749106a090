// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"encore/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrProfileNotFound is returned when a user has no profile yet.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository defines the operations for the 1:1 user profile.
type ProfileRepository interface {
	// FindByUserID retrieves the profile keyed by user id.
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)

	// Upsert creates the profile if absent, otherwise overwrites it.
	Upsert(ctx context.Context, profile *entity.Profile) error

	// DeleteByUserID removes the profile keyed by user id.
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}
