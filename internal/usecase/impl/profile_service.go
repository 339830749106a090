// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "encore/internal/delivery/context"
	"encore/internal/domain/entity"
	domainerrors "encore/internal/domain/errors"
	"encore/internal/domain/repository"
	"encore/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// profileService implements the ProfileUsecase interface.
type profileService struct {
	txManager repository.TransactionManager
	logger    *slog.Logger
}

// NewProfileService is the constructor for profileService.
func NewProfileService(
	txManager repository.TransactionManager,
	logger *slog.Logger,
) usecase.ProfileUsecase {
	return &profileService{
		txManager: txManager,
		logger:    logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *profileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// GetProfile retrieves the user's profile.
func (srv *profileService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	srv.log(ctx).Debug("Getting profile", slog.String("userID", userID.String()))

	var profile *entity.Profile

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.ProfileRepo().FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, repository.ErrProfileNotFound) {
				return errors.Wrap(domainerrors.ErrProfileNotFound, "profile not found")
			}

			return errors.Wrap(err, "failed to find profile")
		}
		profile = found

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get profile")
	}

	return profile, nil
}

// UpsertProfile creates the profile on first write and overwrites it afterwards.
func (srv *profileService) UpsertProfile(ctx context.Context, userID uuid.UUID, input *usecase.UpsertProfileInput) (*entity.Profile, error) {
	if input == nil {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "profile input is required")
	}

	srv.log(ctx).Info("Upserting profile", slog.String("userID", userID.String()))

	profile := &entity.Profile{
		UserID:     userID,
		Name:       input.Name,
		Newsletter: input.Newsletter,
		UpdatedAt:  time.Now(),
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		// The user must exist; the profile row may not.
		if _, err := repoFactory.UserRepo().FindByID(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUserNotFound, "user not found")
			}

			return errors.Wrap(err, "failed to find user")
		}

		if err := repoFactory.ProfileRepo().Upsert(ctx, profile); err != nil {
			return errors.Wrap(err, "failed to upsert profile")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute profile upsert transaction", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute profile upsert transaction")
	}

	return profile, nil
}
