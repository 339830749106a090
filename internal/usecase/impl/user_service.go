// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"time"

	"encore/internal/collection"
	deliverycontext "encore/internal/delivery/context"
	"encore/internal/domain/constants"
	"encore/internal/domain/entity"
	domainerrors "encore/internal/domain/errors"
	"encore/internal/domain/repository"
	"encore/internal/domain/service"
	"encore/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// userService implements the UserUsecase interface.
type userService struct {
	txManager    repository.TransactionManager
	authRepo     repository.AuthRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	collections  *collection.Manager
	publisher    service.EventPublisher
	logger       *slog.Logger
}

// UserServiceParams holds dependencies for userService, injected by Fx.
type UserServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	AuthRepo     repository.AuthRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Collections  *collection.Manager
	Publisher    service.EventPublisher
	Logger       *slog.Logger
}

// NewUserService is the constructor for userService. It receives all dependencies as interfaces.
func NewUserService(params UserServiceParams) usecase.UserUsecase {
	return &userService{
		txManager:    params.TxManager,
		authRepo:     params.AuthRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		collections:  params.Collections,
		publisher:    params.Publisher,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *userService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// RegisterUser orchestrates the complete user registration process.
func (srv *userService) RegisterUser(ctx context.Context, input *usecase.RegisterUserInput) (*usecase.RegisterOutput, error) {
	if input == nil {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "registration input is required")
	}

	srv.log(ctx).Info("Starting user registration", slog.String("email", input.Email))

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Warn("Password rejected during registration", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	var registeredUser *entity.User

	// The whole creation runs in one transaction so a partially created
	// account can never be observed.
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()
		authRepo := repoFactory.AuthRepo()

		_, err := userRepo.FindByEmail(ctx, input.Email)
		if err == nil {
			return domainerrors.ErrUserAlreadyExists.WrapMessage("user registration failed")
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(err, "failed to check for existing user")
		}

		newUser := &entity.User{
			ID:    uuid.New(),
			Email: input.Email,
			Profile: &entity.Profile{
				Name: input.Name,
			},
		}
		if err := userRepo.Create(ctx, newUser); err != nil {
			return errors.WithStack(err)
		}

		newAuth := &entity.Authentication{
			UserID:       newUser.ID,
			Provider:     constants.AuthProviderEmail,
			PasswordHash: hashedPassword,
		}
		if err := authRepo.CreateAuthentication(ctx, newAuth); err != nil {
			return errors.WithStack(err)
		}
		registeredUser = newUser

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute user registration transaction", slog.Any("error", err), slog.String("email", input.Email))

		return nil, errors.Wrap(err, "failed to execute user registration transaction")
	}
	srv.log(ctx).Debug("User registered successfully", slog.String("userID", registeredUser.ID.String()))

	return &usecase.RegisterOutput{User: registeredUser}, nil
}

// Login orchestrates the user login process.
func (srv *userService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.LoginOutput, error) {
	if input == nil {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "login input is required")
	}

	srv.log(ctx).Debug("Starting user login", slog.String("email", input.Email))

	var loggedInUser *entity.User
	var authRecord *entity.Authentication

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		user, err := repoFactory.UserRepo().FindByEmail(ctx, input.Email)
		if err != nil {
			// ErrUserNotFound folds into the generic credential failure.
			return errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
		}

		auth, err := repoFactory.AuthRepo().FindAuthenticationByUser(ctx, user.ID, constants.AuthProviderEmail)
		if err != nil {
			return errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
		}

		loggedInUser = user
		authRecord = auth

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute user login transaction")
	}

	// bcrypt comparison stays outside the transaction; it is slow and
	// needs no database state.
	if !srv.hasher.Check(input.Password, authRecord.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.String("email", input.Email))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	accessToken, refreshTokenString, err := srv.tokenService.GenerateTokens(loggedInUser.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate tokens")
	}

	if err := srv.storeRefreshToken(ctx, loggedInUser.ID, refreshTokenString); err != nil {
		return nil, errors.Wrap(err, "failed to store refresh token")
	}

	srv.log(ctx).Debug("User logged in successfully", slog.String("userID", loggedInUser.ID.String()))

	return &usecase.LoginOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshTokenString,
		User:         loggedInUser,
	}, nil
}

// RefreshToken rotates a refresh token: the presented token is traded
// for a new pair and invalidated.
func (srv *userService) RefreshToken(ctx context.Context, input *usecase.RefreshTokenInput) (*usecase.RefreshTokenOutput, error) {
	if input == nil {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "refresh token input is required")
	}

	srv.log(ctx).Info("Attempting to refresh token")

	claims, err := srv.tokenService.ValidateToken(input.RefreshToken)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "invalid refresh token")
	}
	if claims.Type != "refresh" {
		return nil, errors.Wrap(domainerrors.ErrRefreshTokenInvalid, "token is not a refresh token")
	}

	oldHash := srv.tokenService.HashToken(input.RefreshToken)

	var newAccessToken, newRefreshTokenString string

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		authRepo := repoFactory.AuthRepo()

		stored, err := authRepo.FindRefreshTokenByHash(ctx, oldHash)
		if err != nil {
			if errors.Is(err, repository.ErrTokenNotFound) {
				return errors.Wrap(domainerrors.ErrRefreshTokenNotFound, "refresh token not found")
			}

			return errors.Wrap(err, "failed to find refresh token")
		}
		if time.Now().After(stored.ExpiresAt) {
			return errors.Wrap(domainerrors.ErrRefreshTokenExpired, "refresh token expired")
		}

		if _, err := repoFactory.UserRepo().FindByID(ctx, claims.UserID); err != nil {
			return errors.Wrap(err, "failed to find user for refresh")
		}

		newAccessToken, newRefreshTokenString, err = srv.tokenService.GenerateTokens(claims.UserID)
		if err != nil {
			return errors.Wrap(err, "failed to generate new tokens")
		}

		newRefreshToken := &entity.RefreshToken{
			UserID:    claims.UserID,
			TokenHash: srv.tokenService.HashToken(newRefreshTokenString),
			ExpiresAt: time.Now().Add(srv.tokenService.GetRefreshTokenDuration()),
		}
		if err := authRepo.CreateRefreshToken(ctx, newRefreshToken); err != nil {
			return errors.WithStack(err)
		}

		if err := authRepo.DeleteRefreshTokenByHash(ctx, oldHash); err != nil {
			// The user already holds the new token; losing the old row is recoverable.
			srv.log(ctx).Warn("Failed to delete rotated refresh token", slog.Any("error", err))
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute refresh token transaction", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute refresh token transaction")
	}

	return &usecase.RefreshTokenOutput{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshTokenString,
	}, nil
}

// Logout ends a session by deleting its refresh token and dropping the
// user's collection view. It is idempotent: an unknown token logs out cleanly.
func (srv *userService) Logout(ctx context.Context, input *usecase.LogoutInput) error {
	if input == nil {
		return errors.Wrap(domainerrors.ErrValidationFailed, "logout input is required")
	}

	srv.log(ctx).Info("Attempting to log out")

	claims, err := srv.tokenService.ValidateToken(input.RefreshToken)
	if err != nil {
		// Even with an invalid token we delete whatever hash matches.
		srv.log(ctx).Warn("Logout with invalid token", slog.Any("error", err))
	}

	tokenHash := srv.tokenService.HashToken(input.RefreshToken)

	if err := srv.authRepo.DeleteRefreshTokenByHash(ctx, tokenHash); err != nil {
		if !errors.Is(err, repository.ErrTokenNotFound) {
			srv.log(ctx).Error("Failed to delete refresh token on logout", slog.Any("error", err))

			return errors.Wrap(err, "failed to delete refresh token")
		}
	}

	if claims != nil {
		srv.collections.Drop(claims.UserID)
	}

	srv.log(ctx).Info("Successfully logged out")

	return nil
}

// DeleteAccount removes the user and everything attached to them in a
// single transaction, then tears down the session state.
func (srv *userService) DeleteAccount(ctx context.Context, userID uuid.UUID, input *usecase.DeleteAccountInput) error {
	if input == nil || !input.Confirm {
		return errors.Wrap(domainerrors.ErrDeleteNotConfirmed, "account deletion requires confirmation")
	}

	srv.log(ctx).Info("Starting account deletion", slog.String("userID", userID.String()))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if _, err := repoFactory.UserRepo().FindByID(ctx, userID); err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrUserNotFound, "user not found")
			}

			return errors.Wrap(err, "failed to find user")
		}

		if err := repoFactory.OrderRepo().DeleteByOwner(ctx, userID); err != nil {
			return errors.Wrap(err, "failed to delete orders")
		}
		if err := repoFactory.ProfileRepo().DeleteByUserID(ctx, userID); err != nil {
			return errors.Wrap(err, "failed to delete profile")
		}
		if err := repoFactory.AuthRepo().DeleteRefreshTokensByUser(ctx, userID); err != nil {
			return errors.Wrap(err, "failed to delete sessions")
		}
		if err := repoFactory.AuthRepo().DeleteAuthenticationsByUser(ctx, userID); err != nil {
			return errors.Wrap(err, "failed to delete authentications")
		}
		if err := repoFactory.UserRepo().Delete(ctx, userID); err != nil {
			return errors.Wrap(err, "failed to delete user")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute account deletion transaction", slog.Any("error", err))

		return errors.Wrap(err, "failed to execute account deletion transaction")
	}

	srv.collections.Drop(userID)

	// Best effort: external consumers learn the account is gone.
	event := &service.OrderMutationEvent{
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		OwnerID:   userID.String(),
		Kind:      service.MutationPurge,
	}
	if err := srv.publisher.PublishOrderMutation(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish account purge event", slog.Any("error", err))
	}

	srv.log(ctx).Info("Account deleted", slog.String("userID", userID.String()))

	return nil
}

// storeRefreshToken hashes and persists a newly issued refresh token.
func (srv *userService) storeRefreshToken(ctx context.Context, userID uuid.UUID, refreshTokenString string) error {
	newRefreshToken := &entity.RefreshToken{
		UserID:    userID,
		TokenHash: srv.tokenService.HashToken(refreshTokenString),
		ExpiresAt: time.Now().Add(srv.tokenService.GetRefreshTokenDuration()),
	}

	if err := srv.authRepo.CreateRefreshToken(ctx, newRefreshToken); err != nil {
		return errors.WithStack(err)
	}

	return nil
}
