package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"encore/internal/broadcast"
	"encore/internal/collection"
	"encore/internal/domain/constants"
	"encore/internal/domain/entity"
	domainerrors "encore/internal/domain/errors"
	"encore/internal/domain/repository"
	"encore/internal/domain/service"
	mockRepo "encore/internal/mocks/repository"
	mockService "encore/internal/mocks/service"
	"encore/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// userServiceFixtures holds all test dependencies for user service tests.
type userServiceFixtures struct {
	service      usecase.UserUsecase
	txManager    *mockRepo.MockTransactionManager
	authRepo     *mockRepo.MockAuthRepository
	hasher       *mockService.MockPasswordHasher
	tokenService *mockService.MockTokenService
	publisher    *mockService.MockEventPublisher
	collections  *collection.Manager
}

func createTestUserService(t *testing.T) userServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	authRepo := mockRepo.NewMockAuthRepository(t)
	hasher := mockService.NewMockPasswordHasher(t)
	tokenService := mockService.NewMockTokenService(t)
	publisher := mockService.NewMockEventPublisher(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	bus := broadcast.New()
	collections := collection.NewManager(context.Background(), bus, txManager, logger)
	t.Cleanup(collections.Close)

	svc := NewUserService(UserServiceParams{
		TxManager:    txManager,
		AuthRepo:     authRepo,
		Hasher:       hasher,
		TokenService: tokenService,
		Collections:  collections,
		Publisher:    publisher,
		Logger:       logger,
	})

	return userServiceFixtures{
		service:      svc,
		txManager:    txManager,
		authRepo:     authRepo,
		hasher:       hasher,
		tokenService: tokenService,
		publisher:    publisher,
		collections:  collections,
	}
}

func TestUserService_RegisterUser_Success(t *testing.T) {
	fx := createTestUserService(t)

	ctx := context.Background()
	input := &usecase.RegisterUserInput{
		Name:     "Taro",
		Email:    "taro@example.com",
		Password: "StrongPhrase123!",
	}

	fx.hasher.EXPECT().Hash(input.Password).Return("hashed-password", nil)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)
			mockUserRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrUserNotFound)
			mockUserRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.User")).Return(nil)
			mockAuthRepo.EXPECT().
				CreateAuthentication(ctx, mock.AnythingOfType("*entity.Authentication")).
				Run(func(ctx context.Context, auth *entity.Authentication) {
					assert.Equal(t, constants.AuthProviderEmail, auth.Provider)
					assert.Equal(t, "hashed-password", auth.PasswordHash)
				}).
				Return(nil)

			return fn(mockFactory)
		})

	output, err := fx.service.RegisterUser(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, input.Email, output.User.Email)
	require.NotNil(t, output.User.Profile)
	assert.Equal(t, input.Name, output.User.Profile.Name)
}

func TestUserService_RegisterUser_AlreadyExists(t *testing.T) {
	fx := createTestUserService(t)

	ctx := context.Background()
	input := &usecase.RegisterUserInput{
		Name:     "Taro",
		Email:    "taro@example.com",
		Password: "StrongPhrase123!",
	}

	fx.hasher.EXPECT().Hash(input.Password).Return("hashed-password", nil)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo).Maybe()
			mockUserRepo.EXPECT().
				FindByEmail(ctx, input.Email).
				Return(&entity.User{ID: uuid.New(), Email: input.Email}, nil)

			return fn(mockFactory)
		})

	_, err := fx.service.RegisterUser(ctx, input)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
}

func TestUserService_RegisterUser_WeakPassword(t *testing.T) {
	fx := createTestUserService(t)

	ctx := context.Background()
	input := &usecase.RegisterUserInput{
		Name:     "Taro",
		Email:    "taro@example.com",
		Password: "123",
	}

	fx.hasher.EXPECT().
		Hash(input.Password).
		Return("", errors.Wrap(domainerrors.ErrPasswordTooWeak, "password must be at least 8 characters long"))

	_, err := fx.service.RegisterUser(ctx, input)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrPasswordTooWeak))
}

func TestUserService_Login_Success(t *testing.T) {
	fx := createTestUserService(t)

	ctx := context.Background()
	userID := uuid.New()
	input := &usecase.LoginInput{
		Email:    "taro@example.com",
		Password: "StrongPhrase123!",
	}
	user := &entity.User{ID: userID, Email: input.Email}
	auth := &entity.Authentication{UserID: userID, Provider: constants.AuthProviderEmail, PasswordHash: "stored-hash"}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)
			mockUserRepo.EXPECT().FindByEmail(ctx, input.Email).Return(user, nil)
			mockAuthRepo.EXPECT().
				FindAuthenticationByUser(ctx, userID, constants.AuthProviderEmail).
				Return(auth, nil)

			return fn(mockFactory)
		})

	fx.hasher.EXPECT().Check(input.Password, "stored-hash").Return(true)
	fx.tokenService.EXPECT().GenerateTokens(userID).Return("access-token", "refresh-token", nil)
	fx.tokenService.EXPECT().HashToken("refresh-token").Return("refresh-hash")
	fx.tokenService.EXPECT().GetRefreshTokenDuration().Return(7 * 24 * time.Hour)
	fx.authRepo.EXPECT().
		CreateRefreshToken(ctx, mock.AnythingOfType("*entity.RefreshToken")).
		Run(func(ctx context.Context, token *entity.RefreshToken) {
			assert.Equal(t, userID, token.UserID)
			assert.Equal(t, "refresh-hash", token.TokenHash)
			assert.True(t, token.ExpiresAt.After(time.Now()))
		}).
		Return(nil)

	output, err := fx.service.Login(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "access-token", output.AccessToken)
	assert.Equal(t, "refresh-token", output.RefreshToken)
	assert.Equal(t, user, output.User)
}

func TestUserService_Login_WrongPassword(t *testing.T) {
	fx := createTestUserService(t)

	ctx := context.Background()
	userID := uuid.New()
	input := &usecase.LoginInput{
		Email:    "taro@example.com",
		Password: "WrongPhrase123!",
	}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)
			mockUserRepo.EXPECT().
				FindByEmail(ctx, input.Email).
				Return(&entity.User{ID: userID, Email: input.Email}, nil)
			mockAuthRepo.EXPECT().
				FindAuthenticationByUser(ctx, userID, constants.AuthProviderEmail).
				Return(&entity.Authentication{UserID: userID, PasswordHash: "stored-hash"}, nil)

			return fn(mockFactory)
		})

	fx.hasher.EXPECT().Check(input.Password, "stored-hash").Return(false)

	_, err := fx.service.Login(ctx, input)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestUserService_Login_UnknownEmail(t *testing.T) {
	fx := createTestUserService(t)

	ctx := context.Background()
	input := &usecase.LoginInput{
		Email:    "nobody@example.com",
		Password: "StrongPhrase123!",
	}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockUserRepo.EXPECT().FindByEmail(ctx, input.Email).Return(nil, repository.ErrUserNotFound)

			return fn(mockFactory)
		})

	_, err := fx.service.Login(ctx, input)

	require.Error(t, err)
	// An unknown email reads identically to a wrong password.
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func refreshClaims(userID uuid.UUID) *service.Claims {
	return &service.Claims{
		UserID: userID,
		Type:   "refresh",
	}
}

func TestUserService_RefreshToken_Success(t *testing.T) {
	fx := createTestUserService(t)

	ctx := context.Background()
	userID := uuid.New()
	input := &usecase.RefreshTokenInput{RefreshToken: "old-refresh"}

	fx.tokenService.EXPECT().ValidateToken("old-refresh").Return(refreshClaims(userID), nil)
	fx.tokenService.EXPECT().HashToken("old-refresh").Return("old-hash")
	fx.tokenService.EXPECT().GenerateTokens(userID).Return("new-access", "new-refresh", nil)
	fx.tokenService.EXPECT().HashToken("new-refresh").Return("new-hash")
	fx.tokenService.EXPECT().GetRefreshTokenDuration().Return(7 * 24 * time.Hour)

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)
			mockAuthRepo.EXPECT().
				FindRefreshTokenByHash(ctx, "old-hash").
				Return(&entity.RefreshToken{UserID: userID, TokenHash: "old-hash", ExpiresAt: time.Now().Add(time.Hour)}, nil)
			mockUserRepo.EXPECT().FindByID(ctx, userID).Return(&entity.User{ID: userID}, nil)
			mockAuthRepo.EXPECT().
				CreateRefreshToken(ctx, mock.AnythingOfType("*entity.RefreshToken")).
				Run(func(ctx context.Context, token *entity.RefreshToken) {
					assert.Equal(t, "new-hash", token.TokenHash)
				}).
				Return(nil)
			mockAuthRepo.EXPECT().DeleteRefreshTokenByHash(ctx, "old-hash").Return(nil)

			return fn(mockFactory)
		})

	output, err := fx.service.RefreshToken(ctx, input)

	require.NoError(t, err)
	assert.Equal(t, "new-access", output.AccessToken)
	assert.Equal(t, "new-refresh", output.RefreshToken)
}

func TestUserService_RefreshToken_WrongTokenType(t *testing.T) {
	fx := createTestUserService(t)

	ctx := context.Background()
	userID := uuid.New()

	fx.tokenService.EXPECT().
		ValidateToken("access-used-as-refresh").
		Return(&service.Claims{UserID: userID, Type: "access"}, nil)

	_, err := fx.service.RefreshToken(ctx, &usecase.RefreshTokenInput{RefreshToken: "access-used-as-refresh"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestUserService_RefreshToken_Expired(t *testing.T) {
	fx := createTestUserService(t)

	ctx := context.Background()
	userID := uuid.New()

	fx.tokenService.EXPECT().ValidateToken("old-refresh").Return(refreshClaims(userID), nil)
	fx.tokenService.EXPECT().HashToken("old-refresh").Return("old-hash")

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockAuthRepo := mockRepo.NewMockAuthRepository(t)

			mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)
			mockAuthRepo.EXPECT().
				FindRefreshTokenByHash(ctx, "old-hash").
				Return(&entity.RefreshToken{UserID: userID, TokenHash: "old-hash", ExpiresAt: time.Now().Add(-time.Minute)}, nil)

			return fn(mockFactory)
		})

	_, err := fx.service.RefreshToken(ctx, &usecase.RefreshTokenInput{RefreshToken: "old-refresh"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenExpired))
}

func TestUserService_Logout(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		fx := createTestUserService(t)

		ctx := context.Background()
		userID := uuid.New()

		fx.tokenService.EXPECT().ValidateToken("refresh-token").Return(refreshClaims(userID), nil)
		fx.tokenService.EXPECT().HashToken("refresh-token").Return("refresh-hash")
		fx.authRepo.EXPECT().DeleteRefreshTokenByHash(ctx, "refresh-hash").Return(nil)

		err := fx.service.Logout(ctx, &usecase.LogoutInput{RefreshToken: "refresh-token"})

		require.NoError(t, err)
	})

	t.Run("unknown token is idempotent", func(t *testing.T) {
		fx := createTestUserService(t)

		ctx := context.Background()

		fx.tokenService.EXPECT().ValidateToken("stale-token").Return(nil, errors.New("token is expired"))
		fx.tokenService.EXPECT().HashToken("stale-token").Return("stale-hash")
		fx.authRepo.EXPECT().DeleteRefreshTokenByHash(ctx, "stale-hash").Return(repository.ErrTokenNotFound)

		err := fx.service.Logout(ctx, &usecase.LogoutInput{RefreshToken: "stale-token"})

		require.NoError(t, err)
	})
}

func TestUserService_DeleteAccount(t *testing.T) {
	t.Run("requires confirmation", func(t *testing.T) {
		fx := createTestUserService(t)

		err := fx.service.DeleteAccount(context.Background(), uuid.New(), &usecase.DeleteAccountInput{Confirm: false})

		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrDeleteNotConfirmed))
	})

	t.Run("success", func(t *testing.T) {
		fx := createTestUserService(t)

		ctx := context.Background()
		userID := uuid.New()

		fx.txManager.EXPECT().
			Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
			RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
				mockFactory := mockRepo.NewMockRepositoryFactory(t)
				mockUserRepo := mockRepo.NewMockUserRepository(t)
				mockAuthRepo := mockRepo.NewMockAuthRepository(t)
				mockOrderRepo := mockRepo.NewMockOrderRepository(t)
				mockProfileRepo := mockRepo.NewMockProfileRepository(t)

				mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
				mockFactory.EXPECT().AuthRepo().Return(mockAuthRepo)
				mockFactory.EXPECT().OrderRepo().Return(mockOrderRepo)
				mockFactory.EXPECT().ProfileRepo().Return(mockProfileRepo)

				mockUserRepo.EXPECT().FindByID(ctx, userID).Return(&entity.User{ID: userID}, nil)
				mockOrderRepo.EXPECT().DeleteByOwner(ctx, userID).Return(nil)
				mockProfileRepo.EXPECT().DeleteByUserID(ctx, userID).Return(nil)
				mockAuthRepo.EXPECT().DeleteRefreshTokensByUser(ctx, userID).Return(nil)
				mockAuthRepo.EXPECT().DeleteAuthenticationsByUser(ctx, userID).Return(nil)
				mockUserRepo.EXPECT().Delete(ctx, userID).Return(nil)

				return fn(mockFactory)
			})
		fx.publisher.EXPECT().
			PublishOrderMutation(ctx, mock.AnythingOfType("*service.OrderMutationEvent")).
			Run(func(ctx context.Context, event *service.OrderMutationEvent) {
				assert.Equal(t, service.MutationPurge, event.Kind)
				assert.Equal(t, userID.String(), event.OwnerID)
				assert.Empty(t, event.OrderID)
			}).
			Return(nil)

		err := fx.service.DeleteAccount(ctx, userID, &usecase.DeleteAccountInput{Confirm: true})

		require.NoError(t, err)
	})

	t.Run("user not found", func(t *testing.T) {
		fx := createTestUserService(t)

		ctx := context.Background()
		userID := uuid.New()

		fx.txManager.EXPECT().
			Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
			RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
				mockFactory := mockRepo.NewMockRepositoryFactory(t)
				mockUserRepo := mockRepo.NewMockUserRepository(t)

				mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
				mockUserRepo.EXPECT().FindByID(ctx, userID).Return(nil, repository.ErrUserNotFound)

				return fn(mockFactory)
			})

		err := fx.service.DeleteAccount(ctx, userID, &usecase.DeleteAccountInput{Confirm: true})

		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
	})
}

func TestUserService_NilInputRejected(t *testing.T) {
	fx := createTestUserService(t)

	ctx := context.Background()

	assert.NotPanics(t, func() {
		_, err := fx.service.RegisterUser(ctx, nil)
		assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

		_, err = fx.service.Login(ctx, nil)
		assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

		_, err = fx.service.RefreshToken(ctx, nil)
		assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

		err = fx.service.Logout(ctx, nil)
		assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))

		err = fx.service.DeleteAccount(ctx, uuid.New(), nil)
		assert.True(t, errors.Is(err, domainerrors.ErrDeleteNotConfirmed))
	})
}
