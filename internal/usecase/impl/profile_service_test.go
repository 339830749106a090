package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"encore/internal/domain/entity"
	domainerrors "encore/internal/domain/errors"
	"encore/internal/domain/repository"
	mockRepo "encore/internal/mocks/repository"
	"encore/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// profileServiceFixtures holds all test dependencies for profile service tests.
type profileServiceFixtures struct {
	service   usecase.ProfileUsecase
	txManager *mockRepo.MockTransactionManager
}

func createTestProfileService(t *testing.T) profileServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewProfileService(txManager, logger)

	return profileServiceFixtures{
		service:   service,
		txManager: txManager,
	}
}

func TestProfileService_GetProfile_Success(t *testing.T) {
	fx := createTestProfileService(t)

	ctx := context.Background()
	userID := uuid.New()
	expectedProfile := &entity.Profile{
		UserID:     userID,
		Name:       "Hanako",
		Newsletter: true,
	}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(ctx context.Context, fn func(repository.RepositoryFactory) error) {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockProfileRepo := mockRepo.NewMockProfileRepository(t)

			mockFactory.EXPECT().ProfileRepo().Return(mockProfileRepo)
			mockProfileRepo.EXPECT().FindByUserID(ctx, userID).Return(expectedProfile, nil)

			_ = fn(mockFactory)
		}).
		Return(nil)

	profile, err := fx.service.GetProfile(ctx, userID)

	require.NoError(t, err)
	assert.Equal(t, expectedProfile, profile)
}

func TestProfileService_GetProfile_NotFound(t *testing.T) {
	fx := createTestProfileService(t)

	ctx := context.Background()
	userID := uuid.New()

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(ctx context.Context, fn func(repository.RepositoryFactory) error) {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockProfileRepo := mockRepo.NewMockProfileRepository(t)

			mockFactory.EXPECT().ProfileRepo().Return(mockProfileRepo)
			mockProfileRepo.EXPECT().FindByUserID(ctx, userID).Return(nil, repository.ErrProfileNotFound)

			_ = fn(mockFactory)
		}).
		Return(errors.Wrap(domainerrors.ErrProfileNotFound, "profile not found"))

	_, err := fx.service.GetProfile(ctx, userID)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrProfileNotFound))
}

func TestProfileService_UpsertProfile_Success(t *testing.T) {
	fx := createTestProfileService(t)

	ctx := context.Background()
	userID := uuid.New()
	input := &usecase.UpsertProfileInput{
		Name:       "Taro",
		Newsletter: true,
	}

	existingUser := &entity.User{
		ID:    userID,
		Email: "taro@example.com",
	}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(ctx context.Context, fn func(repository.RepositoryFactory) error) {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)
			mockProfileRepo := mockRepo.NewMockProfileRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockFactory.EXPECT().ProfileRepo().Return(mockProfileRepo)
			mockUserRepo.EXPECT().FindByID(ctx, userID).Return(existingUser, nil)
			mockProfileRepo.EXPECT().Upsert(ctx, mock.AnythingOfType("*entity.Profile")).Return(nil)

			_ = fn(mockFactory)
		}).
		Return(nil)

	profile, err := fx.service.UpsertProfile(ctx, userID, input)

	require.NoError(t, err)
	assert.Equal(t, userID, profile.UserID)
	assert.Equal(t, "Taro", profile.Name)
	assert.True(t, profile.Newsletter)
	assert.False(t, profile.UpdatedAt.IsZero())
}

func TestProfileService_UpsertProfile_UserNotFound(t *testing.T) {
	fx := createTestProfileService(t)

	ctx := context.Background()
	userID := uuid.New()
	input := &usecase.UpsertProfileInput{Name: "Nobody"}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Run(func(ctx context.Context, fn func(repository.RepositoryFactory) error) {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			mockUserRepo := mockRepo.NewMockUserRepository(t)

			mockFactory.EXPECT().UserRepo().Return(mockUserRepo)
			mockUserRepo.EXPECT().FindByID(ctx, userID).Return(nil, repository.ErrUserNotFound)

			_ = fn(mockFactory)
		}).
		Return(errors.Wrap(domainerrors.ErrUserNotFound, "user not found"))

	_, err := fx.service.UpsertProfile(ctx, userID, input)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, domainerrors.ErrUserNotFound))
}

func TestProfileService_NilInputRejected(t *testing.T) {
	fx := createTestProfileService(t)

	ctx := context.Background()

	assert.NotPanics(t, func() {
		_, err := fx.service.UpsertProfile(ctx, uuid.New(), nil)
		assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	})
}
