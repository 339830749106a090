package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"encore/internal/broadcast"
	"encore/internal/collection"
	"encore/internal/domain/entity"
	domainerrors "encore/internal/domain/errors"
	"encore/internal/domain/repository"
	mockRepo "encore/internal/mocks/repository"
	mockService "encore/internal/mocks/service"
	"encore/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// orderServiceFixtures holds all test dependencies for order service tests.
type orderServiceFixtures struct {
	service     usecase.OrderUsecase
	txManager   *mockRepo.MockTransactionManager
	orderRepo   *mockRepo.MockOrderRepository
	publisher   *mockService.MockEventPublisher
	qrService   *mockService.MockQRCodeService
	bus         *broadcast.Broadcaster
	collections *collection.Manager
}

func createTestOrderService(t *testing.T) orderServiceFixtures {
	txManager := mockRepo.NewMockTransactionManager(t)
	orderRepo := mockRepo.NewMockOrderRepository(t)
	publisher := mockService.NewMockEventPublisher(t)
	qrService := mockService.NewMockQRCodeService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	bus := broadcast.New()
	collections := collection.NewManager(context.Background(), bus, txManager, logger)
	t.Cleanup(collections.Close)

	service := NewOrderService(OrderServiceParams{
		TxManager:   txManager,
		OrderRepo:   orderRepo,
		Collections: collections,
		Bus:         bus,
		Publisher:   publisher,
		QRService:   qrService,
		Logger:      logger,
	})

	return orderServiceFixtures{
		service:     service,
		txManager:   txManager,
		orderRepo:   orderRepo,
		publisher:   publisher,
		qrService:   qrService,
		bus:         bus,
		collections: collections,
	}
}

func validDraftInput() *usecase.OrderDraftInput {
	return &usecase.OrderDraftInput{
		Theme:          " 夏の夕暮れ ",
		Genres:         []string{"ポップス", "ロック"},
		InstrumentsRaw: "ピアノ, ギター",
		HasLyrics:      false,
		LyricsContent:  "消えるはずの歌詞",
		Notes:          "テンポは遅めで",
	}
}

func TestOrderService_CreateOrder_Success(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	ownerID := uuid.New()

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			txOrderRepo := mockRepo.NewMockOrderRepository(t)

			mockFactory.EXPECT().OrderRepo().Return(txOrderRepo)
			txOrderRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Order")).Return(nil)

			return fn(mockFactory)
		})
	fx.publisher.EXPECT().
		PublishOrderMutation(ctx, mock.AnythingOfType("*service.OrderMutationEvent")).
		Return(nil)

	output, err := fx.service.CreateOrder(ctx, ownerID, validDraftInput())

	require.NoError(t, err)
	order := output.Order
	assert.Equal(t, ownerID, order.OwnerID)
	assert.Equal(t, entity.OrderStatusPending, order.Status)
	assert.Equal(t, "夏の夕暮れ", order.Theme)
	assert.Equal(t, []string{"ポップス", "ロック"}, order.Genres)
	assert.Equal(t, []string{"ピアノ", "ギター"}, order.Instruments)
	assert.Nil(t, order.LyricsContent)
	assert.Equal(t, order.CreatedAt, order.UpdatedAt)

	// The in-process invalidation broadcast fires after the commit.
	assert.Equal(t, uint64(1), fx.bus.Seq())
}

func TestOrderService_CreateOrder_ValidationFailures(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	ownerID := uuid.New()

	testCases := []struct {
		name        string
		mutate      func(*usecase.OrderDraftInput)
		expectedErr error
	}{
		{
			name:        "empty theme",
			mutate:      func(in *usecase.OrderDraftInput) { in.Theme = "   " },
			expectedErr: domainerrors.ErrEmptyTheme,
		},
		{
			name:        "no genre selected",
			mutate:      func(in *usecase.OrderDraftInput) { in.Genres = nil },
			expectedErr: domainerrors.ErrNoGenreSelected,
		},
		{
			name:        "full-width delimiter",
			mutate:      func(in *usecase.OrderDraftInput) { in.InstrumentsRaw = "ピアノ，ギター" },
			expectedErr: domainerrors.ErrWrongDelimiter,
		},
		{
			name: "too many catalog genres",
			mutate: func(in *usecase.OrderDraftInput) {
				in.Genres = []string{"ポップス", "ロック", "ジャズ", "EDM"}
			},
			expectedErr: domainerrors.ErrGenreLimitExceeded,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			input := validDraftInput()
			tc.mutate(input)

			_, err := fx.service.CreateOrder(ctx, ownerID, input)

			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.expectedErr))
		})
	}

	// No write, no broadcast.
	assert.Equal(t, uint64(0), fx.bus.Seq())
}

func TestOrderService_NilInputRejected(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	ownerID := uuid.New()
	orderID := uuid.New()

	assert.NotPanics(t, func() {
		_, err := fx.service.CreateOrder(ctx, ownerID, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	})

	assert.NotPanics(t, func() {
		_, err := fx.service.UpdateOrder(ctx, ownerID, orderID, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	})

	assert.NotPanics(t, func() {
		err := fx.service.DeleteOrder(ctx, ownerID, orderID, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrDeleteNotConfirmed))
	})

	// No write, no broadcast.
	assert.Equal(t, uint64(0), fx.bus.Seq())
}

func TestOrderService_CreateOrder_DuplicateGenresCollapsed(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	ownerID := uuid.New()

	input := validDraftInput()
	input.Genres = []string{"ロック", "ロック", "ロック"}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			txOrderRepo := mockRepo.NewMockOrderRepository(t)

			mockFactory.EXPECT().OrderRepo().Return(txOrderRepo)
			txOrderRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Order")).Return(nil)

			return fn(mockFactory)
		})
	fx.publisher.EXPECT().
		PublishOrderMutation(ctx, mock.AnythingOfType("*service.OrderMutationEvent")).
		Return(nil)

	output, err := fx.service.CreateOrder(ctx, ownerID, input)

	require.NoError(t, err)
	// Repeated labels collapse to one entry before persisting.
	assert.Equal(t, []string{"ロック"}, output.Order.Genres)
}

func TestOrderService_CreateOrder_ExtraFreeGenresDropped(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	ownerID := uuid.New()

	input := validDraftInput()
	input.Genres = []string{"ロック", "自作ジャンルA", "自作ジャンルB"}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			txOrderRepo := mockRepo.NewMockOrderRepository(t)

			mockFactory.EXPECT().OrderRepo().Return(txOrderRepo)
			txOrderRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Order")).Return(nil)

			return fn(mockFactory)
		})
	fx.publisher.EXPECT().
		PublishOrderMutation(ctx, mock.AnythingOfType("*service.OrderMutationEvent")).
		Return(nil)

	output, err := fx.service.CreateOrder(ctx, ownerID, input)

	require.NoError(t, err)
	// Only the first free-form label survives re-validation.
	assert.Equal(t, []string{"ロック", "自作ジャンルA"}, output.Order.Genres)
}

func TestOrderService_CreateOrder_PublishFailureDoesNotFail(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	ownerID := uuid.New()

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			txOrderRepo := mockRepo.NewMockOrderRepository(t)

			mockFactory.EXPECT().OrderRepo().Return(txOrderRepo)
			txOrderRepo.EXPECT().Create(ctx, mock.AnythingOfType("*entity.Order")).Return(nil)

			return fn(mockFactory)
		})
	fx.publisher.EXPECT().
		PublishOrderMutation(ctx, mock.AnythingOfType("*service.OrderMutationEvent")).
		Return(errors.New("broker unavailable"))

	output, err := fx.service.CreateOrder(ctx, ownerID, validDraftInput())

	require.NoError(t, err)
	assert.NotNil(t, output.Order)
	assert.Equal(t, uint64(1), fx.bus.Seq())
}

func TestOrderService_ListOrders_FetchesOnFirstAccess(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	ownerID := uuid.New()
	stored := []*entity.Order{
		{ID: uuid.New(), OwnerID: ownerID, Theme: "冬の朝"},
	}

	fx.txManager.EXPECT().
		Execute(mock.Anything, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			txOrderRepo := mockRepo.NewMockOrderRepository(t)

			mockFactory.EXPECT().OrderRepo().Return(txOrderRepo)
			txOrderRepo.EXPECT().FindByOwner(mock.Anything, ownerID).Return(stored, nil)

			return fn(mockFactory)
		}).
		Once()

	output, err := fx.service.ListOrders(ctx, ownerID, &usecase.ListOrdersInput{})

	require.NoError(t, err)
	assert.Equal(t, collection.StateLoaded, output.Snapshot.State)
	assert.Equal(t, stored, output.Snapshot.Orders)

	// A second read without a trigger serves the cached snapshot; the
	// single Once() expectation above would fail on a second fetch.
	cached, err := fx.service.ListOrders(ctx, ownerID, &usecase.ListOrdersInput{Refresh: false})

	require.NoError(t, err)
	assert.Equal(t, stored, cached.Snapshot.Orders)
}

func TestOrderService_ListOrders_FailedRefetchKeepsOrders(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	ownerID := uuid.New()
	stored := []*entity.Order{
		{ID: uuid.New(), OwnerID: ownerID, Theme: "春の風"},
	}

	fx.txManager.EXPECT().
		Execute(mock.Anything, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			txOrderRepo := mockRepo.NewMockOrderRepository(t)

			mockFactory.EXPECT().OrderRepo().Return(txOrderRepo)
			txOrderRepo.EXPECT().FindByOwner(mock.Anything, ownerID).Return(stored, nil)

			return fn(mockFactory)
		}).
		Once()

	first, err := fx.service.ListOrders(ctx, ownerID, &usecase.ListOrdersInput{})
	require.NoError(t, err)
	require.Equal(t, collection.StateLoaded, first.Snapshot.State)

	fx.txManager.EXPECT().
		Execute(mock.Anything, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		Return(errors.New("database down")).
		Once()

	second, err := fx.service.ListOrders(ctx, ownerID, &usecase.ListOrdersInput{Refresh: true})

	require.NoError(t, err)
	assert.Equal(t, collection.StateFailed, second.Snapshot.State)
	assert.Error(t, second.Snapshot.Err)
	// The previous successful fetch is still served.
	assert.Equal(t, stored, second.Snapshot.Orders)
}

func TestOrderService_GetOrder(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	ownerID := uuid.New()
	orderID := uuid.New()

	t.Run("success", func(t *testing.T) {
		expected := &entity.Order{ID: orderID, OwnerID: ownerID, Theme: "卒業式"}
		fx.orderRepo.EXPECT().FindByID(ctx, ownerID, orderID).Return(expected, nil).Once()

		output, err := fx.service.GetOrder(ctx, ownerID, orderID)

		require.NoError(t, err)
		assert.Equal(t, expected, output.Order)
	})

	t.Run("not found", func(t *testing.T) {
		fx.orderRepo.EXPECT().FindByID(ctx, ownerID, orderID).Return(nil, repository.ErrOrderNotFound).Once()

		_, err := fx.service.GetOrder(ctx, ownerID, orderID)

		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrOrderNotFound))
	})
}

func TestOrderService_UpdateOrder_Success(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	ownerID := uuid.New()
	orderID := uuid.New()
	createdAt := time.Now().Add(-24 * time.Hour)

	existing := &entity.Order{
		ID:          orderID,
		OwnerID:     ownerID,
		Theme:       "古いテーマ",
		Genres:      []string{"ジャズ"},
		Instruments: []string{"サックス"},
		Status:      entity.OrderStatusInProgress,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	fx.txManager.EXPECT().
		Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
		RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
			mockFactory := mockRepo.NewMockRepositoryFactory(t)
			txOrderRepo := mockRepo.NewMockOrderRepository(t)

			mockFactory.EXPECT().OrderRepo().Return(txOrderRepo)
			txOrderRepo.EXPECT().FindByID(ctx, ownerID, orderID).Return(existing, nil)
			txOrderRepo.EXPECT().Update(ctx, mock.AnythingOfType("*entity.Order")).Return(nil)

			return fn(mockFactory)
		})
	fx.publisher.EXPECT().
		PublishOrderMutation(ctx, mock.AnythingOfType("*service.OrderMutationEvent")).
		Return(nil)

	input := validDraftInput()
	input.HasLyrics = true
	input.LyricsContent = "新しい歌詞"

	output, err := fx.service.UpdateOrder(ctx, ownerID, orderID, input)

	require.NoError(t, err)
	order := output.Order
	assert.Equal(t, "夏の夕暮れ", order.Theme)
	assert.True(t, order.HasLyrics)
	require.NotNil(t, order.LyricsContent)
	assert.Equal(t, "新しい歌詞", *order.LyricsContent)
	// Status and creation timestamp are not client-editable.
	assert.Equal(t, entity.OrderStatusInProgress, order.Status)
	assert.Equal(t, createdAt, order.CreatedAt)
	assert.True(t, order.UpdatedAt.After(createdAt))
	assert.Equal(t, uint64(1), fx.bus.Seq())
}

func TestOrderService_DeleteOrder(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	ownerID := uuid.New()
	orderID := uuid.New()

	t.Run("requires confirmation", func(t *testing.T) {
		err := fx.service.DeleteOrder(ctx, ownerID, orderID, &usecase.DeleteOrderInput{Confirm: false})

		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrDeleteNotConfirmed))
		assert.Equal(t, uint64(0), fx.bus.Seq())
	})

	t.Run("success", func(t *testing.T) {
		fx.txManager.EXPECT().
			Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
			RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
				mockFactory := mockRepo.NewMockRepositoryFactory(t)
				txOrderRepo := mockRepo.NewMockOrderRepository(t)

				mockFactory.EXPECT().OrderRepo().Return(txOrderRepo)
				txOrderRepo.EXPECT().Delete(ctx, ownerID, orderID).Return(nil)

				return fn(mockFactory)
			}).
			Once()
		fx.publisher.EXPECT().
			PublishOrderMutation(ctx, mock.AnythingOfType("*service.OrderMutationEvent")).
			Return(nil).
			Once()

		err := fx.service.DeleteOrder(ctx, ownerID, orderID, &usecase.DeleteOrderInput{Confirm: true})

		require.NoError(t, err)
		assert.Equal(t, uint64(1), fx.bus.Seq())
	})

	t.Run("not found", func(t *testing.T) {
		fx.txManager.EXPECT().
			Execute(ctx, mock.AnythingOfType("func(repository.RepositoryFactory) error")).
			RunAndReturn(func(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
				mockFactory := mockRepo.NewMockRepositoryFactory(t)
				txOrderRepo := mockRepo.NewMockOrderRepository(t)

				mockFactory.EXPECT().OrderRepo().Return(txOrderRepo)
				txOrderRepo.EXPECT().Delete(ctx, ownerID, orderID).Return(repository.ErrOrderNotFound)

				return fn(mockFactory)
			}).
			Once()

		err := fx.service.DeleteOrder(ctx, ownerID, orderID, &usecase.DeleteOrderInput{Confirm: true})

		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrOrderNotFound))
	})
}

func TestOrderService_GetOrderQR(t *testing.T) {
	fx := createTestOrderService(t)

	ctx := context.Background()
	ownerID := uuid.New()
	orderID := uuid.New()

	t.Run("success", func(t *testing.T) {
		existing := &entity.Order{ID: orderID, OwnerID: ownerID}
		png := []byte{0x89, 0x50, 0x4E, 0x47}

		fx.orderRepo.EXPECT().FindByID(ctx, ownerID, orderID).Return(existing, nil).Once()
		fx.qrService.EXPECT().GenerateOrderQR(orderID).Return(png, nil).Once()

		data, err := fx.service.GetOrderQR(ctx, ownerID, orderID)

		require.NoError(t, err)
		assert.Equal(t, png, data)
	})

	t.Run("order not found", func(t *testing.T) {
		fx.orderRepo.EXPECT().FindByID(ctx, ownerID, orderID).Return(nil, repository.ErrOrderNotFound).Once()

		_, err := fx.service.GetOrderQR(ctx, ownerID, orderID)

		require.Error(t, err)
		assert.True(t, errors.Is(err, domainerrors.ErrOrderNotFound))
	})
}
