// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"
	"time"

	"encore/internal/broadcast"
	"encore/internal/collection"
	deliverycontext "encore/internal/delivery/context"
	"encore/internal/domain/entity"
	domainerrors "encore/internal/domain/errors"
	"encore/internal/domain/genre"
	"encore/internal/domain/repository"
	"encore/internal/domain/service"
	"encore/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// orderService implements the OrderUsecase interface.
type orderService struct {
	txManager   repository.TransactionManager
	orderRepo   repository.OrderRepository
	collections *collection.Manager
	bus         *broadcast.Broadcaster
	publisher   service.EventPublisher
	qrService   service.QRCodeService
	logger      *slog.Logger
}

// OrderServiceParams holds dependencies for orderService, injected by Fx.
type OrderServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	OrderRepo   repository.OrderRepository
	Collections *collection.Manager
	Bus         *broadcast.Broadcaster
	Publisher   service.EventPublisher
	QRService   service.QRCodeService
	Logger      *slog.Logger
}

// NewOrderService is the constructor for orderService.
func NewOrderService(params OrderServiceParams) usecase.OrderUsecase {
	return &orderService{
		txManager:   params.TxManager,
		orderRepo:   params.OrderRepo,
		collections: params.Collections,
		bus:         params.Bus,
		publisher:   params.Publisher,
		qrService:   params.QRService,
		logger:      params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *orderService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// normalizeDraft validates and normalizes the raw form values into a
// persistable order. Genres are re-validated server-side even though the
// client submits a finalized selection.
func normalizeDraft(input *usecase.OrderDraftInput, now time.Time) (*entity.Order, error) {
	if input == nil {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "order input is required")
	}

	draft := entity.OrderDraft{
		Theme:          input.Theme,
		Genres:         input.Genres,
		InstrumentsRaw: input.InstrumentsRaw,
		HasLyrics:      input.HasLyrics,
		LyricsContent:  input.LyricsContent,
		Notes:          input.Notes,
	}

	order, err := draft.Normalize(now)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	sel := genre.Reconstruct(order.Genres)
	if len(sel.Leaves) > genre.MaxLeaves {
		return nil, errors.Wrap(domainerrors.ErrGenreLimitExceeded, "too many catalog genres selected")
	}
	order.Genres = genre.Finalize(sel)
	if len(order.Genres) == 0 {
		return nil, errors.Wrap(domainerrors.ErrNoGenreSelected, "genre selection empty after normalization")
	}

	return order, nil
}

// CreateOrder validates the draft and persists a new pending order.
func (srv *orderService) CreateOrder(ctx context.Context, ownerID uuid.UUID, input *usecase.OrderDraftInput) (*usecase.OrderOutput, error) {
	srv.log(ctx).Info("Creating order", slog.String("ownerID", ownerID.String()))

	order, err := normalizeDraft(input, time.Now())
	if err != nil {
		srv.log(ctx).Warn("Order draft rejected", slog.String("ownerID", ownerID.String()), slog.Any("error", err))

		return nil, errors.Wrap(err, "order draft validation failed")
	}

	order.ID = uuid.New()
	order.OwnerID = ownerID
	// Status is never client-controlled; every new order starts pending.
	order.Status = entity.OrderStatusPending
	order.CreatedAt = order.UpdatedAt

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.OrderRepo().Create(ctx, order); err != nil {
			return errors.Wrap(err, "failed to create order")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute order creation transaction", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute order creation transaction")
	}

	srv.notifyMutation(ctx, ownerID, order.ID.String(), service.MutationCreate)
	srv.log(ctx).Debug("Order created", slog.String("orderID", order.ID.String()))

	return &usecase.OrderOutput{Order: order}, nil
}

// ListOrders serves the owner's collection view. A refetch runs when the
// client signals a visibility trigger or the view has never loaded;
// otherwise the cached snapshot is returned as-is.
func (srv *orderService) ListOrders(ctx context.Context, ownerID uuid.UUID, input *usecase.ListOrdersInput) (*usecase.ListOrdersOutput, error) {
	view := srv.collections.Acquire(ownerID)

	snapshot := view.Snapshot()
	if (input != nil && input.Refresh) || snapshot.State == collection.StateIdle {
		snapshot = view.Refresh(ctx)
	}

	if snapshot.Err != nil {
		srv.log(ctx).Warn("Serving stale order collection",
			slog.String("ownerID", ownerID.String()),
			slog.Any("error", snapshot.Err),
		)
	}

	return &usecase.ListOrdersOutput{Snapshot: snapshot}, nil
}

// GetOrder retrieves a single order scoped to its owner.
func (srv *orderService) GetOrder(ctx context.Context, ownerID, orderID uuid.UUID) (*usecase.OrderOutput, error) {
	order, err := srv.orderRepo.FindByID(ctx, ownerID, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, errors.Wrap(domainerrors.ErrOrderNotFound, "order not found")
		}

		return nil, errors.Wrap(err, "failed to find order")
	}

	return &usecase.OrderOutput{Order: order}, nil
}

// UpdateOrder validates the draft and overwrites the order's editable fields.
func (srv *orderService) UpdateOrder(ctx context.Context, ownerID, orderID uuid.UUID, input *usecase.OrderDraftInput) (*usecase.OrderOutput, error) {
	srv.log(ctx).Info("Updating order", slog.String("ownerID", ownerID.String()), slog.String("orderID", orderID.String()))

	normalized, err := normalizeDraft(input, time.Now())
	if err != nil {
		srv.log(ctx).Warn("Order draft rejected", slog.String("orderID", orderID.String()), slog.Any("error", err))

		return nil, errors.Wrap(err, "order draft validation failed")
	}

	var updated *entity.Order
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		orderRepo := repoFactory.OrderRepo()

		order, err := orderRepo.FindByID(ctx, ownerID, orderID)
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return errors.Wrap(domainerrors.ErrOrderNotFound, "order not found")
			}

			return errors.Wrap(err, "failed to find order")
		}

		order.Theme = normalized.Theme
		order.Genres = normalized.Genres
		order.Instruments = normalized.Instruments
		order.HasLyrics = normalized.HasLyrics
		order.LyricsContent = normalized.LyricsContent
		order.Notes = normalized.Notes
		order.UpdatedAt = normalized.UpdatedAt

		if err := orderRepo.Update(ctx, order); err != nil {
			return errors.Wrap(err, "failed to update order")
		}
		updated = order

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute order update transaction", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to execute order update transaction")
	}

	srv.notifyMutation(ctx, ownerID, orderID.String(), service.MutationUpdate)

	return &usecase.OrderOutput{Order: updated}, nil
}

// DeleteOrder removes an order after an explicit confirmation.
func (srv *orderService) DeleteOrder(ctx context.Context, ownerID, orderID uuid.UUID, input *usecase.DeleteOrderInput) error {
	if input == nil || !input.Confirm {
		return errors.Wrap(domainerrors.ErrDeleteNotConfirmed, "order deletion requires confirmation")
	}

	srv.log(ctx).Info("Deleting order", slog.String("ownerID", ownerID.String()), slog.String("orderID", orderID.String()))

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.OrderRepo().Delete(ctx, ownerID, orderID); err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return errors.Wrap(domainerrors.ErrOrderNotFound, "order not found")
			}

			return errors.Wrap(err, "failed to delete order")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute order deletion transaction", slog.Any("error", err))

		return errors.Wrap(err, "failed to execute order deletion transaction")
	}

	srv.notifyMutation(ctx, ownerID, orderID.String(), service.MutationDelete)

	return nil
}

// GetOrderQR renders a QR code carrying the order id, after checking the
// order exists and belongs to the caller.
func (srv *orderService) GetOrderQR(ctx context.Context, ownerID, orderID uuid.UUID) ([]byte, error) {
	if _, err := srv.orderRepo.FindByID(ctx, ownerID, orderID); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, errors.Wrap(domainerrors.ErrOrderNotFound, "order not found")
		}

		return nil, errors.Wrap(err, "failed to find order")
	}

	png, err := srv.qrService.GenerateOrderQR(orderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate order QR code")
	}

	return png, nil
}

// notifyMutation raises the in-process invalidation broadcast and then
// publishes the mutation for external consumers. Publishing is best
// effort: a broker failure never rolls back the committed write.
func (srv *orderService) notifyMutation(ctx context.Context, ownerID uuid.UUID, orderID, kind string) {
	srv.bus.Raise()

	event := &service.OrderMutationEvent{
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		OwnerID:   ownerID.String(),
		OrderID:   orderID,
		Kind:      kind,
	}
	if err := srv.publisher.PublishOrderMutation(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish order mutation event",
			slog.String("kind", kind),
			slog.String("orderID", orderID),
			slog.Any("error", err),
		)
	}
}
