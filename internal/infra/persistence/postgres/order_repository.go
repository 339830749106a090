// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"encore/internal/domain/entity"
	domainerrors "encore/internal/domain/errors"
	"encore/internal/domain/repository"
	"encore/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// orderRepository implements the domain.OrderRepository interface.
// Every query is scoped by owner_id so an order is never visible
// outside its ownership scope.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository is the constructor for orderRepository.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// Create persists a new order.
func (repo *orderRepository) Create(ctx context.Context, order *entity.Order) error {
	orderM := fromOrderDomain(order)

	if err := repo.db.WithContext(ctx).Create(orderM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrOrderCreationFailed.WrapMessage("invalid owner reference")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrOrderCreationFailed.WrapMessage("missing required order information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create order")
	}

	order.ID = orderM.ID
	order.CreatedAt = orderM.CreatedAt
	order.UpdatedAt = orderM.UpdatedAt

	return nil
}

// FindByID retrieves a single order owned by ownerID.
func (repo *orderRepository) FindByID(ctx context.Context, ownerID, orderID uuid.UUID) (*entity.Order, error) {
	var orderM model.OrderModel
	err := repo.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", orderID, ownerID).
		First(&orderM).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrderNotFound
		}

		return nil, errors.WithStack(err)
	}

	return toOrderDomain(&orderM), nil
}

// FindByOwner retrieves all orders owned by ownerID, newest first.
func (repo *orderRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Order, error) {
	var orderMs []model.OrderModel
	err := repo.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&orderMs).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}

	orders := make([]*entity.Order, 0, len(orderMs))
	for i := range orderMs {
		orders = append(orders, toOrderDomain(&orderMs[i]))
	}

	return orders, nil
}

// Update modifies the mutable fields of an order owned by ownerID.
func (repo *orderRepository) Update(ctx context.Context, order *entity.Order) error {
	orderM := fromOrderDomain(order)

	result := repo.db.WithContext(ctx).
		Model(&model.OrderModel{}).
		Where("id = ? AND owner_id = ?", order.ID, order.OwnerID).
		Updates(map[string]any{
			"theme":          orderM.Theme,
			"genres":         orderM.Genres,
			"instruments":    orderM.Instruments,
			"has_lyrics":     orderM.HasLyrics,
			"lyrics_content": orderM.LyricsContent,
			"notes":          orderM.Notes,
			"updated_at":     orderM.UpdatedAt,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update order")
	}
	if result.RowsAffected == 0 {
		return repository.ErrOrderNotFound
	}

	return nil
}

// Delete removes an order owned by ownerID. The delete is final.
func (repo *orderRepository) Delete(ctx context.Context, ownerID, orderID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", orderID, ownerID).
		Delete(&model.OrderModel{})
	if result.Error != nil {
		return errors.WithStack(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrOrderNotFound
	}

	return nil
}

// DeleteByOwner removes every order owned by ownerID.
func (repo *orderRepository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Delete(&model.OrderModel{}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete orders")
	}

	return nil
}

// --- Mapper Functions ---

// toOrderDomain converts a GORM OrderModel to a domain Order entity.
func toOrderDomain(data *model.OrderModel) *entity.Order {
	if data == nil {
		return nil
	}

	return &entity.Order{
		ID:            data.ID,
		OwnerID:       data.OwnerID,
		Theme:         data.Theme,
		Genres:        []string(data.Genres),
		Instruments:   []string(data.Instruments),
		HasLyrics:     data.HasLyrics,
		LyricsContent: data.LyricsContent,
		Notes:         data.Notes,
		Status:        entity.OrderStatus(data.Status),
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}

// fromOrderDomain converts a domain Order entity to a GORM OrderModel.
func fromOrderDomain(data *entity.Order) *model.OrderModel {
	if data == nil {
		return nil
	}

	return &model.OrderModel{
		ID:            data.ID,
		OwnerID:       data.OwnerID,
		Theme:         data.Theme,
		Genres:        pq.StringArray(data.Genres),
		Instruments:   pq.StringArray(data.Instruments),
		HasLyrics:     data.HasLyrics,
		LyricsContent: data.LyricsContent,
		Notes:         data.Notes,
		Status:        string(data.Status),
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
}
