// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"encore/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrOrderNotFound is returned when an order does not exist or is not
// visible to the requesting owner.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepository defines the standard operations for music order persistence.
// Every operation is scoped by the owning user; an order is never
// readable or writable outside its ownership scope.
type OrderRepository interface {
	// Create persists a new order.
	Create(ctx context.Context, order *entity.Order) error

	// FindByID retrieves a single order owned by ownerID.
	FindByID(ctx context.Context, ownerID, orderID uuid.UUID) (*entity.Order, error)

	// FindByOwner retrieves all orders owned by ownerID, newest first.
	FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]*entity.Order, error)

	// Update modifies the mutable fields of an order owned by ownerID.
	Update(ctx context.Context, order *entity.Order) error

	// Delete removes an order owned by ownerID. The delete is final.
	Delete(ctx context.Context, ownerID, orderID uuid.UUID) error

	// DeleteByOwner removes every order owned by ownerID.
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error
}
