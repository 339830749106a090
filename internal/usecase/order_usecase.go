// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"encore/internal/collection"
	"encore/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// OrderDraftInput carries the raw form values for creating or updating an order.
// Genres must already be a finalized selection (leaf names plus an optional
// free-form genre); InstrumentsRaw is the comma separated instrument field as typed.
type OrderDraftInput struct {
	Theme          string   `json:"theme"`
	Genres         []string `json:"genres"`
	InstrumentsRaw string   `json:"instruments"`
	HasLyrics      bool     `json:"has_lyrics"`
	LyricsContent  string   `json:"lyrics_content"`
	Notes          string   `json:"notes"`
}

// ListOrdersInput controls how the owner's order collection is served.
// Refresh marks a visibility trigger (first mount, tab re-focus) that
// forces a refetch even when no mutation has been observed.
type ListOrdersInput struct {
	Refresh bool
}

// DeleteOrderInput defines the data required to delete an order.
// Confirm must be true or the request is rejected.
type DeleteOrderInput struct {
	Confirm bool
}

// --- Output DTOs ---

// OrderOutput returns a single order.
type OrderOutput struct {
	Order *entity.Order
}

// ListOrdersOutput returns the owner's collection view snapshot.
// The snapshot carries the view state alongside the orders so the
// delivery layer can surface stale data with a failure indicator.
type ListOrdersOutput struct {
	Snapshot collection.Snapshot
}

// OrderUsecase defines the interface for commission order operations.
type OrderUsecase interface {
	CreateOrder(ctx context.Context, ownerID uuid.UUID, input *OrderDraftInput) (*OrderOutput, error)
	ListOrders(ctx context.Context, ownerID uuid.UUID, input *ListOrdersInput) (*ListOrdersOutput, error)
	GetOrder(ctx context.Context, ownerID, orderID uuid.UUID) (*OrderOutput, error)
	UpdateOrder(ctx context.Context, ownerID, orderID uuid.UUID, input *OrderDraftInput) (*OrderOutput, error)
	DeleteOrder(ctx context.Context, ownerID, orderID uuid.UUID, input *DeleteOrderInput) error
	GetOrderQR(ctx context.Context, ownerID, orderID uuid.UUID) ([]byte, error)
}
