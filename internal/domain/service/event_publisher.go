package service

import (
	"context"
)

// Mutation kinds carried by OrderMutationEvent.
const (
	MutationCreate = "create"
	MutationUpdate = "update"
	MutationDelete = "delete"
	// MutationPurge marks a whole-account wipe; OrderID is empty.
	MutationPurge = "purge"
)

// OrderMutationEvent is the coarse invalidation event published after a
// successful order write. It carries no order payload: consumers react
// by refetching the owner's collection, never by patching.
type OrderMutationEvent struct {
	RequestID string `json:"request_id,omitempty"` // For distributed tracing
	OwnerID   string `json:"owner_id"`
	OrderID   string `json:"order_id,omitempty"` // Empty for whole-account invalidations
	Kind      string `json:"kind"`               // "create", "update", "delete" or "purge"
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishOrderMutation publishes an order invalidation event for other instances
	PublishOrderMutation(ctx context.Context, event *OrderMutationEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
