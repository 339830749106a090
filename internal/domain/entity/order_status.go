// Package entity contains the core business objects of the project.
package entity

// OrderStatus represents the fulfillment state of a music order.
// It is assigned and advanced by the service, never by client drafts.
type OrderStatus string

const (
	// OrderStatusPending indicates a newly submitted order awaiting work.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusInProgress indicates an order currently being produced.
	OrderStatusInProgress OrderStatus = "in_progress"
	// OrderStatusCompleted indicates a delivered order.
	OrderStatusCompleted OrderStatus = "completed"
)

// String returns the string representation of the OrderStatus.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid checks if the OrderStatus is a valid value.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusCompleted:
		return true
	default:
		return false
	}
}
