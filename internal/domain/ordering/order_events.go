package ordering

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopline/backend/internal/domain/shared"
)

// Event type constants for the ordering domain
const (
	EventTypeOrderCreated       = "ordering.order.created"
	EventTypeOrderStatusChanged = "ordering.order.status_changed"
	EventTypeOrderCancelled     = "ordering.order.cancelled"
)

// OrderCreatedEvent is emitted when a new order is placed
type OrderCreatedEvent struct {
	shared.BaseDomainEvent
	UserID    uuid.UUID       `json:"user_id"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

// NewOrderCreatedEvent creates a new OrderCreatedEvent
func NewOrderCreatedEvent(order *Order) *OrderCreatedEvent {
	return &OrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCreated, "Order", order.ID),
		UserID:          order.UserID,
		Total:           order.Total,
		ItemCount:       order.ItemCount(),
	}
}

// OrderStatusChangedEvent is emitted when an order moves to a new status
type OrderStatusChangedEvent struct {
	shared.BaseDomainEvent
	UserID    uuid.UUID   `json:"user_id"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
}

// NewOrderStatusChangedEvent creates a new OrderStatusChangedEvent
func NewOrderStatusChangedEvent(order *Order, oldStatus, newStatus OrderStatus) *OrderStatusChangedEvent {
	return &OrderStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderStatusChanged, "Order", order.ID),
		UserID:          order.UserID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// OrderCancelledEvent is emitted when a pending order is cancelled
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	UserID uuid.UUID `json:"user_id"`
}

// NewOrderCancelledEvent creates a new OrderCancelledEvent
func NewOrderCancelledEvent(order *Order) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, "Order", order.ID),
		UserID:          order.UserID,
	}
}
