package alerting

import (
	"github.com/google/uuid"

	"github.com/shopline/backend/internal/domain/shared"
)

// EventTypeAlertCreated is published on the in-process bus whenever a new
// alert is persisted, so admin-facing listeners can react immediately.
const EventTypeAlertCreated = "alerting.alert.created"

// AlertCreatedEvent carries a freshly created alert to subscribers
type AlertCreatedEvent struct {
	shared.BaseDomainEvent
	AlertType  AlertType  `json:"alert_type"`
	ProductID  *uuid.UUID `json:"product_id,omitempty"`
	OrderID    *uuid.UUID `json:"order_id,omitempty"`
	VariantKey string     `json:"variant_key,omitempty"`
	Message    string     `json:"message"`
}

// NewAlertCreatedEvent creates a new AlertCreatedEvent
func NewAlertCreatedEvent(alert *Alert) *AlertCreatedEvent {
	return &AlertCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAlertCreated, "Alert", alert.ID),
		AlertType:       alert.Type,
		ProductID:       alert.ProductID,
		OrderID:         alert.OrderID,
		VariantKey:      alert.VariantKey,
		Message:         alert.Message,
	}
}
