package alerting

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopline/backend/internal/domain/alerting"
)

// AlertListFilter represents filter options for the alert list
type AlertListFilter struct {
	Unseen bool `form:"unseen"`
	Limit  int  `form:"limit" binding:"omitempty,min=1,max=200"`
}

// MarkSeenRequest marks a batch of alerts as seen. Empty IDs with All set
// marks everything.
type MarkSeenRequest struct {
	IDs []string `json:"ids" binding:"omitempty,dive,uuid"`
	All bool     `json:"all"`
}

// AlertResponse represents an alert in API responses
type AlertResponse struct {
	ID          uuid.UUID  `json:"id"`
	Type        string     `json:"type"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	VariantKey  string     `json:"variant_key,omitempty"`
	OrderID     *uuid.UUID `json:"order_id,omitempty"`
	OrderStatus string     `json:"order_status,omitempty"`
	Message     string     `json:"message"`
	Seen        bool       `json:"seen"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToAlertResponse converts an alert to its API representation
func ToAlertResponse(alert *alerting.Alert) AlertResponse {
	return AlertResponse{
		ID:          alert.ID,
		Type:        alert.Type.String(),
		ProductID:   alert.ProductID,
		VariantKey:  alert.VariantKey,
		OrderID:     alert.OrderID,
		OrderStatus: alert.OrderStatus,
		Message:     alert.Message,
		Seen:        alert.Seen,
		CreatedAt:   alert.CreatedAt,
	}
}
