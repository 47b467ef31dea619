package alerting

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shopline/backend/internal/domain/shared"
)

// AlertType classifies what an alert notifies about
type AlertType string

const (
	AlertTypeOutOfStockVariant AlertType = "OUT_OF_STOCK_VARIANT"
	AlertTypeLowStockVariant   AlertType = "LOW_STOCK_VARIANT"
	AlertTypeOrderStaleStatus  AlertType = "ORDER_STALE_STATUS"
	AlertTypeOrderCreated      AlertType = "ORDER_CREATED"
	AlertTypeOrderStatusChange AlertType = "ORDER_STATUS_CHANGED"
)

// String returns the string representation of AlertType
func (t AlertType) String() string {
	return string(t)
}

// IsValid returns true if the alert type is valid
func (t AlertType) IsValid() bool {
	switch t {
	case AlertTypeOutOfStockVariant,
		AlertTypeLowStockVariant,
		AlertTypeOrderStaleStatus,
		AlertTypeOrderCreated,
		AlertTypeOrderStatusChange:
		return true
	}
	return false
}

// IsStockAlert returns true for variant stock alerts
func (t AlertType) IsStockAlert() bool {
	return t == AlertTypeOutOfStockVariant || t == AlertTypeLowStockVariant
}

// Alert is an admin-facing notification. Alerts are created by the order flow,
// the catalog admin flow and the stale-order sweep; admins only ever flip Seen.
type Alert struct {
	shared.BaseEntity
	Type AlertType `gorm:"type:varchar(30);not null;index:idx_alert_type_time,priority:1"`

	// ProductID and VariantKey are set for stock alerts, OrderID for order
	// alerts. OrderStatus pins a stale alert to the status it fired for.
	ProductID   *uuid.UUID `gorm:"type:uuid;index"`
	VariantKey  string     `gorm:"type:varchar(80);index"`
	OrderID     *uuid.UUID `gorm:"type:uuid;index"`
	OrderStatus string     `gorm:"type:varchar(20)"`

	Message string `gorm:"type:varchar(500);not null"`
	Seen    bool   `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (Alert) TableName() string {
	return "alerts"
}

// NewVariantAlert creates a stock alert for a product variant
func NewVariantAlert(alertType AlertType, productID uuid.UUID, variantKey, message string) (*Alert, error) {
	if !alertType.IsStockAlert() {
		return nil, shared.NewDomainError("INVALID_ALERT_TYPE", "Not a variant stock alert type")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if strings.TrimSpace(variantKey) == "" {
		return nil, shared.NewDomainError("INVALID_VARIANT_KEY", "Variant key cannot be empty")
	}
	if strings.TrimSpace(message) == "" {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Alert message cannot be empty")
	}

	return &Alert{
		BaseEntity: shared.NewBaseEntity(),
		Type:       alertType,
		ProductID:  &productID,
		VariantKey: variantKey,
		Message:    message,
	}, nil
}

// NewOrderAlert creates an order lifecycle alert
func NewOrderAlert(alertType AlertType, orderID uuid.UUID, orderStatus, message string) (*Alert, error) {
	if alertType.IsStockAlert() || !alertType.IsValid() {
		return nil, shared.NewDomainError("INVALID_ALERT_TYPE", "Not an order alert type")
	}
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if strings.TrimSpace(message) == "" {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Alert message cannot be empty")
	}

	return &Alert{
		BaseEntity:  shared.NewBaseEntity(),
		Type:        alertType,
		OrderID:     &orderID,
		OrderStatus: orderStatus,
		Message:     message,
	}, nil
}

// MarkSeen marks the alert as seen
func (a *Alert) MarkSeen() {
	if a.Seen {
		return
	}
	a.Seen = true
	a.UpdatedAt = time.Now()
}
