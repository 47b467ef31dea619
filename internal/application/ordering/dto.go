package ordering

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopline/backend/internal/domain/ordering"
	"github.com/shopline/backend/internal/domain/shared"
)

// CreateOrderItemInput represents a line in the create order request.
// Quantity is accepted as a raw number and coerced: floored, minimum 1.
type CreateOrderItemInput struct {
	ProductID string  `json:"product_id" binding:"required,uuid"`
	SizeID    string  `json:"size_id" binding:"required,uuid"`
	ColorID   string  `json:"color_id" binding:"required,uuid"`
	Quantity  float64 `json:"quantity" binding:"required"`
}

// CoercedQuantity returns the effective integer quantity for the line
func (i CreateOrderItemInput) CoercedQuantity() int {
	qty := int(math.Floor(i.Quantity))
	if qty < 1 {
		qty = 1
	}
	return qty
}

// ShippingInfoInput represents the delivery address on order requests
type ShippingInfoInput struct {
	Name       string `json:"name" binding:"required,min=1,max=100"`
	Phone      string `json:"phone" binding:"required,min=1,max=30"`
	Address    string `json:"address" binding:"required,min=1,max=255"`
	City       string `json:"city" binding:"required,min=1,max=100"`
	PostalCode string `json:"postal_code" binding:"required,min=1,max=20"`
}

func (i ShippingInfoInput) toDomain() ordering.ShippingInfo {
	return ordering.ShippingInfo{
		Name:       i.Name,
		Phone:      i.Phone,
		Address:    i.Address,
		City:       i.City,
		PostalCode: i.PostalCode,
	}
}

// CreateOrderRequest represents a request to place an order
type CreateOrderRequest struct {
	UserID   string                 `json:"user_id" binding:"required,uuid"`
	Items    []CreateOrderItemInput `json:"items" binding:"required,min=1,dive"`
	Shipping ShippingInfoInput      `json:"shipping" binding:"required"`
	Comment  string                 `json:"comment" binding:"max=500"`

	// IdempotencyKey may come from the body or the Idempotency-Key header;
	// the handler lets the header win when both are set
	IdempotencyKey string `json:"idempotency_key" binding:"omitempty,max=100"`
}

// UpdateOrderRequest represents a request to update an order. Nil fields are
// left untouched. Items, when present, replaces the full item list.
type UpdateOrderRequest struct {
	Status         *string                `json:"status" binding:"omitempty"`
	TrackingNumber *string                `json:"tracking_number" binding:"omitempty,max=100"`
	Shipping       *ShippingInfoInput     `json:"shipping"`
	Comment        *string                `json:"comment" binding:"omitempty,max=500"`
	Items          []CreateOrderItemInput `json:"items" binding:"omitempty,min=1,dive"`
}

// UpdateOrderStatusRequest represents a status transition request
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderListFilter represents filter options for order lists
type OrderListFilter struct {
	Status   string `form:"status"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// OrderItemResponse represents an order line in API responses. The stock
// snapshot fields are only populated for admin callers.
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	SizeID      uuid.UUID       `json:"size_id"`
	ColorID     uuid.UUID       `json:"color_id"`
	ProductName string          `json:"product_name"`
	SizeLabel   string          `json:"size_label"`
	ColorName   string          `json:"color_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`

	StockBeforePurchase *int `json:"stock_before_purchase,omitempty"`
	StockAtPurchase     *int `json:"stock_at_purchase,omitempty"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID                    uuid.UUID           `json:"id"`
	UserID                uuid.UUID           `json:"user_id"`
	Items                 []OrderItemResponse `json:"items"`
	Total                 decimal.Decimal     `json:"total"`
	Status                string              `json:"status"`
	TrackingNumber        string              `json:"tracking_number,omitempty"`
	Shipping              ShippingInfoInput   `json:"shipping"`
	Comment               string              `json:"comment,omitempty"`
	CountedForBestsellers *bool               `json:"counted_for_bestsellers,omitempty"`
	StatusChangedAt       time.Time           `json:"status_changed_at"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

// ToOrderResponse converts an order to the user-facing response, which omits
// the stock snapshots and internal flags.
func ToOrderResponse(order *ordering.Order) OrderResponse {
	return toOrderResponse(order, false)
}

// ToAdminOrderResponse converts an order to the admin response, snapshots included
func ToAdminOrderResponse(order *ordering.Order) OrderResponse {
	return toOrderResponse(order, true)
}

func toOrderResponse(order *ordering.Order, admin bool) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for idx := range order.Items {
		item := &order.Items[idx]
		resp := OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			SizeID:      item.SizeID,
			ColorID:     item.ColorID,
			ProductName: item.ProductName,
			SizeLabel:   item.SizeLabel,
			ColorName:   item.ColorName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal(),
		}
		if admin {
			before := item.StockBeforePurchase
			at := item.StockAtPurchase
			resp.StockBeforePurchase = &before
			resp.StockAtPurchase = &at
		}
		items = append(items, resp)
	}

	resp := OrderResponse{
		ID:     order.ID,
		UserID: order.UserID,
		Items:  items,
		Total:  order.Total,
		Status: order.Status.String(),
		Shipping: ShippingInfoInput{
			Name:       order.Shipping.Name,
			Phone:      order.Shipping.Phone,
			Address:    order.Shipping.Address,
			City:       order.Shipping.City,
			PostalCode: order.Shipping.PostalCode,
		},
		TrackingNumber:  order.TrackingNumber,
		Comment:         order.Comment,
		StatusChangedAt: order.StatusChangedAt,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	if admin {
		counted := order.CountedForBestsellers
		resp.CountedForBestsellers = &counted
	}
	return resp
}

// ToDomainFilter converts an OrderListFilter to a shared filter
func (f OrderListFilter) ToDomainFilter() shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	return filter
}
