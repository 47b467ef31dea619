package ordering

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopline/backend/internal/domain/catalog"
	"github.com/shopline/backend/internal/domain/shared"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusInvoiced  OrderStatus = "invoiced"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInvoiced, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// OrderItem represents a line in an order. UnitPrice and the two stock values
// are snapshots taken at purchase time and never recomputed afterwards.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `gorm:"type:uuid;not null"`
	SizeID    uuid.UUID `gorm:"type:uuid;not null"`
	ColorID   uuid.UUID `gorm:"type:uuid;not null"`

	ProductName string          `gorm:"type:varchar(200)"`
	SizeLabel   string          `gorm:"type:varchar(50)"`
	ColorName   string          `gorm:"type:varchar(50)"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	// Stock on the variant row as read just before and just after the
	// reconciler's decrement for this line.
	StockBeforePurchase int `gorm:"not null"`
	StockAtPurchase     int `gorm:"not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem creates a new order item
func NewOrderItem(orderID, productID, sizeID, colorID uuid.UUID, quantity int, unitPrice decimal.Decimal) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if sizeID == uuid.Nil || colorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Size and color are required")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &OrderItem{
		ID:        uuid.New(),
		OrderID:   orderID,
		ProductID: productID,
		SizeID:    sizeID,
		ColorID:   colorID,
		Quantity:  quantity,
		UnitPrice: unitPrice.Round(2),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// VariantKey returns the product-scoped variant key identifying this line.
// Size and color ids alone are not unique across products, so the product id
// is part of the key.
func (i *OrderItem) VariantKey() string {
	return LineKey(i.ProductID, i.SizeID, i.ColorID)
}

// LineKey builds the order-line key for a product variant.
func LineKey(productID, sizeID, colorID uuid.UUID) string {
	return productID.String() + "/" + catalog.VariantKey(sizeID, colorID)
}

// Subtotal returns quantity times unit price
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// UpdateQuantity changes the line quantity, keeping price and stock snapshots
func (i *OrderItem) UpdateQuantity(quantity int) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	i.Quantity = quantity
	i.UpdatedAt = time.Now()
	return nil
}

// SetStockSnapshots records the variant stock observed around the decrement
func (i *OrderItem) SetStockSnapshots(before, after int) {
	i.StockBeforePurchase = before
	i.StockAtPurchase = after
	i.UpdatedAt = time.Now()
}

// ShippingInfo holds the delivery address captured on the order
type ShippingInfo struct {
	Name       string `gorm:"type:varchar(100)"`
	Phone      string `gorm:"type:varchar(30)"`
	Address    string `gorm:"type:varchar(255)"`
	City       string `gorm:"type:varchar(100)"`
	PostalCode string `gorm:"type:varchar(20)"`
}

// Order represents a customer order aggregate root
type Order struct {
	shared.BaseAggregateRoot
	UserID         uuid.UUID `gorm:"type:uuid;not null;index:idx_order_user_idem,priority:1"`
	IdempotencyKey string    `gorm:"type:varchar(100);index:idx_order_user_idem,priority:2"`

	Items []OrderItem `gorm:"foreignKey:OrderID;references:ID"`

	Total    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status   OrderStatus     `gorm:"type:varchar(20);not null;index"`
	Shipping ShippingInfo    `gorm:"embedded;embeddedPrefix:shipping_"`

	TrackingNumber string `gorm:"type:varchar(100)"`
	Comment        string `gorm:"type:varchar(500)"`

	// CountedForBestsellers guards the one-time sales counter increment
	// performed on the first transition to invoiced.
	CountedForBestsellers bool `gorm:"not null;default:false"`

	StatusChangedAt time.Time `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order in pending status
func NewOrder(userID uuid.UUID, idempotencyKey string, shipping ShippingInfo) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	idempotencyKey = strings.TrimSpace(idempotencyKey)
	if len(idempotencyKey) > 100 {
		return nil, shared.NewDomainError("INVALID_IDEMPOTENCY_KEY", "Idempotency key cannot exceed 100 characters")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		IdempotencyKey:    idempotencyKey,
		Items:             make([]OrderItem, 0),
		Total:             decimal.Zero,
		Status:            OrderStatusPending,
		Shipping:          shipping,
		StatusChangedAt:   time.Now(),
	}

	order.AddDomainEvent(NewOrderCreatedEvent(order))

	return order, nil
}

// AddItem adds a line to the order. Lines for the same variant must be merged
// by the caller before adding; a duplicate variant key is rejected.
func (o *Order) AddItem(productID, sizeID, colorID uuid.UUID, quantity int, unitPrice decimal.Decimal) (*OrderItem, error) {
	key := LineKey(productID, sizeID, colorID)
	if o.ItemByVariant(key) != nil {
		return nil, shared.NewDomainError("DUPLICATE_VARIANT", "Variant already present in order")
	}

	item, err := NewOrderItem(o.ID, productID, sizeID, colorID, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.recalculateTotal()
	o.UpdatedAt = time.Now()

	return &o.Items[len(o.Items)-1], nil
}

// ItemByVariant returns the line for a variant key, or nil
func (o *Order) ItemByVariant(key string) *OrderItem {
	for idx := range o.Items {
		if o.Items[idx].VariantKey() == key {
			return &o.Items[idx]
		}
	}
	return nil
}

// ReplaceItems swaps the full item list and recomputes the total. Used by the
// item-level update path after the stock diff has been applied.
func (o *Order) ReplaceItems(items []OrderItem) {
	o.Items = items
	o.recalculateTotal()
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// ChangeStatus moves the order to the target status. Any of the five known
// statuses is accepted from any current status; only unknown values are
// rejected. Same-status changes are a no-op.
func (o *Order) ChangeStatus(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	if target == o.Status {
		return nil
	}

	old := o.Status
	now := time.Now()
	o.Status = target
	o.StatusChangedAt = now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderStatusChangedEvent(o, old, target))

	return nil
}

// Cancel cancels the order. Only pending orders can be cancelled; the caller
// restocks the lines in the same transaction.
func (o *Order) Cancel() error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Only pending orders can be cancelled")
	}

	now := time.Now()
	o.Status = OrderStatusCancelled
	o.StatusChangedAt = now
	o.UpdatedAt = now
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderCancelledEvent(o))

	return nil
}

// MarkCountedForBestsellers flips the one-time counting flag. Returns true if
// this call performed the flip, false if the order was already counted.
func (o *Order) MarkCountedForBestsellers() bool {
	if o.CountedForBestsellers {
		return false
	}
	o.CountedForBestsellers = true
	o.UpdatedAt = time.Now()
	return true
}

// SetTrackingNumber updates the tracking number
func (o *Order) SetTrackingNumber(tracking string) {
	o.TrackingNumber = tracking
	o.UpdatedAt = time.Now()
}

// SetShipping replaces the shipping info
func (o *Order) SetShipping(shipping ShippingInfo) {
	o.Shipping = shipping
	o.UpdatedAt = time.Now()
}

// SetComment updates the order comment
func (o *Order) SetComment(comment string) {
	o.Comment = comment
	o.UpdatedAt = time.Now()
}

// recalculateTotal recomputes the order total from its lines
func (o *Order) recalculateTotal() {
	total := decimal.Zero
	for idx := range o.Items {
		total = total.Add(o.Items[idx].Subtotal())
	}
	o.Total = total.Round(2)
}

// ItemCount returns the number of lines in the order
func (o *Order) ItemCount() int {
	return len(o.Items)
}

// TotalQuantity returns the sum of all line quantities
func (o *Order) TotalQuantity() int {
	total := 0
	for idx := range o.Items {
		total += o.Items[idx].Quantity
	}
	return total
}

// IsPending returns true if the order is pending
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// IsCancelled returns true if the order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// IsTerminal returns true if the order is delivered or cancelled
func (o *Order) IsTerminal() bool {
	return o.Status == OrderStatusDelivered || o.Status == OrderStatusCancelled
}
