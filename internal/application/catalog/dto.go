package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopline/backend/internal/domain/catalog"
)

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	SKU   string          `json:"sku" binding:"required,min=1,max=50"`
	Name  string          `json:"name" binding:"required,min=1,max=200"`
	Price decimal.Decimal `json:"price" binding:"required"`
}

// UpdatePriceRequest represents a base price change
type UpdatePriceRequest struct {
	Price decimal.Decimal `json:"price" binding:"required"`
	Actor string          `json:"actor" binding:"omitempty,max=100"`
}

// SetDiscountRequest configures a product's discount window
type SetDiscountRequest struct {
	Enabled bool            `json:"enabled"`
	Type    string          `json:"type" binding:"required_if=Enabled true,omitempty,oneof=PERCENT FIXED"`
	Value   decimal.Decimal `json:"value"`
	StartAt *time.Time      `json:"start_at"`
	EndAt   *time.Time      `json:"end_at"`
}

// AddVariantRequest adds a size x color variant to a product
type AddVariantRequest struct {
	SizeID    string `json:"size_id" binding:"required,uuid"`
	ColorID   string `json:"color_id" binding:"required,uuid"`
	SizeLabel string `json:"size_label" binding:"required,min=1,max=50"`
	ColorName string `json:"color_name" binding:"required,min=1,max=50"`
	Stock     int    `json:"stock" binding:"min=0"`
	Actor     string `json:"actor" binding:"omitempty,max=100"`
	Note      string `json:"note" binding:"omitempty,max=255"`
}

// EditVariantStockRequest changes a variant's stock. Mode ADD adds Quantity on
// top of the current stock, Mode SET overwrites it.
type EditVariantStockRequest struct {
	SizeID   string `json:"size_id" binding:"required,uuid"`
	ColorID  string `json:"color_id" binding:"required,uuid"`
	Mode     string `json:"mode" binding:"required,oneof=ADD SET"`
	Quantity int    `json:"quantity"`
	Actor    string `json:"actor" binding:"omitempty,max=100"`
	Note     string `json:"note" binding:"omitempty,max=255"`
}

// DeleteVariantRequest removes a variant from a product
type DeleteVariantRequest struct {
	SizeID  string `json:"size_id" binding:"required,uuid"`
	ColorID string `json:"color_id" binding:"required,uuid"`
	Actor   string `json:"actor" binding:"omitempty,max=100"`
	Note    string `json:"note" binding:"omitempty,max=255"`
}

// BulkFetchRequest asks for product summaries by ID
type BulkFetchRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,max=100,dive,uuid"`
}

// VariantResponse represents a variant in API responses
type VariantResponse struct {
	SizeID    uuid.UUID `json:"size_id"`
	ColorID   uuid.UUID `json:"color_id"`
	SizeLabel string    `json:"size_label"`
	ColorName string    `json:"color_name"`
	Stock     int       `json:"stock"`
}

// ProductSummaryResponse is the compact product view served to cart and
// checkout callers
type ProductSummaryResponse struct {
	ID             uuid.UUID         `json:"id"`
	SKU            string            `json:"sku"`
	Name           string            `json:"name"`
	Price          decimal.Decimal   `json:"price"`
	EffectivePrice decimal.Decimal   `json:"effective_price"`
	SalesCount     int64             `json:"sales_count"`
	Variants       []VariantResponse `json:"variants"`
}

// ToProductSummaryResponse converts a product to its summary representation
func ToProductSummaryResponse(product *catalog.Product, now time.Time) ProductSummaryResponse {
	variants := make([]VariantResponse, 0, len(product.Variants))
	for idx := range product.Variants {
		v := &product.Variants[idx]
		variants = append(variants, VariantResponse{
			SizeID:    v.SizeID,
			ColorID:   v.ColorID,
			SizeLabel: v.SizeLabel,
			ColorName: v.ColorName,
			Stock:     v.Stock,
		})
	}

	return ProductSummaryResponse{
		ID:             product.ID,
		SKU:            product.SKU,
		Name:           product.Name,
		Price:          product.Price,
		EffectivePrice: product.EffectivePrice(now),
		SalesCount:     product.SalesCount,
		Variants:       variants,
	}
}

// LedgerEntryResponse represents a ledger entry in API responses
type LedgerEntryResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	VariantKey    string          `json:"variant_key"`
	SizeLabel     string          `json:"size_label"`
	ColorName     string          `json:"color_name"`
	EventType     string          `json:"event_type"`
	Status        string          `json:"status"`
	PrevStock     int             `json:"prev_stock"`
	NewStock      int             `json:"new_stock"`
	PriceSnapshot decimal.Decimal `json:"price_snapshot"`
	Note          string          `json:"note,omitempty"`
	Actor         string          `json:"actor,omitempty"`
	RecordedAt    time.Time       `json:"recorded_at"`
}

// ToLedgerEntryResponse converts a ledger entry to its API representation
func ToLedgerEntryResponse(entry *catalog.VariantLedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:            entry.ID,
		ProductID:     entry.ProductID,
		VariantKey:    entry.VariantKey,
		SizeLabel:     entry.SizeLabel,
		ColorName:     entry.ColorName,
		EventType:     entry.EventType.String(),
		Status:        string(entry.Status),
		PrevStock:     entry.PrevStock,
		NewStock:      entry.NewStock,
		PriceSnapshot: entry.PriceSnapshot,
		Note:          entry.Note,
		Actor:         entry.Actor,
		RecordedAt:    entry.RecordedAt,
	}
}
