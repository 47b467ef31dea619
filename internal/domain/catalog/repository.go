package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shopline/backend/internal/domain/shared"
)

// ProductRepository defines the persistence contract for Product aggregates
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds multiple products by their IDs
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// FindBySKU finds a product by its SKU
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindAll finds all products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// FindVariant finds a single variant row by its natural key
	FindVariant(ctx context.Context, productID, sizeID, colorID uuid.UUID) (*Variant, error)

	// AdjustVariantStock applies a relative stock change to a variant row as a
	// single atomic statement and returns the stock value after the change.
	// The delta may drive stock negative; callers decide whether to compensate.
	AdjustVariantStock(ctx context.Context, productID, sizeID, colorID uuid.UUID, delta int) (int, error)

	// SetVariantStock overwrites a variant's stock with an absolute value
	SetVariantStock(ctx context.Context, productID, sizeID, colorID uuid.UUID, stock int) error

	// IncrementSalesCount atomically adds to a product's sales counter
	IncrementSalesCount(ctx context.Context, productID uuid.UUID, delta int64) error

	// Save creates or updates a product with its variants
	Save(ctx context.Context, product *Product) error

	// Delete deletes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// Count returns the number of products matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// VariantLedgerRepository defines the persistence contract for the
// append-only variant ledger. Entries are only ever created and read.
type VariantLedgerRepository interface {
	// FindByID finds a ledger entry by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*VariantLedgerEntry, error)

	// FindByProduct finds entries for a product, newest first
	FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]VariantLedgerEntry, error)

	// FindByVariantKey finds entries for a specific variant, newest first
	FindByVariantKey(ctx context.Context, productID uuid.UUID, variantKey string, filter shared.Filter) ([]VariantLedgerEntry, error)

	// FindByDateRange finds entries recorded within a time window
	FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]VariantLedgerEntry, error)

	// Create appends a new entry (no update or delete allowed)
	Create(ctx context.Context, entry *VariantLedgerEntry) error

	// Count returns the number of entries matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
