package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopline/backend/internal/domain/catalog"
	"github.com/shopline/backend/internal/domain/shared"
)

// GormVariantLedgerRepository implements VariantLedgerRepository using GORM.
// The ledger is append-only; there is no update or delete path.
type GormVariantLedgerRepository struct {
	db *gorm.DB
}

// NewGormVariantLedgerRepository creates a new GormVariantLedgerRepository
func NewGormVariantLedgerRepository(db *gorm.DB) *GormVariantLedgerRepository {
	return &GormVariantLedgerRepository{db: db}
}

// FindByID finds a ledger entry by its ID
func (r *GormVariantLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.VariantLedgerEntry, error) {
	var entry catalog.VariantLedgerEntry
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindByProduct finds all ledger entries for a product
func (r *GormVariantLedgerRepository) FindByProduct(ctx context.Context, productID uuid.UUID, filter shared.Filter) ([]catalog.VariantLedgerEntry, error) {
	var entries []catalog.VariantLedgerEntry
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&catalog.VariantLedgerEntry{}).Where("product_id = ?", productID),
		filter,
	)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByVariantKey finds all ledger entries for a single variant of a product
func (r *GormVariantLedgerRepository) FindByVariantKey(ctx context.Context, productID uuid.UUID, variantKey string, filter shared.Filter) ([]catalog.VariantLedgerEntry, error) {
	var entries []catalog.VariantLedgerEntry
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&catalog.VariantLedgerEntry{}).
			Where("product_id = ? AND variant_key = ?", productID, variantKey),
		filter,
	)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByDateRange finds ledger entries recorded within [start, end]
func (r *GormVariantLedgerRepository) FindByDateRange(ctx context.Context, start, end time.Time, filter shared.Filter) ([]catalog.VariantLedgerEntry, error) {
	var entries []catalog.VariantLedgerEntry
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&catalog.VariantLedgerEntry{}).
			Where("recorded_at >= ? AND recorded_at <= ?", start, end),
		filter,
	)

	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Create appends a ledger entry
func (r *GormVariantLedgerRepository) Create(ctx context.Context, entry *catalog.VariantLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Count counts ledger entries matching the filter
func (r *GormVariantLedgerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&catalog.VariantLedgerEntry{})
	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "event_type":
			query = query.Where("event_type = ?", value)
		case "variant_key":
			query = query.Where("variant_key = ?", value)
		}
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormVariantLedgerRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "event_type":
			query = query.Where("event_type = ?", value)
		case "variant_key":
			query = query.Where("variant_key = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("recorded_at DESC")
	}

	return query
}

// Ensure GormVariantLedgerRepository implements VariantLedgerRepository
var _ catalog.VariantLedgerRepository = (*GormVariantLedgerRepository)(nil)