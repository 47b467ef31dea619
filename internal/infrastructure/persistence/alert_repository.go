package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopline/backend/internal/domain/alerting"
	"github.com/shopline/backend/internal/domain/shared"
)

// GormAlertRepository implements AlertRepository using GORM
type GormAlertRepository struct {
	db *gorm.DB
}

// NewGormAlertRepository creates a new GormAlertRepository
func NewGormAlertRepository(db *gorm.DB) *GormAlertRepository {
	return &GormAlertRepository{db: db}
}

// FindByID finds an alert by its ID
func (r *GormAlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*alerting.Alert, error) {
	var alert alerting.Alert
	if err := r.db.WithContext(ctx).First(&alert, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// FindRecent lists alerts newest first, optionally restricted to unseen
func (r *GormAlertRepository) FindRecent(ctx context.Context, unseenOnly bool, filter shared.Filter) ([]alerting.Alert, error) {
	query := r.db.WithContext(ctx).Model(&alerting.Alert{})
	if unseenOnly {
		query = query.Where("seen = ?", false)
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	var alerts []alerting.Alert
	if err := query.Order("created_at DESC").Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

// ExistsVariantAlertSince reports whether an alert of the given type for the
// exact variant was created at or after since
func (r *GormAlertRepository) ExistsVariantAlertSince(ctx context.Context, alertType alerting.AlertType, productID uuid.UUID, variantKey string, since time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&alerting.Alert{}).
		Where("type = ? AND product_id = ? AND variant_key = ? AND created_at >= ?", alertType, productID, variantKey, since).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ExistsOrderAlertSince reports whether an alert of the given type for the
// order in the given status was created at or after since
func (r *GormAlertRepository) ExistsOrderAlertSince(ctx context.Context, alertType alerting.AlertType, orderID uuid.UUID, orderStatus string, since time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&alerting.Alert{}).
		Where("type = ? AND order_id = ? AND order_status = ? AND created_at >= ?", alertType, orderID, orderStatus, since).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates an alert
func (r *GormAlertRepository) Save(ctx context.Context, alert *alerting.Alert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

// MarkSeen marks a single alert as seen
func (r *GormAlertRepository) MarkSeen(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&alerting.Alert{}).
		Where("id = ?", id).
		UpdateColumn("seen", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// MarkAllSeen marks every unseen alert as seen and returns the count
func (r *GormAlertRepository) MarkAllSeen(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&alerting.Alert{}).
		Where("seen = ?", false).
		UpdateColumn("seen", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CountUnseen returns the number of unseen alerts
func (r *GormAlertRepository) CountUnseen(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&alerting.Alert{}).
		Where("seen = ?", false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormAlertRepository implements AlertRepository
var _ alerting.AlertRepository = (*GormAlertRepository)(nil)