package alerting

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shopline/backend/internal/domain/shared"
)

// AlertRepository defines the persistence contract for alerts
type AlertRepository interface {
	// FindByID finds an alert by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Alert, error)

	// FindRecent lists alerts newest first, optionally restricted to unseen
	FindRecent(ctx context.Context, unseenOnly bool, filter shared.Filter) ([]Alert, error)

	// ExistsVariantAlertSince reports whether an alert of the given type for
	// the exact variant (product + variant key) was created at or after since.
	ExistsVariantAlertSince(ctx context.Context, alertType AlertType, productID uuid.UUID, variantKey string, since time.Time) (bool, error)

	// ExistsOrderAlertSince reports whether an alert of the given type for the
	// order in the given status was created at or after since.
	ExistsOrderAlertSince(ctx context.Context, alertType AlertType, orderID uuid.UUID, orderStatus string, since time.Time) (bool, error)

	// Save creates or updates an alert
	Save(ctx context.Context, alert *Alert) error

	// MarkSeen marks a single alert as seen
	MarkSeen(ctx context.Context, id uuid.UUID) error

	// MarkAllSeen marks every unseen alert as seen and returns the count
	MarkAllSeen(ctx context.Context) (int64, error)

	// CountUnseen returns the number of unseen alerts
	CountUnseen(ctx context.Context) (int64, error)
}
