package ordering

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/shopline/backend/internal/domain/shared"
)

// OrderRepository defines the persistence contract for Order aggregates
type OrderRepository interface {
	// FindByID finds an order by its ID, items included
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByUser finds all orders for a user, newest first
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindByUserAndIdempotencyKey finds the order previously created by a user
	// with the given idempotency key, or ErrNotFound
	FindByUserAndIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*Order, error)

	// FindByStatusChangedBefore finds orders in the given status whose last
	// status change is older than the cutoff. Used by the stale-order sweep.
	FindByStatusChangedBefore(ctx context.Context, status OrderStatus, cutoff time.Time, filter shared.Filter) ([]Order, error)

	// FindAll finds all orders matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Save creates or updates an order with its items
	Save(ctx context.Context, order *Order) error

	// Delete deletes an order
	Delete(ctx context.Context, id uuid.UUID) error

	// Count returns the number of orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
