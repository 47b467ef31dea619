package alerting

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shopline/backend/internal/domain/alerting"
	"github.com/shopline/backend/internal/domain/ordering"
	"github.com/shopline/backend/internal/domain/shared"
)

// fakeAlertRepo is an in-memory AlertRepository
type fakeAlertRepo struct {
	mu      sync.Mutex
	alerts  []*alerting.Alert
	saveErr error
}

func newFakeAlertRepo() *fakeAlertRepo {
	return &fakeAlertRepo{alerts: make([]*alerting.Alert, 0)}
}

func (f *fakeAlertRepo) byType(alertType alerting.AlertType) []*alerting.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]*alerting.Alert, 0)
	for _, alert := range f.alerts {
		if alert.Type == alertType {
			result = append(result, alert)
		}
	}
	return result
}

func (f *fakeAlertRepo) FindByID(_ context.Context, id uuid.UUID) (*alerting.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, alert := range f.alerts {
		if alert.ID == id {
			return alert, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeAlertRepo) FindRecent(_ context.Context, unseenOnly bool, filter shared.Filter) ([]alerting.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]alerting.Alert, 0)
	for idx := len(f.alerts) - 1; idx >= 0; idx-- {
		alert := f.alerts[idx]
		if unseenOnly && alert.Seen {
			continue
		}
		result = append(result, *alert)
		if len(result) >= filter.PageSize {
			break
		}
	}
	return result, nil
}

func (f *fakeAlertRepo) ExistsVariantAlertSince(_ context.Context, alertType alerting.AlertType, productID uuid.UUID, variantKey string, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, alert := range f.alerts {
		if alert.Type == alertType && alert.ProductID != nil && *alert.ProductID == productID &&
			alert.VariantKey == variantKey && !alert.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAlertRepo) ExistsOrderAlertSince(_ context.Context, alertType alerting.AlertType, orderID uuid.UUID, orderStatus string, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, alert := range f.alerts {
		if alert.Type == alertType && alert.OrderID != nil && *alert.OrderID == orderID &&
			alert.OrderStatus == orderStatus && !alert.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAlertRepo) Save(_ context.Context, alert *alerting.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	for idx, existing := range f.alerts {
		if existing.ID == alert.ID {
			f.alerts[idx] = alert
			return nil
		}
	}
	f.alerts = append(f.alerts, alert)
	return nil
}

func (f *fakeAlertRepo) MarkSeen(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, alert := range f.alerts {
		if alert.ID == id {
			alert.MarkSeen()
			return nil
		}
	}
	return shared.ErrNotFound
}

func (f *fakeAlertRepo) MarkAllSeen(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, alert := range f.alerts {
		if !alert.Seen {
			alert.MarkSeen()
			count++
		}
	}
	return count, nil
}

func (f *fakeAlertRepo) CountUnseen(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, alert := range f.alerts {
		if !alert.Seen {
			count++
		}
	}
	return count, nil
}

var _ alerting.AlertRepository = (*fakeAlertRepo)(nil)

// fakeOrderRepo serves canned orders for the sweeper
type fakeOrderRepo struct {
	mu     sync.Mutex
	orders []ordering.Order
}

func (f *fakeOrderRepo) add(order ordering.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, order)
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*ordering.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for idx := range f.orders {
		if f.orders[idx].ID == id {
			return &f.orders[idx], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeOrderRepo) FindByUser(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]ordering.Order, error) {
	return nil, nil
}

func (f *fakeOrderRepo) FindByUserAndIdempotencyKey(_ context.Context, _ uuid.UUID, _ string) (*ordering.Order, error) {
	return nil, shared.ErrNotFound
}

func (f *fakeOrderRepo) FindByStatusChangedBefore(_ context.Context, status ordering.OrderStatus, cutoff time.Time, _ shared.Filter) ([]ordering.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]ordering.Order, 0)
	for _, order := range f.orders {
		if order.Status == status && order.StatusChangedAt.Before(cutoff) {
			result = append(result, order)
		}
	}
	return result, nil
}

func (f *fakeOrderRepo) FindAll(_ context.Context, _ shared.Filter) ([]ordering.Order, error) {
	return f.orders, nil
}

func (f *fakeOrderRepo) Save(_ context.Context, _ *ordering.Order) error { return nil }

func (f *fakeOrderRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (f *fakeOrderRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(f.orders)), nil
}

var _ ordering.OrderRepository = (*fakeOrderRepo)(nil)

// collectingPublisher records broadcast events
type collectingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *collectingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *collectingPublisher) all() []shared.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]shared.DomainEvent(nil), p.events...)
}
