package ordering

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/shopline/backend/internal/domain/catalog"
	"github.com/shopline/backend/internal/domain/ordering"
	"github.com/shopline/backend/internal/domain/shared"
)

// fakeProductRepo is an in-memory ProductRepository with real stock state, so
// the decrement/compensate sequences can be observed end to end.
type fakeProductRepo struct {
	mu          sync.Mutex
	products    map[uuid.UUID]*catalog.Product
	stock       map[string]int
	labels      map[string][2]string
	salesCounts map[uuid.UUID]int64

	// raceTake simulates a concurrent order stealing stock between the
	// caller's read and its decrement; consumed on first use per key.
	raceTake map[string]int
	// failAdjust forces AdjustVariantStock to fail for a key
	failAdjust map[string]error

	adjustCalls []adjustCall
}

type adjustCall struct {
	key   string
	delta int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		products:    make(map[uuid.UUID]*catalog.Product),
		stock:       make(map[string]int),
		labels:      make(map[string][2]string),
		salesCounts: make(map[uuid.UUID]int64),
		raceTake:    make(map[string]int),
		failAdjust:  make(map[string]error),
	}
}

func stockKey(productID, sizeID, colorID uuid.UUID) string {
	return productID.String() + "/" + catalog.VariantKey(sizeID, colorID)
}

func (f *fakeProductRepo) addProduct(product *catalog.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[product.ID] = product
	for idx := range product.Variants {
		v := &product.Variants[idx]
		key := stockKey(product.ID, v.SizeID, v.ColorID)
		f.stock[key] = v.Stock
		f.labels[key] = [2]string{v.SizeLabel, v.ColorName}
	}
}

func (f *fakeProductRepo) stockOf(productID, sizeID, colorID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stock[stockKey(productID, sizeID, colorID)]
}

func (f *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return product, nil
}

func (f *fakeProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := f.products[id]; ok {
			result = append(result, *product)
		}
	}
	return result, nil
}

func (f *fakeProductRepo) FindBySKU(_ context.Context, sku string) (*catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, product := range f.products {
		if product.SKU == sku {
			return product, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeProductRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]catalog.Product, 0, len(f.products))
	for _, product := range f.products {
		result = append(result, *product)
	}
	return result, nil
}

func (f *fakeProductRepo) FindVariant(_ context.Context, productID, sizeID, colorID uuid.UUID) (*catalog.Variant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := stockKey(productID, sizeID, colorID)
	stock, ok := f.stock[key]
	if !ok {
		return nil, shared.ErrNotFound
	}
	labels := f.labels[key]
	return &catalog.Variant{
		ID:        uuid.New(),
		ProductID: productID,
		SizeID:    sizeID,
		ColorID:   colorID,
		SizeLabel: labels[0],
		ColorName: labels[1],
		Stock:     stock,
	}, nil
}

func (f *fakeProductRepo) AdjustVariantStock(_ context.Context, productID, sizeID, colorID uuid.UUID, delta int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := stockKey(productID, sizeID, colorID)
	if _, ok := f.stock[key]; !ok {
		return 0, shared.ErrNotFound
	}
	if err, ok := f.failAdjust[key]; ok {
		return 0, err
	}
	if delta < 0 {
		if taken, ok := f.raceTake[key]; ok {
			f.stock[key] -= taken
			delete(f.raceTake, key)
		}
	}
	f.stock[key] += delta
	f.adjustCalls = append(f.adjustCalls, adjustCall{key: key, delta: delta})
	return f.stock[key], nil
}

func (f *fakeProductRepo) SetVariantStock(_ context.Context, productID, sizeID, colorID uuid.UUID, stock int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stock[stockKey(productID, sizeID, colorID)] = stock
	return nil
}

func (f *fakeProductRepo) IncrementSalesCount(_ context.Context, productID uuid.UUID, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.salesCounts[productID] += delta
	return nil
}

func (f *fakeProductRepo) Save(_ context.Context, product *catalog.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[product.ID] = product
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.products)), nil
}

var _ catalog.ProductRepository = (*fakeProductRepo)(nil)

// fakeOrderRepo is an in-memory OrderRepository
type fakeOrderRepo struct {
	mu      sync.Mutex
	orders  map[uuid.UUID]*ordering.Order
	saveErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*ordering.Order)}
}

func (f *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*ordering.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	order, ok := f.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) FindByUser(_ context.Context, userID uuid.UUID, _ shared.Filter) ([]ordering.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]ordering.Order, 0)
	for _, order := range f.orders {
		if order.UserID == userID {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (f *fakeOrderRepo) FindByUserAndIdempotencyKey(_ context.Context, userID uuid.UUID, key string) (*ordering.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, order := range f.orders {
		if order.UserID == userID && order.IdempotencyKey == key {
			copied := *order
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeOrderRepo) FindByStatusChangedBefore(_ context.Context, status ordering.OrderStatus, cutoff time.Time, _ shared.Filter) ([]ordering.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]ordering.Order, 0)
	for _, order := range f.orders {
		if order.Status == status && order.StatusChangedAt.Before(cutoff) {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (f *fakeOrderRepo) FindAll(_ context.Context, _ shared.Filter) ([]ordering.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]ordering.Order, 0, len(f.orders))
	for _, order := range f.orders {
		result = append(result, *order)
	}
	return result, nil
}

func (f *fakeOrderRepo) Save(_ context.Context, order *ordering.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	copied := *order
	f.orders[order.ID] = &copied
	return nil
}

func (f *fakeOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.orders, id)
	return nil
}

func (f *fakeOrderRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.orders)), nil
}

var _ ordering.OrderRepository = (*fakeOrderRepo)(nil)

// MockAlertNotifier is a mock implementation of AlertNotifier
type MockAlertNotifier struct {
	mock.Mock
}

func (m *MockAlertNotifier) EvaluateVariantStock(ctx context.Context, productID uuid.UUID, variant *catalog.Variant, stock int) error {
	args := m.Called(ctx, productID, variant, stock)
	return args.Error(0)
}

func (m *MockAlertNotifier) NotifyOrderCreated(ctx context.Context, order *ordering.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockAlertNotifier) NotifyOrderStatusChanged(ctx context.Context, order *ordering.Order, oldStatus, newStatus ordering.OrderStatus) error {
	args := m.Called(ctx, order, oldStatus, newStatus)
	return args.Error(0)
}

// fakeDashboardCache counts invalidations
type fakeDashboardCache struct {
	mu            sync.Mutex
	invalidations int
}

func (f *fakeDashboardCache) Invalidate(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidations++
	return nil
}

func (f *fakeDashboardCache) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invalidations
}

// MockEventPublisher collects published domain events
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}
