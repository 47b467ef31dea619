package handler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shopline/backend/internal/domain/alerting"
	"github.com/shopline/backend/internal/domain/catalog"
	"github.com/shopline/backend/internal/domain/ordering"
	"github.com/shopline/backend/internal/domain/shared"
)

// memProductRepo is an in-memory ProductRepository for handler tests
type memProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
}

func (m *memProductRepo) add(product *catalog.Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = product
}

func (m *memProductRepo) variantOf(productID, sizeID, colorID uuid.UUID) *catalog.Variant {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[productID]
	if !ok {
		return nil
	}
	for idx := range product.Variants {
		v := &product.Variants[idx]
		if v.SizeID == sizeID && v.ColorID == colorID {
			return v
		}
	}
	return nil
}

func (m *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return product, nil
}

func (m *memProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]catalog.Product, 0, len(ids))
	for _, id := range ids {
		if product, ok := m.products[id]; ok {
			result = append(result, *product)
		}
	}
	return result, nil
}

func (m *memProductRepo) FindBySKU(_ context.Context, sku string) (*catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, product := range m.products {
		if product.SKU == sku {
			return product, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memProductRepo) FindAll(_ context.Context, _ shared.Filter) ([]catalog.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]catalog.Product, 0, len(m.products))
	for _, product := range m.products {
		result = append(result, *product)
	}
	return result, nil
}

func (m *memProductRepo) FindVariant(_ context.Context, productID, sizeID, colorID uuid.UUID) (*catalog.Variant, error) {
	if v := m.variantOf(productID, sizeID, colorID); v != nil {
		copied := *v
		return &copied, nil
	}
	return nil, shared.ErrNotFound
}

func (m *memProductRepo) AdjustVariantStock(_ context.Context, productID, sizeID, colorID uuid.UUID, delta int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[productID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	for idx := range product.Variants {
		v := &product.Variants[idx]
		if v.SizeID == sizeID && v.ColorID == colorID {
			v.Stock += delta
			return v.Stock, nil
		}
	}
	return 0, shared.ErrNotFound
}

func (m *memProductRepo) SetVariantStock(_ context.Context, productID, sizeID, colorID uuid.UUID, stock int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[productID]
	if !ok {
		return shared.ErrNotFound
	}
	for idx := range product.Variants {
		v := &product.Variants[idx]
		if v.SizeID == sizeID && v.ColorID == colorID {
			v.Stock = stock
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *memProductRepo) IncrementSalesCount(_ context.Context, productID uuid.UUID, delta int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	product, ok := m.products[productID]
	if !ok {
		return shared.ErrNotFound
	}
	product.SalesCount += delta
	return nil
}

func (m *memProductRepo) Save(_ context.Context, product *catalog.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[product.ID] = product
	return nil
}

func (m *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.products, id)
	return nil
}

func (m *memProductRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.products)), nil
}

var _ catalog.ProductRepository = (*memProductRepo)(nil)

// memLedgerRepo is an in-memory VariantLedgerRepository
type memLedgerRepo struct {
	mu      sync.Mutex
	entries []catalog.VariantLedgerEntry
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{entries: make([]catalog.VariantLedgerEntry, 0)}
}

func (m *memLedgerRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.VariantLedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for idx := range m.entries {
		if m.entries[idx].ID == id {
			copied := m.entries[idx]
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memLedgerRepo) FindByProduct(_ context.Context, productID uuid.UUID, _ shared.Filter) ([]catalog.VariantLedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]catalog.VariantLedgerEntry, 0)
	for idx := range m.entries {
		if m.entries[idx].ProductID == productID {
			result = append(result, m.entries[idx])
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RecordedAt.After(result[j].RecordedAt)
	})
	return result, nil
}

func (m *memLedgerRepo) FindByVariantKey(_ context.Context, productID uuid.UUID, variantKey string, _ shared.Filter) ([]catalog.VariantLedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]catalog.VariantLedgerEntry, 0)
	for idx := range m.entries {
		if m.entries[idx].ProductID == productID && m.entries[idx].VariantKey == variantKey {
			result = append(result, m.entries[idx])
		}
	}
	return result, nil
}

func (m *memLedgerRepo) FindByDateRange(_ context.Context, start, end time.Time, _ shared.Filter) ([]catalog.VariantLedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]catalog.VariantLedgerEntry, 0)
	for idx := range m.entries {
		at := m.entries[idx].RecordedAt
		if !at.Before(start) && !at.After(end) {
			result = append(result, m.entries[idx])
		}
	}
	return result, nil
}

func (m *memLedgerRepo) Create(_ context.Context, entry *catalog.VariantLedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memLedgerRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.entries)), nil
}

var _ catalog.VariantLedgerRepository = (*memLedgerRepo)(nil)

// memOrderRepo is an in-memory OrderRepository
type memOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*ordering.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*ordering.Order)}
}

func (m *memOrderRepo) add(order *ordering.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
}

func (m *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*ordering.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (m *memOrderRepo) FindByUser(_ context.Context, userID uuid.UUID, _ shared.Filter) ([]ordering.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]ordering.Order, 0)
	for _, order := range m.orders {
		if order.UserID == userID {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (m *memOrderRepo) FindByUserAndIdempotencyKey(_ context.Context, userID uuid.UUID, key string) (*ordering.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, order := range m.orders {
		if order.UserID == userID && order.IdempotencyKey == key {
			copied := *order
			return &copied, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memOrderRepo) FindByStatusChangedBefore(_ context.Context, status ordering.OrderStatus, cutoff time.Time, _ shared.Filter) ([]ordering.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]ordering.Order, 0)
	for _, order := range m.orders {
		if order.Status == status && order.StatusChangedAt.Before(cutoff) {
			result = append(result, *order)
		}
	}
	return result, nil
}

func (m *memOrderRepo) FindAll(_ context.Context, _ shared.Filter) ([]ordering.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]ordering.Order, 0, len(m.orders))
	for _, order := range m.orders {
		result = append(result, *order)
	}
	return result, nil
}

func (m *memOrderRepo) Save(_ context.Context, order *ordering.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *order
	m.orders[order.ID] = &copied
	return nil
}

func (m *memOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, id)
	return nil
}

func (m *memOrderRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.orders)), nil
}

var _ ordering.OrderRepository = (*memOrderRepo)(nil)

// memAlertRepo is an in-memory AlertRepository
type memAlertRepo struct {
	mu     sync.Mutex
	alerts []*alerting.Alert
}

func newMemAlertRepo() *memAlertRepo {
	return &memAlertRepo{alerts: make([]*alerting.Alert, 0)}
}

func (m *memAlertRepo) add(alert *alerting.Alert) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, alert)
}

func (m *memAlertRepo) FindByID(_ context.Context, id uuid.UUID) (*alerting.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, alert := range m.alerts {
		if alert.ID == id {
			return alert, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memAlertRepo) FindRecent(_ context.Context, unseenOnly bool, filter shared.Filter) ([]alerting.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]alerting.Alert, 0)
	for _, alert := range m.alerts {
		if unseenOnly && alert.Seen {
			continue
		}
		result = append(result, *alert)
		if filter.PageSize > 0 && len(result) >= filter.PageSize {
			break
		}
	}
	return result, nil
}

func (m *memAlertRepo) ExistsVariantAlertSince(_ context.Context, alertType alerting.AlertType, productID uuid.UUID, variantKey string, since time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, alert := range m.alerts {
		if alert.Type == alertType && alert.ProductID != nil && *alert.ProductID == productID &&
			alert.VariantKey == variantKey && !alert.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAlertRepo) ExistsOrderAlertSince(_ context.Context, alertType alerting.AlertType, orderID uuid.UUID, orderStatus string, since time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, alert := range m.alerts {
		if alert.Type == alertType && alert.OrderID != nil && *alert.OrderID == orderID &&
			alert.OrderStatus == orderStatus && !alert.CreatedAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAlertRepo) Save(_ context.Context, alert *alerting.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for idx, existing := range m.alerts {
		if existing.ID == alert.ID {
			m.alerts[idx] = alert
			return nil
		}
	}
	m.alerts = append(m.alerts, alert)
	return nil
}

func (m *memAlertRepo) MarkSeen(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, alert := range m.alerts {
		if alert.ID == id {
			alert.Seen = true
			return nil
		}
	}
	return shared.ErrNotFound
}

func (m *memAlertRepo) MarkAllSeen(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var updated int64
	for _, alert := range m.alerts {
		if !alert.Seen {
			alert.Seen = true
			updated++
		}
	}
	return updated, nil
}

func (m *memAlertRepo) CountUnseen(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, alert := range m.alerts {
		if !alert.Seen {
			count++
		}
	}
	return count, nil
}

var _ alerting.AlertRepository = (*memAlertRepo)(nil)
