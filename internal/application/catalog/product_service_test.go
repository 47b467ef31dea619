package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shopline/backend/internal/domain/catalog"
	"github.com/shopline/backend/internal/domain/shared"
)

// fakeProductRepo keeps products in memory; variant stock lives on the
// aggregate's Variants slice
type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*catalog.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[uuid.UUID]*catalog.Product)}
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
	product, ok := f.products[productID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	variant := product.FindVariant(sizeID, colorID)
	if variant == nil {
		return nil, shared.ErrNotFound
	}
	return variant, nil
}

func (f *fakeProductRepo) AdjustVariantStock(_ context.Context, productID, sizeID, colorID uuid.UUID, delta int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[productID]
	if !ok {
		return 0, shared.ErrNotFound
	}
	variant := product.FindVariant(sizeID, colorID)
	if variant == nil {
		return 0, shared.ErrNotFound
	}
	variant.Stock += delta
	return variant.Stock, nil
}

func (f *fakeProductRepo) SetVariantStock(_ context.Context, productID, sizeID, colorID uuid.UUID, stock int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[productID]
	if !ok {
		return shared.ErrNotFound
	}
	variant := product.FindVariant(sizeID, colorID)
	if variant == nil {
		return shared.ErrNotFound
	}
	variant.Stock = stock
	return nil
}

func (f *fakeProductRepo) IncrementSalesCount(_ context.Context, productID uuid.UUID, delta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	product, ok := f.products[productID]
	if !ok {
		return shared.ErrNotFound
	}
	product.SalesCount += delta
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

// fakeLedgerRepo appends entries in memory
type fakeLedgerRepo struct {
	mu      sync.Mutex
	entries []catalog.VariantLedgerEntry
}

func (f *fakeLedgerRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.VariantLedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for idx := range f.entries {
		if f.entries[idx].ID == id {
			return &f.entries[idx], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeLedgerRepo) FindByProduct(_ context.Context, productID uuid.UUID, _ shared.Filter) ([]catalog.VariantLedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]catalog.VariantLedgerEntry, 0)
	for idx := len(f.entries) - 1; idx >= 0; idx-- {
		if f.entries[idx].ProductID == productID {
			result = append(result, f.entries[idx])
		}
	}
	return result, nil
}

func (f *fakeLedgerRepo) FindByVariantKey(_ context.Context, productID uuid.UUID, variantKey string, _ shared.Filter) ([]catalog.VariantLedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]catalog.VariantLedgerEntry, 0)
	for idx := len(f.entries) - 1; idx >= 0; idx-- {
		if f.entries[idx].ProductID == productID && f.entries[idx].VariantKey == variantKey {
			result = append(result, f.entries[idx])
		}
	}
	return result, nil
}

func (f *fakeLedgerRepo) FindByDateRange(_ context.Context, start, end time.Time, _ shared.Filter) ([]catalog.VariantLedgerEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := make([]catalog.VariantLedgerEntry, 0)
	for idx := range f.entries {
		recorded := f.entries[idx].RecordedAt
		if !recorded.Before(start) && !recorded.After(end) {
			result = append(result, f.entries[idx])
		}
	}
	return result, nil
}

func (f *fakeLedgerRepo) Create(_ context.Context, entry *catalog.VariantLedgerEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeLedgerRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.entries)), nil
}

var _ catalog.VariantLedgerRepository = (*fakeLedgerRepo)(nil)

// recordingEvaluator records stock evaluations
type recordingEvaluator struct {
	mu    sync.Mutex
	calls []int
}

func (r *recordingEvaluator) EvaluateVariantStock(_ context.Context, _ uuid.UUID, _ *catalog.Variant, stock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, stock)
	return nil
}

type productFixture struct {
	service *ProductService
	repo    *fakeProductRepo
	ledger  *fakeLedgerRepo
	alerts  *recordingEvaluator
}

func newProductFixture() *productFixture {
	repo := newFakeProductRepo()
	ledger := &fakeLedgerRepo{}
	scope := NewNoOpTransactionScope(repo, ledger)
	service := NewProductService(repo, ledger, scope, zap.NewNop())
	alerts := &recordingEvaluator{}
	service.SetAlertEvaluator(alerts)
	return &productFixture{service: service, repo: repo, ledger: ledger, alerts: alerts}
}

func (f *productFixture) seed(t *testing.T, price float64) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct("TEE-001", "Basic Tee", decimal.NewFromFloat(price))
	require.NoError(t, err)
	product.ClearDomainEvents()
	require.NoError(t, f.repo.Save(context.Background(), product))
	return product
}

func TestProductService_AddVariant(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture()
	product := f.seed(t, 20)

	resp, err := f.service.AddVariant(ctx, product.ID, AddVariantRequest{
		SizeID:    uuid.NewString(),
		ColorID:   uuid.NewString(),
		SizeLabel: "M",
		ColorName: "Black",
		Stock:     2,
		Actor:     "admin@shop",
	})
	require.NoError(t, err)
	require.Len(t, resp.Variants, 1)
	assert.Equal(t, 2, resp.Variants[0].Stock)

	require.Len(t, f.ledger.entries, 1)
	entry := f.ledger.entries[0]
	assert.Equal(t, catalog.LedgerEventCreateVariant, entry.EventType)
	assert.Equal(t, 0, entry.PrevStock)
	assert.Equal(t, 2, entry.NewStock)
	assert.Equal(t, "M", entry.SizeLabel)
	assert.Equal(t, "admin@shop", entry.Actor)
	assert.True(t, entry.PriceSnapshot.Equal(decimal.NewFromInt(20)))

	// low starting stock is evaluated for alerts
	assert.Equal(t, []int{2}, f.alerts.calls)
}

func TestProductService_EditVariantStock(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*productFixture, *catalog.Product, *catalog.Variant) {
		f := newProductFixture()
		product := f.seed(t, 10)
		variant, err := product.AddVariant(uuid.New(), uuid.New(), "L", "White", 5)
		require.NoError(t, err)
		return f, product, variant
	}

	t.Run("ADD adds on top of current stock", func(t *testing.T) {
		f, product, variant := setup(t)

		resp, err := f.service.EditVariantStock(ctx, product.ID, EditVariantStockRequest{
			SizeID:   variant.SizeID.String(),
			ColorID:  variant.ColorID.String(),
			Mode:     "ADD",
			Quantity: 7,
		})
		require.NoError(t, err)
		assert.Equal(t, 12, resp.Variants[0].Stock)

		require.Len(t, f.ledger.entries, 1)
		assert.Equal(t, catalog.LedgerEventAddStock, f.ledger.entries[0].EventType)
		assert.Equal(t, 5, f.ledger.entries[0].PrevStock)
		assert.Equal(t, 12, f.ledger.entries[0].NewStock)
	})

	t.Run("SET overwrites the stock", func(t *testing.T) {
		f, product, variant := setup(t)

		resp, err := f.service.EditVariantStock(ctx, product.ID, EditVariantStockRequest{
			SizeID:   variant.SizeID.String(),
			ColorID:  variant.ColorID.String(),
			Mode:     "SET",
			Quantity: 0,
		})
		require.NoError(t, err)
		assert.Equal(t, 0, resp.Variants[0].Stock)

		require.Len(t, f.ledger.entries, 1)
		assert.Equal(t, catalog.LedgerEventEditStock, f.ledger.entries[0].EventType)
		// out-of-stock evaluation fired with the new level
		assert.Equal(t, []int{0}, f.alerts.calls)
	})

	t.Run("invalid quantities rejected", func(t *testing.T) {
		f, product, variant := setup(t)

		_, err := f.service.EditVariantStock(ctx, product.ID, EditVariantStockRequest{
			SizeID: variant.SizeID.String(), ColorID: variant.ColorID.String(), Mode: "ADD", Quantity: 0,
		})
		assert.Error(t, err)

		_, err = f.service.EditVariantStock(ctx, product.ID, EditVariantStockRequest{
			SizeID: variant.SizeID.String(), ColorID: variant.ColorID.String(), Mode: "SET", Quantity: -1,
		})
		assert.Error(t, err)
		assert.Empty(t, f.ledger.entries)
	})

	t.Run("unknown variant", func(t *testing.T) {
		f, product, _ := setup(t)
		_, err := f.service.EditVariantStock(ctx, product.ID, EditVariantStockRequest{
			SizeID: uuid.NewString(), ColorID: uuid.NewString(), Mode: "ADD", Quantity: 1,
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestProductService_DeleteVariant(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture()
	product := f.seed(t, 10)
	variant, err := product.AddVariant(uuid.New(), uuid.New(), "S", "Red", 4)
	require.NoError(t, err)

	resp, err := f.service.DeleteVariant(ctx, product.ID, DeleteVariantRequest{
		SizeID:  variant.SizeID.String(),
		ColorID: variant.ColorID.String(),
		Note:    "discontinued",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Variants)

	require.Len(t, f.ledger.entries, 1)
	entry := f.ledger.entries[0]
	assert.Equal(t, catalog.LedgerEventDeleteVariant, entry.EventType)
	assert.Equal(t, catalog.LedgerStatusDeleted, entry.Status)
	assert.Equal(t, 4, entry.PrevStock)
	assert.Equal(t, 0, entry.NewStock)
	// labels survive the variant row
	assert.Equal(t, "S", entry.SizeLabel)
	assert.Equal(t, "Red", entry.ColorName)
}

func TestProductService_UpdatePrice(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture()
	product := f.seed(t, 10)
	_, err := product.AddVariant(uuid.New(), uuid.New(), "M", "Black", 5)
	require.NoError(t, err)
	_, err = product.AddVariant(uuid.New(), uuid.New(), "L", "Black", 8)
	require.NoError(t, err)

	resp, err := f.service.UpdatePrice(ctx, product.ID, UpdatePriceRequest{Price: decimal.NewFromFloat(12.50)})
	require.NoError(t, err)
	assert.Equal(t, "12.5", resp.Price.String())

	// one snapshot entry per variant
	require.Len(t, f.ledger.entries, 2)
	for _, entry := range f.ledger.entries {
		assert.Equal(t, catalog.LedgerEventUpdatePriceSnapshot, entry.EventType)
		assert.Equal(t, entry.PrevStock, entry.NewStock)
		assert.True(t, entry.PriceSnapshot.Equal(decimal.NewFromFloat(12.50)))
	}

	// same price again writes nothing
	_, err = f.service.UpdatePrice(ctx, product.ID, UpdatePriceRequest{Price: decimal.NewFromFloat(12.50)})
	require.NoError(t, err)
	assert.Len(t, f.ledger.entries, 2)
}

func TestProductService_BulkFetch(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture()

	first, err := catalog.NewProduct("TEE-001", "Basic Tee", decimal.NewFromInt(20))
	require.NoError(t, err)
	require.NoError(t, first.SetDiscount(catalog.Discount{
		Enabled: true,
		Type:    catalog.DiscountTypePercent,
		Value:   decimal.NewFromInt(10),
	}))
	second, err := catalog.NewProduct("TEE-002", "Premium Tee", decimal.NewFromInt(40))
	require.NoError(t, err)
	require.NoError(t, f.repo.Save(ctx, first))
	require.NoError(t, f.repo.Save(ctx, second))

	resp, err := f.service.BulkFetch(ctx, BulkFetchRequest{
		IDs: []string{first.ID.String(), second.ID.String(), uuid.NewString()},
	})
	require.NoError(t, err)
	// the unknown ID is skipped, not an error
	require.Len(t, resp, 2)

	byID := map[uuid.UUID]ProductSummaryResponse{}
	for _, summary := range resp {
		byID[summary.ID] = summary
	}
	assert.Equal(t, "18", byID[first.ID].EffectivePrice.String())
	assert.Equal(t, "40", byID[second.ID].EffectivePrice.String())
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	f := newProductFixture()

	resp, err := f.service.Create(ctx, CreateProductRequest{
		SKU:   "tee-100",
		Name:  "New Tee",
		Price: decimal.NewFromInt(15),
	})
	require.NoError(t, err)
	assert.Equal(t, "TEE-100", resp.SKU)

	_, err = f.service.Create(ctx, CreateProductRequest{
		SKU:   "TEE-100",
		Name:  "Duplicate",
		Price: decimal.NewFromInt(15),
	})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}
