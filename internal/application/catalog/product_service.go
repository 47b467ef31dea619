package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopline/backend/internal/domain/catalog"
	"github.com/shopline/backend/internal/domain/shared"
)

// StockAlertEvaluator is the slice of the alerting service the catalog admin
// flow needs after a stock edit
type StockAlertEvaluator interface {
	EvaluateVariantStock(ctx context.Context, productID uuid.UUID, variant *catalog.Variant, stock int) error
}

// ProductService handles catalog reads and the admin variant operations.
// Every variant lifecycle change and price change is recorded in the
// append-only variant ledger within the same transaction.
type ProductService struct {
	productRepo    catalog.ProductRepository
	ledgerRepo     catalog.VariantLedgerRepository
	txScope        TransactionScope
	alerts         StockAlertEvaluator
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	ledgerRepo catalog.VariantLedgerRepository,
	txScope TransactionScope,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		ledgerRepo:  ledgerRepo,
		txScope:     txScope,
		logger:      logger,
	}
}

// SetAlertEvaluator sets the stock alert evaluator invoked after stock edits
func (s *ProductService) SetAlertEvaluator(alerts StockAlertEvaluator) {
	s.alerts = alerts
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new product without variants
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductSummaryResponse, error) {
	product, err := catalog.NewProduct(req.SKU, req.Name, req.Price)
	if err != nil {
		return nil, err
	}

	if _, err := s.productRepo.FindBySKU(ctx, product.SKU); err == nil {
		return nil, shared.ErrAlreadyExists
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publishDomainEvents(ctx, product)

	response := ToProductSummaryResponse(product, time.Now())
	return &response, nil
}

// GetByID returns a product summary
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductSummaryResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProductSummaryResponse(product, time.Now())
	return &response, nil
}

// BulkFetch returns summaries for the requested product IDs. Unknown IDs are
// silently skipped so a cart with a removed product still renders.
func (s *ProductService) BulkFetch(ctx context.Context, req BulkFetchRequest) ([]ProductSummaryResponse, error) {
	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID is not a valid UUID")
		}
		ids = append(ids, id)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	responses := make([]ProductSummaryResponse, 0, len(products))
	for idx := range products {
		responses = append(responses, ToProductSummaryResponse(&products[idx], now))
	}
	return responses, nil
}

// UpdatePrice changes the product's base price and records an
// UPDATE_PRICE_SNAPSHOT ledger entry per variant.
func (s *ProductService) UpdatePrice(ctx context.Context, productID uuid.UUID, req UpdatePriceRequest) (*ProductSummaryResponse, error) {
	var product *catalog.Product

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, err = repos.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return err
		}

		oldPrice := product.Price
		if err := product.SetPrice(req.Price); err != nil {
			return err
		}
		if oldPrice.Equal(product.Price) {
			return nil
		}

		for idx := range product.Variants {
			variant := &product.Variants[idx]
			entry, err := catalog.NewVariantLedgerEntry(productID, variant, catalog.LedgerEventUpdatePriceSnapshot, variant.Stock, variant.Stock, product.Price)
			if err != nil {
				return err
			}
			entry.WithActor(req.Actor)
			if err := repos.LedgerRepo().Create(ctx, entry); err != nil {
				return err
			}
		}

		return repos.ProductRepo().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.publishDomainEvents(ctx, product)
	response := ToProductSummaryResponse(product, time.Now())
	return &response, nil
}

// SetDiscount replaces the product's discount configuration
func (s *ProductService) SetDiscount(ctx context.Context, productID uuid.UUID, req SetDiscountRequest) (*ProductSummaryResponse, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	discount := catalog.Discount{
		Enabled: req.Enabled,
		Type:    catalog.DiscountType(req.Type),
		Value:   req.Value,
		StartAt: req.StartAt,
		EndAt:   req.EndAt,
	}
	if err := product.SetDiscount(discount); err != nil {
		return nil, err
	}
	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductSummaryResponse(product, time.Now())
	return &response, nil
}

// AddVariant adds a variant and records a CREATE_VARIANT ledger entry
func (s *ProductService) AddVariant(ctx context.Context, productID uuid.UUID, req AddVariantRequest) (*ProductSummaryResponse, error) {
	sizeID, colorID, err := parseVariantIDs(req.SizeID, req.ColorID)
	if err != nil {
		return nil, err
	}

	var product *catalog.Product
	var variant *catalog.Variant

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, err = repos.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return err
		}

		variant, err = product.AddVariant(sizeID, colorID, req.SizeLabel, req.ColorName, req.Stock)
		if err != nil {
			return err
		}

		entry, err := catalog.NewVariantLedgerEntry(productID, variant, catalog.LedgerEventCreateVariant, 0, req.Stock, product.Price)
		if err != nil {
			return err
		}
		entry.WithActor(req.Actor).WithNote(req.Note)
		if err := repos.LedgerRepo().Create(ctx, entry); err != nil {
			return err
		}

		return repos.ProductRepo().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.evaluateStock(ctx, productID, variant, variant.Stock)

	response := ToProductSummaryResponse(product, time.Now())
	return &response, nil
}

// EditVariantStock adds to or overwrites a variant's stock and records an
// ADD_STOCK or EDIT_STOCK ledger entry
func (s *ProductService) EditVariantStock(ctx context.Context, productID uuid.UUID, req EditVariantStockRequest) (*ProductSummaryResponse, error) {
	sizeID, colorID, err := parseVariantIDs(req.SizeID, req.ColorID)
	if err != nil {
		return nil, err
	}

	var product *catalog.Product
	var variant *catalog.Variant
	var newStock int

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, err = repos.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return err
		}

		variant = product.FindVariant(sizeID, colorID)
		if variant == nil {
			return shared.ErrNotFound
		}
		prevStock := variant.Stock

		var eventType catalog.LedgerEventType
		switch req.Mode {
		case "ADD":
			if req.Quantity <= 0 {
				return shared.NewDomainError("INVALID_QUANTITY", "Added quantity must be positive")
			}
			newStock = prevStock + req.Quantity
			eventType = catalog.LedgerEventAddStock
		case "SET":
			if req.Quantity < 0 {
				return shared.NewDomainError("INVALID_STOCK", "Stock cannot be negative")
			}
			newStock = req.Quantity
			eventType = catalog.LedgerEventEditStock
		default:
			return shared.ErrInvalidInput
		}

		if err := repos.ProductRepo().SetVariantStock(ctx, productID, sizeID, colorID, newStock); err != nil {
			return err
		}
		variant.Stock = newStock

		entry, err := catalog.NewVariantLedgerEntry(productID, variant, eventType, prevStock, newStock, product.Price)
		if err != nil {
			return err
		}
		entry.WithActor(req.Actor).WithNote(req.Note)
		return repos.LedgerRepo().Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.evaluateStock(ctx, productID, variant, newStock)

	response := ToProductSummaryResponse(product, time.Now())
	return &response, nil
}

// DeleteVariant removes a variant and records a DELETE_VARIANT ledger entry,
// keeping the denormalized labels readable after the row is gone
func (s *ProductService) DeleteVariant(ctx context.Context, productID uuid.UUID, req DeleteVariantRequest) (*ProductSummaryResponse, error) {
	sizeID, colorID, err := parseVariantIDs(req.SizeID, req.ColorID)
	if err != nil {
		return nil, err
	}

	var product *catalog.Product

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		product, err = repos.ProductRepo().FindByID(ctx, productID)
		if err != nil {
			return err
		}

		variant := product.FindVariant(sizeID, colorID)
		if variant == nil {
			return shared.ErrNotFound
		}
		prevStock := variant.Stock

		entry, err := catalog.NewVariantLedgerEntry(productID, variant, catalog.LedgerEventDeleteVariant, prevStock, 0, product.Price)
		if err != nil {
			return err
		}
		entry.WithActor(req.Actor).WithNote(req.Note)
		if err := repos.LedgerRepo().Create(ctx, entry); err != nil {
			return err
		}

		if err := product.RemoveVariant(sizeID, colorID); err != nil {
			return err
		}
		return repos.ProductRepo().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	response := ToProductSummaryResponse(product, time.Now())
	return &response, nil
}

// LedgerByProduct returns a product's ledger entries, newest first
func (s *ProductService) LedgerByProduct(ctx context.Context, productID uuid.UUID, page, pageSize int) ([]LedgerEntryResponse, int64, error) {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	filter.OrderBy = "recorded_at"

	entries, err := s.ledgerRepo.FindByProduct(ctx, productID, filter)
	if err != nil {
		return nil, 0, err
	}

	countFilter := shared.DefaultFilter()
	countFilter.Filters["product_id"] = productID
	total, err := s.ledgerRepo.Count(ctx, countFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]LedgerEntryResponse, 0, len(entries))
	for idx := range entries {
		responses = append(responses, ToLedgerEntryResponse(&entries[idx]))
	}
	return responses, total, nil
}

func (s *ProductService) evaluateStock(ctx context.Context, productID uuid.UUID, variant *catalog.Variant, stock int) {
	if s.alerts == nil || variant == nil {
		return
	}
	if err := s.alerts.EvaluateVariantStock(ctx, productID, variant, stock); err != nil {
		s.logger.Warn("variant stock alert evaluation failed",
			zap.String("product_id", productID.String()),
			zap.String("variant", variant.Key()),
			zap.Error(err))
	}
}

// publishDomainEvents publishes all pending domain events from the product
func (s *ProductService) publishDomainEvents(ctx context.Context, product *catalog.Product) {
	if s.eventPublisher == nil {
		return
	}
	events := product.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	product.ClearDomainEvents()
}

func parseVariantIDs(rawSize, rawColor string) (uuid.UUID, uuid.UUID, error) {
	sizeID, err := uuid.Parse(rawSize)
	if err != nil {
		return uuid.Nil, uuid.Nil, shared.NewDomainError("INVALID_VARIANT", "Size ID is not a valid UUID")
	}
	colorID, err := uuid.Parse(rawColor)
	if err != nil {
		return uuid.Nil, uuid.Nil, shared.NewDomainError("INVALID_VARIANT", "Color ID is not a valid UUID")
	}
	return sizeID, colorID, nil
}
