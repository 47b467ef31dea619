package ordering

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopline/backend/internal/domain/catalog"
	"github.com/shopline/backend/internal/domain/ordering"
	"github.com/shopline/backend/internal/domain/shared"
)

// AlertNotifier is the slice of the alerting service the order flows need.
// Notification failures are logged by the implementation and never fail the
// order operation that triggered them.
type AlertNotifier interface {
	// EvaluateVariantStock checks a variant's stock level and raises
	// out-of-stock or low-stock alerts as needed
	EvaluateVariantStock(ctx context.Context, productID uuid.UUID, variant *catalog.Variant, stock int) error
	// NotifyOrderCreated raises an ORDER_CREATED alert
	NotifyOrderCreated(ctx context.Context, order *ordering.Order) error
	// NotifyOrderStatusChanged raises an ORDER_STATUS_CHANGED alert
	NotifyOrderStatusChanged(ctx context.Context, order *ordering.Order, oldStatus, newStatus ordering.OrderStatus) error
}

// DashboardCache invalidates cached admin dashboard aggregates after order
// mutations. Implementations must tolerate being called concurrently.
type DashboardCache interface {
	Invalidate(ctx context.Context) error
}

// OrderService handles order placement and lifecycle operations
type OrderService struct {
	orderRepo      ordering.OrderRepository
	productRepo    catalog.ProductRepository
	reconciler     *StockReconciler
	txScope        TransactionScope
	alerts         AlertNotifier
	cache          DashboardCache
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	orderRepo ordering.OrderRepository,
	productRepo catalog.ProductRepository,
	reconciler *StockReconciler,
	txScope TransactionScope,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		reconciler:  reconciler,
		txScope:     txScope,
		logger:      logger,
	}
}

// SetAlertNotifier sets the alert notifier for post-commit alert evaluation
func (s *OrderService) SetAlertNotifier(alerts AlertNotifier) {
	s.alerts = alerts
}

// SetDashboardCache sets the dashboard cache invalidated on mutations
func (s *OrderService) SetDashboardCache(cache DashboardCache) {
	s.cache = cache
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create places a new order. Stock is taken by the reconciler line by line
// before the order row is written; if the write fails, the taken stock is put
// back. With an idempotency key, a repeated request returns the order created
// by the first one.
func (s *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*OrderResponse, error) {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID is not a valid UUID")
	}

	if req.IdempotencyKey != "" {
		existing, err := s.orderRepo.FindByUserAndIdempotencyKey(ctx, userID, req.IdempotencyKey)
		if err == nil {
			response := ToOrderResponse(existing)
			return &response, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	lines, err := toReconcileLines(req.Items)
	if err != nil {
		return nil, err
	}

	products, err := s.loadProducts(ctx, lines)
	if err != nil {
		return nil, err
	}

	results, err := s.reconciler.Reconcile(ctx, lines)
	if err != nil {
		return nil, err
	}

	order, err := s.buildOrder(userID, req, products, results)
	if err != nil {
		s.reconciler.Rollback(ctx, results)
		return nil, err
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		s.reconciler.Rollback(ctx, results)
		return nil, err
	}

	s.afterCreate(ctx, order, products, results)

	response := ToOrderResponse(order)
	return &response, nil
}

// GetByID retrieves an order. Admin callers get the stock snapshots.
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID, admin bool) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var response OrderResponse
	if admin {
		response = ToAdminOrderResponse(order)
	} else {
		response = ToOrderResponse(order)
	}
	return &response, nil
}

// ListByUser lists a user's orders, newest first
func (s *OrderService) ListByUser(ctx context.Context, userID uuid.UUID, filter OrderListFilter) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindByUser(ctx, userID, filter.ToDomainFilter())
	if err != nil {
		return nil, err
	}

	responses := make([]OrderResponse, 0, len(orders))
	for idx := range orders {
		responses = append(responses, ToOrderResponse(&orders[idx]))
	}
	return responses, nil
}

// List lists all orders for admin callers
func (s *OrderService) List(ctx context.Context, filter OrderListFilter) ([]OrderResponse, int64, error) {
	domainFilter := filter.ToDomainFilter()
	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]OrderResponse, 0, len(orders))
	for idx := range orders {
		responses = append(responses, ToAdminOrderResponse(&orders[idx]))
	}
	return responses, total, nil
}

// UpdateStatus moves an order to a new status. The first transition to
// invoiced also counts every line into its product's sales counter, exactly
// once over the order's lifetime.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*OrderResponse, error) {
	target := ordering.OrderStatus(status)
	if !target.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", status))
	}

	var order *ordering.Order
	var oldStatus ordering.OrderStatus

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		oldStatus = order.Status
		if err := order.ChangeStatus(target); err != nil {
			return err
		}

		if target == ordering.OrderStatusInvoiced && order.MarkCountedForBestsellers() {
			for idx := range order.Items {
				item := &order.Items[idx]
				if err := repos.ProductRepo().IncrementSalesCount(ctx, item.ProductID, int64(item.Quantity)); err != nil {
					return err
				}
			}
		}

		return repos.OrderRepo().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	if oldStatus != order.Status {
		s.afterStatusChange(ctx, order, oldStatus)
	}

	response := ToAdminOrderResponse(order)
	return &response, nil
}

// Cancel cancels a pending order and puts its stock back, atomically
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	var order *ordering.Order

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}

		if err := order.Cancel(); err != nil {
			return err
		}

		for idx := range order.Items {
			item := &order.Items[idx]
			if _, err := repos.ProductRepo().AdjustVariantStock(ctx, item.ProductID, item.SizeID, item.ColorID, item.Quantity); err != nil {
				return err
			}
		}

		return repos.OrderRepo().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx)
	s.publishDomainEvents(ctx, order)

	response := ToAdminOrderResponse(order)
	return &response, nil
}

// Update edits an order. Metadata fields are plain updates; a new item list is
// applied as a per-variant stock diff inside one transaction, so an aborted
// update leaves both the order and the stock untouched.
func (s *OrderService) Update(ctx context.Context, orderID uuid.UUID, req UpdateOrderRequest) (*OrderResponse, error) {
	var target ordering.OrderStatus
	if req.Status != nil {
		target = ordering.OrderStatus(*req.Status)
		if !target.IsValid() {
			return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown order status %q", *req.Status))
		}
	}

	var order *ordering.Order
	var oldStatus ordering.OrderStatus

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		order, err = repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		oldStatus = order.Status

		if len(req.Items) > 0 {
			if err := s.applyItemDiff(ctx, repos, order, req.Items); err != nil {
				return err
			}
		}

		if req.Status != nil {
			if err := order.ChangeStatus(target); err != nil {
				return err
			}
			if target == ordering.OrderStatusInvoiced && order.MarkCountedForBestsellers() {
				for idx := range order.Items {
					item := &order.Items[idx]
					if err := repos.ProductRepo().IncrementSalesCount(ctx, item.ProductID, int64(item.Quantity)); err != nil {
						return err
					}
				}
			}
		}
		if req.TrackingNumber != nil {
			order.SetTrackingNumber(*req.TrackingNumber)
		}
		if req.Shipping != nil {
			order.SetShipping(req.Shipping.toDomain())
		}
		if req.Comment != nil {
			order.SetComment(*req.Comment)
		}

		return repos.OrderRepo().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	if req.Status != nil && oldStatus != order.Status {
		s.afterStatusChange(ctx, order, oldStatus)
	} else {
		s.invalidateCache(ctx)
		s.publishDomainEvents(ctx, order)
	}

	response := ToAdminOrderResponse(order)
	return &response, nil
}

// applyItemDiff replaces the order's item list, adjusting variant stock by the
// per-variant quantity difference. Surviving lines keep their original unit
// price and stock snapshots; new lines get a fresh effective price and fresh
// snapshots; removed lines are fully restocked.
func (s *OrderService) applyItemDiff(ctx context.Context, repos TransactionalRepositories, order *ordering.Order, inputs []CreateOrderItemInput) error {
	lines, err := toReconcileLines(inputs)
	if err != nil {
		return err
	}
	lines = DedupLines(lines)

	now := time.Now()
	newItems := make([]ordering.OrderItem, 0, len(lines))
	seen := make(map[string]bool, len(lines))

	for _, line := range lines {
		key := ordering.LineKey(line.ProductID, line.SizeID, line.ColorID)
		seen[key] = true

		prev := order.ItemByVariant(key)
		prevQty := 0
		if prev != nil {
			prevQty = prev.Quantity
		}
		diff := line.Quantity - prevQty

		if diff > 0 {
			variant, err := repos.ProductRepo().FindVariant(ctx, line.ProductID, line.SizeID, line.ColorID)
			if err != nil {
				return err
			}
			if variant.Stock < diff {
				return shared.ErrInsufficientStock
			}
			after, err := repos.ProductRepo().AdjustVariantStock(ctx, line.ProductID, line.SizeID, line.ColorID, -diff)
			if err != nil {
				return err
			}

			if prev == nil {
				product, err := repos.ProductRepo().FindByID(ctx, line.ProductID)
				if err != nil {
					return err
				}
				item, err := ordering.NewOrderItem(order.ID, line.ProductID, line.SizeID, line.ColorID, line.Quantity, product.EffectivePrice(now))
				if err != nil {
					return err
				}
				item.ProductName = product.Name
				item.SizeLabel = variant.SizeLabel
				item.ColorName = variant.ColorName
				item.SetStockSnapshots(variant.Stock, after)
				newItems = append(newItems, *item)
				continue
			}
		} else if diff < 0 {
			if _, err := repos.ProductRepo().AdjustVariantStock(ctx, line.ProductID, line.SizeID, line.ColorID, -diff); err != nil {
				return err
			}
		}

		kept := *prev
		if err := kept.UpdateQuantity(line.Quantity); err != nil {
			return err
		}
		newItems = append(newItems, kept)
	}

	// lines dropped from the order give their stock back in full
	for idx := range order.Items {
		item := &order.Items[idx]
		if seen[item.VariantKey()] {
			continue
		}
		if _, err := repos.ProductRepo().AdjustVariantStock(ctx, item.ProductID, item.SizeID, item.ColorID, item.Quantity); err != nil {
			return err
		}
	}

	order.ReplaceItems(newItems)
	return nil
}

func (s *OrderService) buildOrder(userID uuid.UUID, req CreateOrderRequest, products map[uuid.UUID]*catalog.Product, results []ReconcileResult) (*ordering.Order, error) {
	order, err := ordering.NewOrder(userID, req.IdempotencyKey, req.Shipping.toDomain())
	if err != nil {
		return nil, err
	}
	if req.Comment != "" {
		order.SetComment(req.Comment)
	}

	now := time.Now()
	for _, result := range results {
		product, ok := products[result.Line.ProductID]
		if !ok {
			return nil, shared.ErrNotFound
		}

		item, err := order.AddItem(result.Line.ProductID, result.Line.SizeID, result.Line.ColorID, result.Line.Quantity, product.EffectivePrice(now))
		if err != nil {
			return nil, err
		}
		item.ProductName = product.Name
		item.SizeLabel = result.Variant.SizeLabel
		item.ColorName = result.Variant.ColorName
		item.SetStockSnapshots(result.StockBefore, result.StockAfter)
	}

	return order, nil
}

func (s *OrderService) loadProducts(ctx context.Context, lines []ReconcileLine) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(products) != len(ids) {
		return nil, shared.ErrNotFound
	}

	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for idx := range products {
		byID[products[idx].ID] = &products[idx]
	}
	return byID, nil
}

// afterCreate runs the post-write side effects of order placement. None of
// them can fail the already-persisted order.
func (s *OrderService) afterCreate(ctx context.Context, order *ordering.Order, products map[uuid.UUID]*catalog.Product, results []ReconcileResult) {
	if s.alerts != nil {
		for _, result := range results {
			if _, ok := products[result.Line.ProductID]; !ok {
				continue
			}
			if err := s.alerts.EvaluateVariantStock(ctx, result.Line.ProductID, result.Variant, result.StockAfter); err != nil {
				s.logger.Warn("variant stock alert evaluation failed",
					zap.String("variant", result.Line.Key()),
					zap.Error(err))
			}
		}
		if err := s.alerts.NotifyOrderCreated(ctx, order); err != nil {
			s.logger.Warn("order created alert failed", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}

	s.invalidateCache(ctx)
	s.publishDomainEvents(ctx, order)
}

func (s *OrderService) afterStatusChange(ctx context.Context, order *ordering.Order, oldStatus ordering.OrderStatus) {
	if s.alerts != nil {
		if err := s.alerts.NotifyOrderStatusChanged(ctx, order, oldStatus, order.Status); err != nil {
			s.logger.Warn("order status alert failed", zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}
	s.invalidateCache(ctx)
	s.publishDomainEvents(ctx, order)
}

func (s *OrderService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}

// publishDomainEvents publishes all pending domain events from the order
func (s *OrderService) publishDomainEvents(ctx context.Context, order *ordering.Order) {
	if s.eventPublisher == nil {
		return
	}
	events := order.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	order.ClearDomainEvents()
}

func toReconcileLines(inputs []CreateOrderItemInput) ([]ReconcileLine, error) {
	lines := make([]ReconcileLine, 0, len(inputs))
	for _, input := range inputs {
		productID, err := uuid.Parse(input.ProductID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID is not a valid UUID")
		}
		sizeID, err := uuid.Parse(input.SizeID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_VARIANT", "Size ID is not a valid UUID")
		}
		colorID, err := uuid.Parse(input.ColorID)
		if err != nil {
			return nil, shared.NewDomainError("INVALID_VARIANT", "Color ID is not a valid UUID")
		}

		lines = append(lines, ReconcileLine{
			ProductID: productID,
			SizeID:    sizeID,
			ColorID:   colorID,
			Quantity:  input.CoercedQuantity(),
		})
	}
	return lines, nil
}
