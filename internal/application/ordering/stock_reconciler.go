package ordering

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopline/backend/internal/domain/catalog"
	"github.com/shopline/backend/internal/domain/ordering"
	"github.com/shopline/backend/internal/domain/shared"
)

// ReconcileLine is one variant worth of demand to take from stock
type ReconcileLine struct {
	ProductID uuid.UUID
	SizeID    uuid.UUID
	ColorID   uuid.UUID
	Quantity  int
}

// Key returns the product-scoped variant key of the line
func (l ReconcileLine) Key() string {
	return ordering.LineKey(l.ProductID, l.SizeID, l.ColorID)
}

// ReconcileResult is the outcome of taking stock for one line. StockBefore is
// the value read ahead of the decrement, StockAfter the value re-read after it;
// both become the order line's snapshots.
type ReconcileResult struct {
	Line        ReconcileLine
	Variant     *catalog.Variant
	StockBefore int
	StockAfter  int
}

// StockReconciler takes stock for an order line by line. Each line is handled
// with a read, a precondition check, an unconditional atomic decrement and a
// re-read; a decrement that lands below zero is put back immediately. The
// decrements are individually atomic but the sequence is not a transaction, so
// on failure every already-applied line gets a compensating increment.
type StockReconciler struct {
	products catalog.ProductRepository
	logger   *zap.Logger
}

// NewStockReconciler creates a new StockReconciler
func NewStockReconciler(products catalog.ProductRepository, logger *zap.Logger) *StockReconciler {
	return &StockReconciler{
		products: products,
		logger:   logger,
	}
}

// DedupLines merges lines that target the same variant by summing quantities.
// Order of first appearance is preserved.
func DedupLines(lines []ReconcileLine) []ReconcileLine {
	merged := make([]ReconcileLine, 0, len(lines))
	index := make(map[string]int, len(lines))
	for _, line := range lines {
		key := line.Key()
		if at, ok := index[key]; ok {
			merged[at].Quantity += line.Quantity
			continue
		}
		index[key] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

// Reconcile takes stock for all lines. On any failure the already-applied
// lines are compensated and the first error is returned; on success the caller
// owns the decrements and must call Rollback itself if a later step fails.
func (r *StockReconciler) Reconcile(ctx context.Context, lines []ReconcileLine) ([]ReconcileResult, error) {
	lines = DedupLines(lines)
	applied := make([]ReconcileResult, 0, len(lines))

	for _, line := range lines {
		variant, err := r.products.FindVariant(ctx, line.ProductID, line.SizeID, line.ColorID)
		if err != nil {
			r.Rollback(ctx, applied)
			return nil, err
		}

		if variant.Stock < line.Quantity {
			r.Rollback(ctx, applied)
			return nil, shared.ErrInsufficientStock
		}

		after, err := r.products.AdjustVariantStock(ctx, line.ProductID, line.SizeID, line.ColorID, -line.Quantity)
		if err != nil {
			r.Rollback(ctx, applied)
			return nil, err
		}

		// The precondition held on our read but a concurrent order may have
		// taken the stock between the read and the decrement.
		if after < 0 {
			if _, compErr := r.products.AdjustVariantStock(ctx, line.ProductID, line.SizeID, line.ColorID, line.Quantity); compErr != nil {
				r.logger.Error("compensating increment failed",
					zap.String("variant", line.Key()),
					zap.Int("quantity", line.Quantity),
					zap.Error(compErr))
			}
			r.Rollback(ctx, applied)
			return nil, shared.ErrRaceLostStock
		}

		applied = append(applied, ReconcileResult{
			Line:        line,
			Variant:     variant,
			StockBefore: variant.Stock,
			StockAfter:  after,
		})
	}

	return applied, nil
}

// Rollback puts back the stock of already-applied lines, newest first. It is
// best-effort: failures are logged and the remaining lines are still restocked.
func (r *StockReconciler) Rollback(ctx context.Context, applied []ReconcileResult) {
	for idx := len(applied) - 1; idx >= 0; idx-- {
		line := applied[idx].Line
		if _, err := r.products.AdjustVariantStock(ctx, line.ProductID, line.SizeID, line.ColorID, line.Quantity); err != nil {
			r.logger.Error("rollback increment failed",
				zap.String("variant", line.Key()),
				zap.Int("quantity", line.Quantity),
				zap.Error(err))
		}
	}
}
