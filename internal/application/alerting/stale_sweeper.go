package alerting

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/shopline/backend/internal/domain/ordering"
	"github.com/shopline/backend/internal/domain/shared"
)

const (
	// DefaultStatusSLAHours is the default age limit for every swept status
	DefaultStatusSLAHours = 72

	sweepPageSize = 200
)

// SweepConfig sets per-status age limits for the stale-order sweep
type SweepConfig struct {
	PendingSLAHours  int
	InvoicedSLAHours int
	ShippedSLAHours  int
}

// DefaultSweepConfig returns the default sweep configuration
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		PendingSLAHours:  DefaultStatusSLAHours,
		InvoicedSLAHours: DefaultStatusSLAHours,
		ShippedSLAHours:  DefaultStatusSLAHours,
	}
}

func (c SweepConfig) slaFor(status ordering.OrderStatus) time.Duration {
	hours := DefaultStatusSLAHours
	switch status {
	case ordering.OrderStatusPending:
		if c.PendingSLAHours > 0 {
			hours = c.PendingSLAHours
		}
	case ordering.OrderStatusInvoiced:
		if c.InvoicedSLAHours > 0 {
			hours = c.InvoicedSLAHours
		}
	case ordering.OrderStatusShipped:
		if c.ShippedSLAHours > 0 {
			hours = c.ShippedSLAHours
		}
	}
	return time.Duration(hours) * time.Hour
}

// StaleOrderSweeper scans non-terminal orders and raises stale alerts for the
// ones sitting in their status past the configured age limit. Runs are
// idempotent within the alert renotify window, so overlapping or repeated
// sweeps do not spam.
type StaleOrderSweeper struct {
	orderRepo ordering.OrderRepository
	alerts    *AlertService
	config    SweepConfig
	logger    *zap.Logger
}

// NewStaleOrderSweeper creates a new StaleOrderSweeper
func NewStaleOrderSweeper(orderRepo ordering.OrderRepository, alerts *AlertService, config SweepConfig, logger *zap.Logger) *StaleOrderSweeper {
	return &StaleOrderSweeper{
		orderRepo: orderRepo,
		alerts:    alerts,
		config:    config,
		logger:    logger,
	}
}

// Sweep runs one pass over pending, invoiced and shipped orders and returns
// the number of alerts raised. Per-order failures are logged and skipped.
func (s *StaleOrderSweeper) Sweep(ctx context.Context) (int, error) {
	statuses := []ordering.OrderStatus{
		ordering.OrderStatusPending,
		ordering.OrderStatusInvoiced,
		ordering.OrderStatusShipped,
	}

	now := time.Now()
	raised := 0

	for _, status := range statuses {
		sla := s.config.slaFor(status)
		cutoff := now.Add(-sla)

		for page := 1; ; page++ {
			filter := shared.DefaultFilter()
			filter.Page = page
			filter.PageSize = sweepPageSize
			filter.OrderBy = "status_changed_at"
			filter.OrderDir = "asc"

			orders, err := s.orderRepo.FindByStatusChangedBefore(ctx, status, cutoff, filter)
			if err != nil {
				return raised, err
			}

			for idx := range orders {
				order := &orders[idx]
				created, err := s.alerts.NotifyOrderStale(ctx, order, now.Sub(order.StatusChangedAt))
				if err != nil {
					s.logger.Warn("stale order alert failed",
						zap.String("order_id", order.ID.String()),
						zap.String("status", status.String()),
						zap.Error(err))
					continue
				}
				if created {
					raised++
				}
			}

			if len(orders) < sweepPageSize {
				break
			}
		}
	}

	s.logger.Info("stale order sweep finished", zap.Int("alerts_raised", raised))
	return raised, nil
}
