package alerting

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shopline/backend/internal/domain/alerting"
	"github.com/shopline/backend/internal/domain/ordering"
)

func staleTestOrder(t *testing.T, status ordering.OrderStatus, age time.Duration) ordering.Order {
	t.Helper()
	order, err := ordering.NewOrder(uuid.New(), "", ordering.ShippingInfo{
		Name: "Jamie Doe", Phone: "1", Address: "a", City: "c", PostalCode: "p",
	})
	require.NoError(t, err)
	order.Status = status
	order.StatusChangedAt = time.Now().Add(-age)
	order.ClearDomainEvents()
	return *order
}

func newSweeperFixture(config SweepConfig) (*StaleOrderSweeper, *fakeOrderRepo, *fakeAlertRepo, *collectingPublisher) {
	orderRepo := &fakeOrderRepo{}
	alertRepo := newFakeAlertRepo()
	alertService := NewAlertService(alertRepo, DefaultConfig(), zap.NewNop())
	publisher := &collectingPublisher{}
	alertService.SetEventPublisher(publisher)
	sweeper := NewStaleOrderSweeper(orderRepo, alertService, config, zap.NewNop())
	return sweeper, orderRepo, alertRepo, publisher
}

func TestStaleOrderSweeper_Sweep(t *testing.T) {
	ctx := context.Background()

	t.Run("alerts on orders past their status SLA", func(t *testing.T) {
		sweeper, orderRepo, alertRepo, publisher := newSweeperFixture(DefaultSweepConfig())

		orderRepo.add(staleTestOrder(t, ordering.OrderStatusPending, 80*time.Hour))
		orderRepo.add(staleTestOrder(t, ordering.OrderStatusShipped, 100*time.Hour))
		orderRepo.add(staleTestOrder(t, ordering.OrderStatusPending, 10*time.Hour)) // fresh
		orderRepo.add(staleTestOrder(t, ordering.OrderStatusDelivered, 500*time.Hour))
		orderRepo.add(staleTestOrder(t, ordering.OrderStatusCancelled, 500*time.Hour))

		raised, err := sweeper.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, raised)
		assert.Len(t, alertRepo.byType(alerting.AlertTypeOrderStaleStatus), 2)
		// every stale alert is broadcast on the bus
		assert.Len(t, publisher.all(), 2)
	})

	t.Run("renotify window suppresses repeat alerts", func(t *testing.T) {
		sweeper, orderRepo, alertRepo, _ := newSweeperFixture(DefaultSweepConfig())
		orderRepo.add(staleTestOrder(t, ordering.OrderStatusInvoiced, 90*time.Hour))

		raised, err := sweeper.Sweep(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, raised)

		raised, err = sweeper.Sweep(ctx)
		require.NoError(t, err)
		assert.Zero(t, raised)
		assert.Len(t, alertRepo.byType(alerting.AlertTypeOrderStaleStatus), 1)
	})

	t.Run("renotifies after the window passes", func(t *testing.T) {
		sweeper, orderRepo, alertRepo, _ := newSweeperFixture(DefaultSweepConfig())
		order := staleTestOrder(t, ordering.OrderStatusPending, 90*time.Hour)
		orderRepo.add(order)

		old, err := alerting.NewOrderAlert(alerting.AlertTypeOrderStaleStatus, order.ID, order.Status.String(), "old")
		require.NoError(t, err)
		old.CreatedAt = time.Now().Add(-25 * time.Hour)
		require.NoError(t, alertRepo.Save(ctx, old))

		raised, err := sweeper.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, raised)
	})

	t.Run("a status change resets the suppression", func(t *testing.T) {
		sweeper, orderRepo, alertRepo, _ := newSweeperFixture(DefaultSweepConfig())
		order := staleTestOrder(t, ordering.OrderStatusInvoiced, 90*time.Hour)
		orderRepo.add(order)

		// recent alert exists, but for the previous status
		previous, err := alerting.NewOrderAlert(alerting.AlertTypeOrderStaleStatus, order.ID, "pending", "old status")
		require.NoError(t, err)
		require.NoError(t, alertRepo.Save(ctx, previous))

		raised, err := sweeper.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, raised)
	})

	t.Run("custom SLA hours are honored", func(t *testing.T) {
		config := DefaultSweepConfig()
		config.PendingSLAHours = 2
		sweeper, orderRepo, _, _ := newSweeperFixture(config)

		orderRepo.add(staleTestOrder(t, ordering.OrderStatusPending, 3*time.Hour))
		orderRepo.add(staleTestOrder(t, ordering.OrderStatusInvoiced, 3*time.Hour)) // still under 72h

		raised, err := sweeper.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, raised)
	})
}
