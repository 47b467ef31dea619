package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shopline/backend/internal/domain/alerting"
	"github.com/shopline/backend/internal/domain/catalog"
	"github.com/shopline/backend/internal/domain/ordering"
	"github.com/shopline/backend/internal/domain/shared"
)

const (
	// DefaultLowStockThreshold is the stock level at or below which a
	// low-stock alert fires
	DefaultLowStockThreshold = 3
	// DefaultRenotifyWindow is how long a low-stock alert suppresses
	// repeats for the same variant
	DefaultRenotifyWindow = 24 * time.Hour
)

// Config tunes the alert emitter
type Config struct {
	LowStockThreshold int
	RenotifyWindow    time.Duration
}

// DefaultConfig returns the default alert emitter configuration
func DefaultConfig() Config {
	return Config{
		LowStockThreshold: DefaultLowStockThreshold,
		RenotifyWindow:    DefaultRenotifyWindow,
	}
}

// AlertService creates and serves admin alerts. Stock alerts are deduplicated
// per variant: out-of-stock at most once per calendar day, low-stock at most
// once per renotify window.
type AlertService struct {
	alertRepo      alerting.AlertRepository
	eventPublisher shared.EventPublisher
	config         Config
	logger         *zap.Logger
}

// NewAlertService creates a new AlertService
func NewAlertService(alertRepo alerting.AlertRepository, config Config, logger *zap.Logger) *AlertService {
	if config.LowStockThreshold <= 0 {
		config.LowStockThreshold = DefaultLowStockThreshold
	}
	if config.RenotifyWindow <= 0 {
		config.RenotifyWindow = DefaultRenotifyWindow
	}
	return &AlertService{
		alertRepo: alertRepo,
		config:    config,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher used to broadcast new alerts
func (s *AlertService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// EvaluateVariantStock inspects a variant's stock level after a change and
// raises an out-of-stock or low-stock alert if one is due. Out-of-stock takes
// precedence over low-stock.
func (s *AlertService) EvaluateVariantStock(ctx context.Context, productID uuid.UUID, variant *catalog.Variant, stock int) error {
	now := time.Now()
	key := catalog.VariantKey(variant.SizeID, variant.ColorID)

	if stock <= 0 {
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		exists, err := s.alertRepo.ExistsVariantAlertSince(ctx, alerting.AlertTypeOutOfStockVariant, productID, key, startOfDay)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		message := fmt.Sprintf("Variant %s/%s is out of stock", variant.SizeLabel, variant.ColorName)
		return s.createVariantAlert(ctx, alerting.AlertTypeOutOfStockVariant, productID, variant, message)
	}

	if stock <= s.config.LowStockThreshold {
		exists, err := s.alertRepo.ExistsVariantAlertSince(ctx, alerting.AlertTypeLowStockVariant, productID, key, now.Add(-s.config.RenotifyWindow))
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		message := fmt.Sprintf("Variant %s/%s is low on stock (%d left)", variant.SizeLabel, variant.ColorName, stock)
		return s.createVariantAlert(ctx, alerting.AlertTypeLowStockVariant, productID, variant, message)
	}

	return nil
}

// NotifyOrderCreated raises an ORDER_CREATED alert for a new order
func (s *AlertService) NotifyOrderCreated(ctx context.Context, order *ordering.Order) error {
	message := fmt.Sprintf("New order %s placed (%d items, total %s)", order.ID, order.ItemCount(), order.Total)
	alert, err := alerting.NewOrderAlert(alerting.AlertTypeOrderCreated, order.ID, order.Status.String(), message)
	if err != nil {
		return err
	}
	return s.saveAndBroadcast(ctx, alert)
}

// NotifyOrderStatusChanged raises an ORDER_STATUS_CHANGED alert
func (s *AlertService) NotifyOrderStatusChanged(ctx context.Context, order *ordering.Order, oldStatus, newStatus ordering.OrderStatus) error {
	message := fmt.Sprintf("Order %s moved from %s to %s", order.ID, oldStatus, newStatus)
	alert, err := alerting.NewOrderAlert(alerting.AlertTypeOrderStatusChange, order.ID, newStatus.String(), message)
	if err != nil {
		return err
	}
	return s.saveAndBroadcast(ctx, alert)
}

// NotifyOrderStale raises an ORDER_STALE_STATUS alert unless one already
// exists for this order and status within the renotify window.
func (s *AlertService) NotifyOrderStale(ctx context.Context, order *ordering.Order, age time.Duration) (bool, error) {
	exists, err := s.alertRepo.ExistsOrderAlertSince(ctx, alerting.AlertTypeOrderStaleStatus, order.ID, order.Status.String(), time.Now().Add(-s.config.RenotifyWindow))
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	message := fmt.Sprintf("Order %s stuck in %s for %dh", order.ID, order.Status, int(age.Hours()))
	alert, err := alerting.NewOrderAlert(alerting.AlertTypeOrderStaleStatus, order.ID, order.Status.String(), message)
	if err != nil {
		return false, err
	}
	if err := s.saveAndBroadcast(ctx, alert); err != nil {
		return false, err
	}
	return true, nil
}

// List returns recent alerts, newest first
func (s *AlertService) List(ctx context.Context, unseenOnly bool, limit int) ([]AlertResponse, error) {
	filter := shared.DefaultFilter()
	if limit > 0 {
		filter.PageSize = limit
	}

	alerts, err := s.alertRepo.FindRecent(ctx, unseenOnly, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]AlertResponse, 0, len(alerts))
	for idx := range alerts {
		responses = append(responses, ToAlertResponse(&alerts[idx]))
	}
	return responses, nil
}

// MarkSeen marks a single alert as seen
func (s *AlertService) MarkSeen(ctx context.Context, id uuid.UUID) error {
	return s.alertRepo.MarkSeen(ctx, id)
}

// MarkAllSeen marks every unseen alert as seen and returns how many changed
func (s *AlertService) MarkAllSeen(ctx context.Context) (int64, error) {
	return s.alertRepo.MarkAllSeen(ctx)
}

// CountUnseen returns the number of unseen alerts
func (s *AlertService) CountUnseen(ctx context.Context) (int64, error) {
	return s.alertRepo.CountUnseen(ctx)
}

func (s *AlertService) createVariantAlert(ctx context.Context, alertType alerting.AlertType, productID uuid.UUID, variant *catalog.Variant, message string) error {
	alert, err := alerting.NewVariantAlert(alertType, productID, catalog.VariantKey(variant.SizeID, variant.ColorID), message)
	if err != nil {
		return err
	}
	return s.saveAndBroadcast(ctx, alert)
}

func (s *AlertService) saveAndBroadcast(ctx context.Context, alert *alerting.Alert) error {
	if err := s.alertRepo.Save(ctx, alert); err != nil {
		return err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, alerting.NewAlertCreatedEvent(alert)); err != nil {
			s.logger.Warn("alert broadcast failed",
				zap.String("alert_id", alert.ID.String()),
				zap.String("type", alert.Type.String()),
				zap.Error(err))
		}
	}
	return nil
}
