package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shopline/backend/internal/application/alerting"
)

// StaleOrderScheduler runs the stale-order sweep on a fixed interval
type StaleOrderScheduler struct {
	sweeper   *alerting.StaleOrderSweeper
	logger    *zap.Logger
	config    StaleOrderSchedulerConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// StaleOrderSchedulerConfig holds configuration for the stale-order scheduler
type StaleOrderSchedulerConfig struct {
	// Enabled determines if the scheduler is active
	Enabled bool

	// Interval is how often the sweep runs
	Interval time.Duration

	// SweepTimeout is the maximum time for a single sweep run
	SweepTimeout time.Duration
}

// DefaultStaleOrderSchedulerConfig returns default configuration
func DefaultStaleOrderSchedulerConfig() StaleOrderSchedulerConfig {
	return StaleOrderSchedulerConfig{
		Enabled:      true,
		Interval:     time.Hour,
		SweepTimeout: 10 * time.Minute,
	}
}

// NewStaleOrderScheduler creates a new stale-order scheduler
func NewStaleOrderScheduler(
	sweeper *alerting.StaleOrderSweeper,
	logger *zap.Logger,
	config StaleOrderSchedulerConfig,
) *StaleOrderScheduler {
	return &StaleOrderScheduler{
		sweeper: sweeper,
		logger:  logger,
		config:  config,
	}
}

// Start starts the scheduler
func (s *StaleOrderScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Stale order scheduler is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runSweepLoop(ctx)

	s.logger.Info("Stale order scheduler started",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("sweep_timeout", s.config.SweepTimeout),
	)

	return nil
}

// Stop gracefully stops the scheduler
func (s *StaleOrderScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Stale order scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Stale order scheduler stop timed out")
		return ctx.Err()
	}
}

// runSweepLoop runs the sweep on every tick until the context is cancelled
func (s *StaleOrderScheduler) runSweepLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Run once right away so a restart does not delay detection by a full interval
	s.executeSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Sweep loop stopping")
			return
		case <-ticker.C:
			s.executeSweep(ctx)
		}
	}
}

// executeSweep runs a single sweep with a timeout
func (s *StaleOrderScheduler) executeSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	startTime := time.Now()
	flagged, err := s.sweeper.Sweep(sweepCtx)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("Stale order sweep failed",
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Stale order sweep completed",
		zap.Int("orders_flagged", flagged),
		zap.Duration("duration", duration),
	)
}

// TriggerImmediateSweep runs a sweep outside the regular schedule
func (s *StaleOrderScheduler) TriggerImmediateSweep(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("Triggering immediate stale order sweep")

	go func() {
		defer s.wg.Done()
		s.executeSweep(ctx)
	}()

	return nil
}

// IsRunning returns whether the scheduler is running
func (s *StaleOrderScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}
