package scheduler

import "errors"

var (
	// ErrSchedulerNotRunning is returned when triggering a sweep on a stopped scheduler
	ErrSchedulerNotRunning = errors.New("scheduler is not running")

	// ErrSweepTimeout is returned when a sweep run exceeds its timeout
	ErrSweepTimeout = errors.New("sweep timed out")
)
