package interfaces

import "time"

// CancelFunc stops a scheduled task. Calling it more than once is a no-op.
type CancelFunc func()

// -----------------------------------------------------------------------------
// IScheduler runs periodic tasks. Injected so timing can be driven by tests.
// -----------------------------------------------------------------------------

type IScheduler interface {
	Schedule(period time.Duration, task func()) CancelFunc
}
