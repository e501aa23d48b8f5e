package utils

import (
	"sort"
	"sync"
	"time"

	"stock-watchlist/src/interfaces"
)

// -----------------------------------------------------------------------------

// TickerScheduler runs tasks on wall-clock tickers
type TickerScheduler struct{}

func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

// -----------------------------------------------------------------------------

func (s *TickerScheduler) Schedule(period time.Duration, task func()) interfaces.CancelFunc {
	ticker := time.NewTicker(period)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				select {
				case <-done:
					return
				default:
				}
				task()
			}
		}
	}()

	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

// -----------------------------------------------------------------------------

// ManualScheduler is a virtual clock. Tasks only run inside Advance, in due
// order; tasks due at the same instant run in registration order.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	id        int
	period    time.Duration
	next      time.Duration
	fn        func()
	cancelled bool
}

func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// -----------------------------------------------------------------------------

func (m *ManualScheduler) Schedule(period time.Duration, task func()) interfaces.CancelFunc {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	t := &manualTask{id: m.seq, period: period, next: m.now + period, fn: task}
	m.tasks = append(m.tasks, t)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		t.cancelled = true
	}
}

// -----------------------------------------------------------------------------

// Advance moves the clock forward by d, firing every task that falls due.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d

	for {
		due := m.dueLocked(target)
		if due == nil {
			break
		}
		m.now = due.next
		due.next += due.period
		fn := due.fn

		m.mu.Unlock()
		fn()
		m.mu.Lock()
	}

	m.now = target
	m.mu.Unlock()
}

// -----------------------------------------------------------------------------

func (m *ManualScheduler) dueLocked(target time.Duration) *manualTask {
	var live []*manualTask
	for _, t := range m.tasks {
		if !t.cancelled && t.next <= target {
			live = append(live, t)
		}
	}
	if len(live) == 0 {
		return nil
	}
	sort.Slice(live, func(i, j int) bool {
		if live[i].next != live[j].next {
			return live[i].next < live[j].next
		}
		return live[i].id < live[j].id
	})
	return live[0]
}

// -----------------------------------------------------------------------------

// Active counts the tasks that have not been cancelled.
func (m *ManualScheduler) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}
