package watchlist

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"stock-watchlist/src/interfaces"
	"stock-watchlist/src/logger"
	"stock-watchlist/src/models"
	"stock-watchlist/src/utils"
)

const (
	MessageRateLimited = "Too many requests: Rate limit exceeded. Please wait and try again."
	MessageLoadFailed  = "Failed to load stock data"

	SnapshotType = "SNAPSHOT"
	DisplayTick  = time.Second
)

var ErrAlreadyMounted = errors.New("watchlist engine already mounted")

// -----------------------------------------------------------------------------

// Engine owns the watchlist, refreshes it on a fixed interval and serves
// projected snapshots. All state changes happen under mu; quote I/O runs
// outside it.
type Engine struct {
	Store     interfaces.IWatchlistStore
	Fanout    *Fanout
	Scheduler interfaces.IScheduler
	Market    *utils.MarketScheduler // optional
	Interval  time.Duration
	Logger    *logger.Logger
	Now       func() time.Time

	// persistMu orders mutations with their saves so the store ends up
	// holding the latest list. Taken before mu, never while holding it.
	persistMu sync.Mutex

	mu          sync.Mutex
	list        *Watchlist
	state       models.EngineState
	message     string
	elapsed     time.Duration
	seq         uint64 // last refresh started
	applied     uint64 // last refresh reconciled
	lastRefresh time.Time
	mounted     bool
	disposed    bool
	ctx         context.Context
	cancel      context.CancelFunc
	stopTimers  []interfaces.CancelFunc
	wg          sync.WaitGroup

	listeners    map[int]func()
	nextListener int
}

// -----------------------------------------------------------------------------

// NewEngine loads the persisted watchlist. Nothing is fetched until Mount.
func NewEngine(store interfaces.IWatchlistStore, fanout *Fanout, scheduler interfaces.IScheduler, interval time.Duration, log *logger.Logger) *Engine {
	return &Engine{
		Store:     store,
		Fanout:    fanout,
		Scheduler: scheduler,
		Interval:  interval,
		Logger:    log,
		Now:       time.Now,
		list:      NewWatchlist(store.Load()),
		state:     models.StateIdle,
		listeners: make(map[int]func()),
	}
}

// -----------------------------------------------------------------------------

// Mount starts the display and fetch timers and the initial load
func (e *Engine) Mount(ctx context.Context) error {
	e.mu.Lock()
	if e.mounted {
		e.mu.Unlock()
		return ErrAlreadyMounted
	}
	e.mounted = true
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.elapsed = 0

	// display first: at a shared instant the countdown completes before the fetch tick resets it
	e.stopTimers = []interfaces.CancelFunc{
		e.Scheduler.Schedule(DisplayTick, e.onDisplayTick),
		e.Scheduler.Schedule(e.Interval, e.onFetchTick),
	}

	if e.list.Len() == 0 {
		e.state = models.StateReady
	} else {
		e.state = models.StateLoading
		e.startRefreshLocked()
	}
	e.Logger.Info("Watchlist mounted with %d symbols, refreshing every %s", e.list.Len(), e.Interval)
	e.mu.Unlock()

	e.notify()
	return nil
}

// -----------------------------------------------------------------------------

// Unmount stops both timers and waits for in-flight refreshes, whose results
// are discarded. The engine cannot be mounted again.
func (e *Engine) Unmount() {
	e.mu.Lock()
	if !e.mounted || e.disposed {
		e.mu.Unlock()
		return
	}
	e.disposed = true
	for _, stop := range e.stopTimers {
		stop()
	}
	e.stopTimers = nil
	e.cancel()
	e.state = models.StateIdle
	e.mu.Unlock()

	e.wg.Wait()
	e.Logger.Info("Watchlist unmounted")
}

// -----------------------------------------------------------------------------

func (e *Engine) startRefreshLocked() {
	e.seq++
	seq := e.seq
	symbols := e.list.Symbols()
	ctx := e.ctx

	e.wg.Add(1)
	go e.refresh(ctx, seq, symbols)
}

// -----------------------------------------------------------------------------

func (e *Engine) refresh(ctx context.Context, seq uint64, symbols []string) {
	defer e.wg.Done()

	report := e.Fanout.FetchAll(ctx, symbols)

	e.mu.Lock()
	if e.disposed || seq <= e.applied {
		e.mu.Unlock()
		return
	}
	e.applied = seq
	e.list.Reconcile(report)
	e.lastRefresh = e.Now()

	if seq == e.seq {
		switch {
		case report.AllFailed() && report.AllRateLimited:
			e.state, e.message = models.StateError, MessageRateLimited
		case report.AllFailed():
			e.state, e.message = models.StateError, MessageLoadFailed
		default:
			e.state, e.message = models.StateReady, ""
		}
	}
	e.mu.Unlock()

	e.notify()
}

// -----------------------------------------------------------------------------

func (e *Engine) onFetchTick() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.elapsed = 0

	if e.list.Len() == 0 {
		// nothing to fetch; anything still in flight is obsolete
		e.applied = e.seq
		e.state, e.message = models.StateReady, ""
	} else {
		if e.state != models.StateLoading {
			e.state, e.message = models.StateRefreshing, ""
		}
		e.startRefreshLocked()
	}
	e.mu.Unlock()

	e.notify()
}

// -----------------------------------------------------------------------------

func (e *Engine) onDisplayTick() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.elapsed += DisplayTick
	if e.elapsed > e.Interval {
		e.elapsed = e.Interval
	}
	e.mu.Unlock()

	e.notify()
}

// -----------------------------------------------------------------------------

// Add appends a symbol and persists the list. The new entry has no quote
// until the next scheduled refresh.
func (e *Engine) Add(symbol string) bool {
	e.persistMu.Lock()
	e.mu.Lock()
	added := e.list.Add(symbol)
	symbols := e.list.Symbols()
	e.mu.Unlock()

	if !added {
		e.persistMu.Unlock()
		return false
	}
	e.save(symbols)
	e.persistMu.Unlock()

	e.notify()
	return true
}

// -----------------------------------------------------------------------------

// Remove drops a symbol and persists the list. Removing an absent symbol is a no-op.
func (e *Engine) Remove(symbol string) bool {
	e.persistMu.Lock()
	e.mu.Lock()
	removed := e.list.Remove(symbol)
	symbols := e.list.Symbols()
	e.mu.Unlock()

	if !removed {
		e.persistMu.Unlock()
		return false
	}
	e.save(symbols)
	e.persistMu.Unlock()

	e.notify()
	return true
}

// -----------------------------------------------------------------------------

// save writes through to the store. Failures are already logged by the
// store and the in-memory list stays authoritative.
func (e *Engine) save(symbols []string) {
	if err := e.Store.Save(symbols); err != nil {
		e.Logger.Debug("Watchlist kept in memory only: %v", err)
	}
}

// -----------------------------------------------------------------------------

func (e *Engine) State() models.EngineState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// -----------------------------------------------------------------------------

func (e *Engine) Symbols() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.list.Symbols()
}

// -----------------------------------------------------------------------------

func (e *Engine) LastRefresh() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastRefresh
}

// -----------------------------------------------------------------------------

func (e *Engine) cycleLocked() models.MRefreshCycle {
	c := models.MRefreshCycle{
		IntervalMs: e.Interval.Milliseconds(),
		ElapsedMs:  e.elapsed.Milliseconds(),
	}
	if e.Interval > 0 {
		c.ProgressPercent = float64(e.elapsed) / float64(e.Interval) * 100
		c.SecondsLeft = int64(math.Ceil((e.Interval - e.elapsed).Seconds()))
	}
	return c
}

// -----------------------------------------------------------------------------

// Snapshot projects the current entries for one viewer
func (e *Engine) Snapshot(sortOption, filterText string) models.MWatchlistSnapshot {
	e.mu.Lock()
	entries := e.list.Entries()
	symbols := e.list.Symbols()
	snap := models.MWatchlistSnapshot{
		Type:      SnapshotType,
		State:     e.state,
		Message:   e.message,
		Cycle:     e.cycleLocked(),
		Total:     len(entries),
		Sort:      string(ParseSortOption(sortOption)),
		Filter:    filterText,
		Timestamp: e.Now().UTC().Unix(),
	}
	if !e.lastRefresh.IsZero() {
		snap.LastRefresh = e.lastRefresh.UTC().Unix()
	}
	e.mu.Unlock()

	snap.Entries = Project(entries, sortOption, filterText)
	if e.Market != nil {
		snap.MarketOpen = e.Market.AnyMarketOpen(symbols, e.Now())
	}
	return snap
}

// -----------------------------------------------------------------------------

// Subscribe registers fn to run after every change. fn runs without the
// engine lock held and may call back into the engine.
func (e *Engine) Subscribe(fn func()) (unsubscribe func()) {
	e.mu.Lock()
	id := e.nextListener
	e.nextListener++
	e.listeners[id] = fn
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

// -----------------------------------------------------------------------------

func (e *Engine) notify() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	fns := make([]func(), 0, len(e.listeners))
	for _, fn := range e.listeners {
		fns = append(fns, fn)
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
