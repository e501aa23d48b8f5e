package watchlist

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"stock-watchlist/src/helpers"
	"stock-watchlist/src/logger"
	"stock-watchlist/src/models"
)

var testLogger = logger.NewLogger("WatchlistTest")

var (
	quoteAAPL  = models.MQuote{CurrentPrice: 150.23, PreviousClose: 149.50, Change: 0.73, PercentChange: 0.49}
	quoteGOOGL = models.MQuote{CurrentPrice: 2750.10, PreviousClose: 2735.45, Change: 14.65, PercentChange: 0.54}
	quoteMSFT  = models.MQuote{CurrentPrice: 148.00, PreviousClose: 150.00, Change: -2.00, PercentChange: -1.33}
)

// fakeQuotes serves canned quotes. When gate is set, fetches block until it
// is closed or their context ends.
type fakeQuotes struct {
	mu          sync.Mutex
	quotes      map[string]models.MQuote
	errs        map[string]error
	gate        chan struct{}
	calls       int32
	inflight    int32
	maxInflight int32
}

func newFakeQuotes() *fakeQuotes {
	return &fakeQuotes{
		quotes: map[string]models.MQuote{"AAPL": quoteAAPL, "GOOGL": quoteGOOGL, "MSFT": quoteMSFT},
		errs:   map[string]error{},
	}
}

func (f *fakeQuotes) FetchQuote(ctx context.Context, symbol string) (models.MQuote, error) {
	atomic.AddInt32(&f.calls, 1)
	n := atomic.AddInt32(&f.inflight, 1)
	defer atomic.AddInt32(&f.inflight, -1)

	f.mu.Lock()
	if n > f.maxInflight {
		f.maxInflight = n
	}
	gate := f.gate
	q, ok := f.quotes[symbol]
	err := f.errs[symbol]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return models.MQuote{}, ctx.Err()
		}
	}
	if err != nil {
		return models.MQuote{}, err
	}
	if !ok {
		return models.MQuote{}, &helpers.QuoteError{Kind: models.ErrorKindNotFound, Symbol: symbol, Status: 404}
	}
	return q, nil
}

func (f *fakeQuotes) set(fn func(f *fakeQuotes)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeQuotes) callCount() int {
	return int(atomic.LoadInt32(&f.calls))
}

func rateLimited(symbol string) error {
	return &helpers.QuoteError{Kind: models.ErrorKindRateLimited, Symbol: symbol, Status: 429}
}

// memoryStore records every save
type memoryStore struct {
	mu      sync.Mutex
	symbols []string
	saves   int
	failErr error
	jitter  bool // sleep up to 2ms before each save
}

func (m *memoryStore) Load() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.symbols...)
}

func (m *memoryStore) Save(symbols []string) error {
	if m.jitter {
		time.Sleep(time.Duration(rand.Intn(2000)) * time.Microsecond)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.failErr != nil {
		return m.failErr
	}
	m.symbols = append([]string{}, symbols...)
	return nil
}

func (m *memoryStore) saved() []string {
	return m.Load()
}
