package datasource

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"stock-watchlist/src/helpers"
	"stock-watchlist/src/interfaces"
	"stock-watchlist/src/logger"
	"stock-watchlist/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubUpstream struct {
	name    string
	calls   int32
	quote   models.MQuote
	err     error
	release chan struct{}
	matches []models.MSymbolMatch
	sErr    error
}

func (s *stubUpstream) Name() string { return s.name }

func (s *stubUpstream) FetchQuote(ctx context.Context, symbol string) (models.MQuote, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.release != nil {
		<-s.release
	}
	return s.quote, s.err
}

func (s *stubUpstream) SearchSymbols(ctx context.Context, query string) ([]models.MSymbolMatch, error) {
	atomic.AddInt32(&s.calls, 1)
	return s.matches, s.sErr
}

func TestCacheSource_ServesFromCacheWithinTTL(t *testing.T) {
	up := &stubUpstream{name: "stub", quote: models.MQuote{CurrentPrice: 10}}
	c := NewCacheSource(up, time.Minute, 10)
	now := time.Unix(1700000000, 0)
	c.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		q, err := c.FetchQuote(context.Background(), "aapl")
		require.NoError(t, err)
		assert.Equal(t, 10.0, q.CurrentPrice)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&up.calls))

	now = now.Add(2 * time.Minute)
	_, err := c.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&up.calls))
}

func TestCacheSource_DoesNotCacheErrors(t *testing.T) {
	up := &stubUpstream{name: "stub", err: &helpers.QuoteError{Kind: models.ErrorKindRateLimited}}
	c := NewCacheSource(up, time.Minute, 10)

	_, err := c.FetchQuote(context.Background(), "AAPL")
	assert.Equal(t, models.ErrorKindRateLimited, helpers.KindOf(err))
	_, _ = c.FetchQuote(context.Background(), "AAPL")
	assert.Equal(t, int32(2), atomic.LoadInt32(&up.calls))
}

func TestCacheSource_CollapsesConcurrentMisses(t *testing.T) {
	up := &stubUpstream{name: "stub", quote: models.MQuote{CurrentPrice: 1}, release: make(chan struct{})}
	c := NewCacheSource(up, 0, 0)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.FetchQuote(context.Background(), "AAPL")
		}()
	}
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&up.calls) == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(up.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&up.calls))
}

// slowUpstream answers after delay unless ctx ends first
type slowUpstream struct {
	stubUpstream
	delay time.Duration
}

func (s *slowUpstream) FetchQuote(ctx context.Context, symbol string) (models.MQuote, error) {
	atomic.AddInt32(&s.calls, 1)
	select {
	case <-time.After(s.delay):
		return s.quote, nil
	case <-ctx.Done():
		return models.MQuote{}, ctx.Err()
	}
}

func TestCacheSource_CancelledCallerDoesNotFailOthers(t *testing.T) {
	up := &slowUpstream{stubUpstream: stubUpstream{name: "stub", quote: models.MQuote{CurrentPrice: 150.23}}, delay: 50 * time.Millisecond}
	c := NewCacheSource(up, time.Minute, 10)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := c.FetchQuote(ctxA, "AAPL")
		errA <- err
	}()
	require.Eventually(t, func() bool { return atomic.LoadInt32(&up.calls) == 1 }, time.Second, time.Millisecond)

	type result struct {
		q   models.MQuote
		err error
	}
	resB := make(chan result, 1)
	go func() {
		q, err := c.FetchQuote(context.Background(), "AAPL")
		resB <- result{q, err}
	}()

	time.Sleep(10 * time.Millisecond)
	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, 150.23, b.q.CurrentPrice)
	assert.Equal(t, int32(1), atomic.LoadInt32(&up.calls))
}

func TestCacheSource_EvictsOldest(t *testing.T) {
	up := &stubUpstream{name: "stub"}
	c := NewCacheSource(up, time.Minute, 2)

	for _, s := range []string{"A", "B", "C"} {
		_, _ = c.FetchQuote(context.Background(), s)
	}
	_, _ = c.FetchQuote(context.Background(), "A")

	assert.Equal(t, int32(4), atomic.LoadInt32(&up.calls))
	assert.Len(t, c.items, 2)
}

func TestMultiSourceManager_FallsBack(t *testing.T) {
	primary := &stubUpstream{name: "finnhub", err: &helpers.QuoteError{Kind: models.ErrorKindRateLimited}}
	secondary := &stubUpstream{name: "yahoo", quote: models.MQuote{CurrentPrice: 42}}
	m := NewMultiSourceManager([]interfaces.IUpstream{primary, secondary}, logger.NewLogger("MultiTest"))

	q, err := m.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, 42.0, q.CurrentPrice)
	assert.Equal(t, "finnhub>yahoo", m.Name())
}

func TestMultiSourceManager_ReportsPrimaryError(t *testing.T) {
	primary := &stubUpstream{name: "finnhub", err: &helpers.QuoteError{Kind: models.ErrorKindForbidden}}
	secondary := &stubUpstream{name: "yahoo", err: &helpers.QuoteError{Kind: models.ErrorKindNotFound}}
	m := NewMultiSourceManager([]interfaces.IUpstream{primary, secondary}, logger.NewLogger("MultiTest"))

	_, err := m.FetchQuote(context.Background(), "AAPL")
	assert.Equal(t, models.ErrorKindForbidden, helpers.KindOf(err))
}

func TestMultiSourceManager_SearchSkipsUnsupported(t *testing.T) {
	noSearch := &stubUpstream{name: "yahoo", sErr: &helpers.QuoteError{Kind: models.ErrorKindUnknown, Cause: helpers.ErrSearchUnsupported}}
	search := &stubUpstream{name: "finnhub", matches: []models.MSymbolMatch{{Symbol: "AAPL"}}}
	m := NewMultiSourceManager([]interfaces.IUpstream{noSearch, search}, logger.NewLogger("MultiTest"))

	matches, err := m.SearchSymbols(context.Background(), "app")
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	_, err = NewMultiSourceManager([]interfaces.IUpstream{noSearch}, logger.NewLogger("MultiTest")).SearchSymbols(context.Background(), "app")
	assert.True(t, errors.Is(err, helpers.ErrSearchUnsupported))
}
