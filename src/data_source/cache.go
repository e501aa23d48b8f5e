package datasource

import (
	"context"
	"strings"
	"sync"
	"time"

	"stock-watchlist/src/interfaces"
	"stock-watchlist/src/models"

	"golang.org/x/sync/singleflight"
)

const sharedCallTimeout = 30 * time.Second

// CacheSource decorates an upstream with a short-lived LRU quote cache.
// Concurrent misses for the same symbol share a single upstream call, and
// so do identical concurrent searches. Failures are never cached.
type CacheSource struct {
	next interfaces.IUpstream
	ttl  time.Duration
	size int
	now  func() time.Time

	group singleflight.Group

	mu    sync.Mutex
	items map[string]cacheEntry
	order []string // LRU order, oldest first
}

type cacheEntry struct {
	at time.Time
	q  models.MQuote
}

// -----------------------------------------------------------------------------

func NewCacheSource(next interfaces.IUpstream, ttl time.Duration, size int) *CacheSource {
	return &CacheSource{
		next:  next,
		ttl:   ttl,
		size:  size,
		now:   time.Now,
		items: make(map[string]cacheEntry),
	}
}

// -----------------------------------------------------------------------------

func (c *CacheSource) Name() string {
	return c.next.Name()
}

// -----------------------------------------------------------------------------

func (c *CacheSource) FetchQuote(ctx context.Context, symbol string) (models.MQuote, error) {
	key := strings.ToUpper(symbol)
	if q, ok := c.lookup(key); ok {
		return q, nil
	}

	v, err := c.shared(ctx, "quote|"+key, func(ctx context.Context) (interface{}, error) {
		q, err := c.next.FetchQuote(ctx, symbol)
		if err != nil {
			return q, err
		}
		c.store(key, q)
		return q, nil
	})
	if err != nil {
		return models.MQuote{}, err
	}
	return v.(models.MQuote), nil
}

// -----------------------------------------------------------------------------

func (c *CacheSource) SearchSymbols(ctx context.Context, query string) ([]models.MSymbolMatch, error) {
	v, err := c.shared(ctx, "search|"+strings.ToLower(query), func(ctx context.Context) (interface{}, error) {
		return c.next.SearchSymbols(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.MSymbolMatch), nil
}

// -----------------------------------------------------------------------------

// shared runs fn once per key for all concurrent callers. The call is detached
// from any single caller's cancellation and bounded by sharedCallTimeout; each
// caller stops waiting when its own ctx ends.
func (c *CacheSource) shared(ctx context.Context, key string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	ch := c.group.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedCallTimeout)
		defer cancel()
		return fn(callCtx)
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// -----------------------------------------------------------------------------

func (c *CacheSource) lookup(key string) (models.MQuote, bool) {
	if c.ttl <= 0 {
		return models.MQuote{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	ent, ok := c.items[key]
	if !ok {
		return models.MQuote{}, false
	}
	if c.now().Sub(ent.at) > c.ttl {
		delete(c.items, key)
		c.removeFromOrderLocked(key)
		return models.MQuote{}, false
	}
	c.removeFromOrderLocked(key)
	c.order = append(c.order, key)
	return ent.q, true
}

// -----------------------------------------------------------------------------

func (c *CacheSource) store(key string, q models.MQuote) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[key]; ok {
		c.removeFromOrderLocked(key)
	}
	c.items[key] = cacheEntry{at: c.now(), q: q}
	c.order = append(c.order, key)

	for c.size > 0 && len(c.items) > c.size && len(c.order) > 0 {
		old := c.order[0]
		c.order = c.order[1:]
		delete(c.items, old)
	}
}

// -----------------------------------------------------------------------------

func (c *CacheSource) removeFromOrderLocked(key string) {
	for i, v := range c.order {
		if v == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}
