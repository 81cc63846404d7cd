// Package lookup holds the per-session result cache that backs every remote read.
package lookup

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DefaultMaxEntries caps how many results one session keeps.
const DefaultMaxEntries = 512

// Cache stores successful lookup results for one browser session, keyed by
// the exact lookup key. Failures are never stored, so a retry goes back to
// the service. Concurrent callers for the same key share one in-flight call.
type Cache struct {
	mu      sync.Mutex
	entries map[string]any
	order   []string // insertion order, oldest first
	max     int
	group   singleflight.Group
}

// NewCache creates an empty cache holding at most max entries.
// PRE: none (max <= 0 selects DefaultMaxEntries)
func NewCache(max int) *Cache {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &Cache{
		entries: make(map[string]any),
		max:     max,
	}
}

// Len returns the number of cached results.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// put stores a value, evicting the oldest entry when full.
func (c *Cache) put(key string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		c.entries[key] = v
		return
	}
	if len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = v
	c.order = append(c.order, key)
}

// Fetch returns the cached value for key or calls fn once to produce it.
//
// fn runs detached from the caller's cancellation so a result that arrives
// after the caller gave up still lands in the cache; the caller itself
// returns as soon as ctx is done and never sees the late result.
// fn should bound itself, e.g. with an HTTP client timeout.
//
// PRE: key is non-empty; fn is non-nil
// POST: hit reports whether the value came from the cache; errors are not cached
func Fetch[T any](ctx context.Context, c *Cache, key string, fn func(context.Context) (T, error)) (value T, hit bool, err error) {
	if v, ok := c.get(key); ok {
		typed, ok := v.(T)
		if !ok {
			return value, false, fmt.Errorf("lookup: cached %q has type %T", key, v)
		}
		return typed, true, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		v, err := fn(detached)
		if err != nil {
			return nil, err
		}
		c.put(key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return value, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return value, false, res.Err
		}
		typed, ok := res.Val.(T)
		if !ok {
			return value, false, fmt.Errorf("lookup: result for %q has type %T", key, res.Val)
		}
		return typed, false, nil
	}
}
