// Package fetchguard keeps a view from fetching the same identifier twice.
package fetchguard

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrUnmounted is returned for fetches that resolve after the owning view went away. Callers
// must drop the result.
var ErrUnmounted = errors.New("fetchguard: owner unmounted")

// Guard answers "should this id be fetched now" for one view mount.
type Guard struct {
	mu      sync.Mutex
	started map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{started: map[string]struct{}{}}
}

// ShouldFetch returns true only the first time it sees id.
func (g *Guard) ShouldFetch(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.started[id]; ok {
		return false
	}
	g.started[id] = struct{}{}
	return true
}

// Reset forgets id so a later ShouldFetch returns true again. Called after a failed fetch.
func (g *Guard) Reset(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.started, id)
}

// Cache is a memoizing task cache keyed by identifier and scoped to one view mount.
// Duplicate callers share the in-flight call; successes are kept, failures are not.
type Cache[T any] struct {
	mu     sync.Mutex
	done   map[string]T
	closed bool
	starts int
	group  singleflight.Group
}

func NewCache[T any]() *Cache[T] {
	return &Cache[T]{done: map[string]T{}}
}

// GetOrStart returns the completed value for id, joins an in-flight fetch, or starts fn.
func (c *Cache[T]) GetOrStart(ctx context.Context, id string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return zero, ErrUnmounted
	}
	if v, ok := c.done[id]; ok {
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	res, err, _ := c.group.Do(id, func() (any, error) {
		c.mu.Lock()
		if v, ok := c.done[id]; ok {
			c.mu.Unlock()
			return v, nil
		}
		c.starts++
		c.mu.Unlock()

		v, err := fn(ctx)
		if err != nil {
			return zero, err
		}
		c.mu.Lock()
		if !c.closed {
			c.done[id] = v
		}
		c.mu.Unlock()
		return v, nil
	})

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return zero, ErrUnmounted
	}
	if err != nil {
		return zero, err
	}
	return res.(T), nil
}

// Peek returns a completed value without starting a fetch.
func (c *Cache[T]) Peek(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.done[id]
	return v, ok
}

// Forget drops a completed value so the next GetOrStart refetches.
func (c *Cache[T]) Forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.done, id)
}

// Starts counts how many times a fetch function actually ran.
func (c *Cache[T]) Starts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.starts
}

// Close marks the owner unmounted. Pending and later calls return ErrUnmounted.
func (c *Cache[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	clear(c.done)
}
