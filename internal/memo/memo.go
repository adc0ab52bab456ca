// Package memo provides a compute-once cache for values derived from
// immutable package parts.
package memo

import "sync"

// Cache memoizes one value per key. The loader for a key runs at most once,
// concurrent callers for the same key wait for that single load, and the
// stored value is never replaced afterwards.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
}

type entry[V any] struct {
	once  sync.Once
	value V
}

// Get returns the value for key, calling load on first use.
func (c *Cache[V]) Get(key string, load func() V) V {
	c.mu.Lock()
	if c.entries == nil {
		c.entries = make(map[string]*entry[V])
	}
	e, ok := c.entries[key]
	if !ok {
		e = &entry[V]{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.value = load()
	})
	return e.value
}

// Len returns the number of keys seen so far.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
