// Package cache provides a thread-safe LRU cache keyed by expression source.
//
// The formatter uses it when the WithCaching option is enabled, so that the
// same expression text is parsed and rendered only once however often it is
// formatted.
//
// # Example
//
//	c := cache.New[string](1024)
//	out, err := c.GetOrCompute("a  +  b", format)
package cache

import (
	"container/list"
	"sync"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 256

// entry is a cache entry stored in the doubly-linked list.
type entry[V any] struct {
	key   string
	value V
}

// Cache is a thread-safe LRU (Least Recently Used) cache.
// Once the capacity is reached, the least recently accessed entry is evicted.
//
// Safe for concurrent use by multiple goroutines.
type Cache[V any] struct {
	mu       sync.RWMutex
	capacity int
	ll       *list.List
	items    map[string]*list.Element
}

// New creates a new LRU cache with the given capacity.
// capacity must be > 0; if <= 0, DefaultCapacity is used.
func New[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache[V]{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

// Get retrieves a value from the cache.
// Returns (value, true) if found and moves the entry to front (MRU).
// Returns the zero value and false if not present.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	c.mu.RLock()
	el, ok := c.items[key]
	// Entries already at the front need no write lock.
	alreadyFront := ok && c.ll.Front() == el
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}

	if !alreadyFront {
		// Promote to front under write lock; re-check in case of concurrent eviction.
		c.mu.Lock()
		el, ok = c.items[key]
		if ok {
			c.ll.MoveToFront(el)
		}
		c.mu.Unlock()

		if !ok {
			return zero, false
		}
	}

	c.mu.RLock()
	v := el.Value.(*entry[V]).value
	c.mu.RUnlock()
	return v, true
}

// Set inserts or replaces a value in the cache.
// If at capacity, the least recently used entry is evicted first.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		el.Value.(*entry[V]).value = value
		c.ll.MoveToFront(el)
		return
	}

	if c.ll.Len() >= c.capacity {
		c.evictLocked()
	}

	el := c.ll.PushFront(&entry[V]{key: key, value: value})
	c.items[key] = el
}

// GetOrCompute retrieves the value for key from cache, or calls compute()
// to create it, caches the result, and returns it.
// Errors are returned as is and never cached.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}

// Len returns the number of entries currently in the cache.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	n := len(c.items)
	c.mu.RUnlock()
	return n
}

// Capacity returns the maximum number of entries the cache can hold.
func (c *Cache[V]) Capacity() int {
	return c.capacity
}

// Invalidate removes a single entry from the cache.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.ll.Remove(el)
		delete(c.items, key)
	}
}

// Clear removes all entries from the cache.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ll.Init()
	c.items = make(map[string]*list.Element, c.capacity)
}

// evictLocked removes the least recently used entry.
// Must be called with c.mu held for writing.
func (c *Cache[V]) evictLocked() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry[V]).key)
}
