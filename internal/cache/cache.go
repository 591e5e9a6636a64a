// Package cache provides a small in-memory TTL cache with an LRU bound,
// keyed by resume identity. Expired entries are dropped lazily on read.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// DefaultMaxEntries bounds the cache when the caller passes no limit.
const DefaultMaxEntries = 256

// Key identifies one cached result. A resume edit bumps the version, so
// stale results never collide with fresh ones.
type Key struct {
	ResumeID string
	Version  int
}

type entry[V any] struct {
	key       Key
	value     V
	expiresAt time.Time
}

// Cache is a TTL-bounded LRU. Safe for concurrent use.
type Cache[V any] struct {
	mu         sync.Mutex
	ttl        time.Duration
	maxEntries int
	order      *list.List
	entries    map[Key]*list.Element
	now        func() time.Time
}

// New creates a cache whose entries live for ttl. maxEntries <= 0 selects
// DefaultMaxEntries.
func New[V any](ttl time.Duration, maxEntries int) *Cache[V] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	return &Cache[V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[Key]*list.Element),
		now:        time.Now,
	}
}

// Get returns the cached value for key. An entry past its TTL counts as a
// miss and is removed.
func (c *Cache[V]) Get(key Key) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V

	element, ok := c.entries[key]
	if !ok {
		return zero, false
	}

	ent := element.Value.(*entry[V])
	if !c.now().Before(ent.expiresAt) {
		c.removeElement(element)
		return zero, false
	}

	c.order.MoveToFront(element)
	return ent.value, true
}

// Put stores value under key, resetting its TTL. The least recently used
// entry is evicted when the cache is full.
func (c *Cache[V]) Put(key Key, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(c.ttl)

	if element, ok := c.entries[key]; ok {
		ent := element.Value.(*entry[V])
		ent.value = value
		ent.expiresAt = expiresAt
		c.order.MoveToFront(element)
		return
	}

	element := c.order.PushFront(&entry[V]{key: key, value: value, expiresAt: expiresAt})
	c.entries[key] = element

	if c.order.Len() > c.maxEntries {
		if oldest := c.order.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// Invalidate removes the entry for key if present.
func (c *Cache[V]) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, ok := c.entries[key]; ok {
		c.removeElement(element)
	}
}

// Len reports the number of entries currently held, expired ones included.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.order.Len()
}

func (c *Cache[V]) removeElement(element *list.Element) {
	ent := element.Value.(*entry[V])
	c.order.Remove(element)
	delete(c.entries, ent.key)
}
