// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultLifetime is how long an inserted entry stays live.
	DefaultLifetime = 12 * time.Hour
	// DefaultMaxEntries bounds the number of entries held in memory.
	DefaultMaxEntries = 50
)

// Entry is a cached value plus the instant at which it stops being served.
// The JSON form is the snapshot record format.
type Entry[K comparable, V any] struct {
	Key       K         `json:"key"`
	Value     V         `json:"value"`
	ExpiresAt time.Time `json:"expirationDate"`
}

// Live reports whether the entry can still be served at now.
func (e Entry[K, V]) Live(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}

type options struct {
	lifetime   time.Duration
	maxEntries int
	now        func() time.Time
	evictHook  func(key any)
}

// Option customizes a Cache at construction.
type Option func(*options)

// WithLifetime sets the entry lifetime. Non-positive values keep the default.
func WithLifetime(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.lifetime = d
		}
	}
}

// WithMaxEntries sets the capacity. Non-positive values keep the default.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxEntries = n
		}
	}
}

// WithClock replaces time.Now as the date provider.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithEvictionHook registers an observer called whenever an entry leaves the
// store, whether by capacity eviction, expiry or explicit removal.
func WithEvictionHook(hook func(key any)) Option {
	return func(o *options) { o.evictHook = hook }
}

// Cache is an expiring, size-bounded key/value store. Capacity eviction is
// delegated to an LRU store; the tracked key set mirrors the store's contents
// through the store's eviction callback so that the whole cache can be
// enumerated for a snapshot.
//
// A Cache is safe for concurrent use.
type Cache[K comparable, V any] struct {
	store      *lru.Cache[K, Entry[K, V]]
	keys       *keyTracker[K]
	now        func() time.Time
	lifetime   time.Duration
	maxEntries int
	evictHook  func(key any)
}

// New returns an empty cache.
func New[K comparable, V any](opts ...Option) *Cache[K, V] {
	o := options{
		lifetime:   DefaultLifetime,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Cache[K, V]{
		keys:       newKeyTracker[K](),
		now:        o.now,
		lifetime:   o.lifetime,
		maxEntries: o.maxEntries,
		evictHook:  o.evictHook,
	}

	// maxEntries is always positive here, the only failure NewWithEvict has.
	store, err := lru.NewWithEvict(o.maxEntries, c.evicted)
	if err != nil {
		panic(err)
	}
	c.store = store

	return c
}

// evicted is the store's eviction callback. It runs synchronously, outside
// the store's lock.
func (c *Cache[K, V]) evicted(key K, _ Entry[K, V]) {
	c.keys.remove(key)
	if c.evictHook != nil {
		c.evictHook(key)
	}
}

// Insert stores value under key with an expiration of now + lifetime.
func (c *Cache[K, V]) Insert(value V, key K) {
	c.insert(Entry[K, V]{
		Key:       key,
		Value:     value,
		ExpiresAt: c.now().Add(c.lifetime),
	})
}

// insert stores a fully formed entry, keeping its expiration as-is.
func (c *Cache[K, V]) insert(e Entry[K, V]) {
	c.keys.add(e.Key)
	c.store.Add(e.Key, e)
}

// Value returns the live value for key. An expired entry is removed as a side
// effect and reported as absent.
func (c *Cache[K, V]) Value(key K) (V, bool) {
	e, ok := c.lookup(key, c.store.Get)
	return e.Value, ok
}

// Remove drops key from the store and the tracked key set. Absent keys are a
// no-op.
func (c *Cache[K, V]) Remove(key K) {
	c.store.Remove(key)
	c.keys.remove(key)
}

// Get is sugar for Value returning a pointer, nil when absent.
func (c *Cache[K, V]) Get(key K) *V {
	v, ok := c.Value(key)
	if !ok {
		return nil
	}
	return &v
}

// Set is sugar for Insert; a nil value removes key.
func (c *Cache[K, V]) Set(key K, value *V) {
	if value == nil {
		c.Remove(key)
		return
	}
	c.Insert(*value, key)
}

// Contains reports whether key is currently tracked. It does not check
// expiry.
func (c *Cache[K, V]) Contains(key K) bool {
	return c.keys.has(key)
}

// Keys returns the tracked keys in no particular order.
func (c *Cache[K, V]) Keys() []K {
	return c.keys.list()
}

// Len is the number of entries held by the store, expired or not.
func (c *Cache[K, V]) Len() int {
	return c.store.Len()
}

// Entries returns every live entry. Expired entries found along the way are
// removed, as Value would. Recency is not touched.
func (c *Cache[K, V]) Entries() []Entry[K, V] {
	keys := c.keys.list()
	entries := make([]Entry[K, V], 0, len(keys))
	for _, key := range keys {
		if e, ok := c.lookup(key, c.store.Peek); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// Lifetime is the configured entry lifetime.
func (c *Cache[K, V]) Lifetime() time.Duration {
	return c.lifetime
}

// MaxEntries is the configured capacity.
func (c *Cache[K, V]) MaxEntries() int {
	return c.maxEntries
}

func (c *Cache[K, V]) lookup(key K, read func(K) (Entry[K, V], bool)) (Entry[K, V], bool) {
	e, ok := read(key)
	if !ok {
		// A tracked key with no entry is stale; drop it.
		c.keys.remove(key)
		return Entry[K, V]{}, false
	}
	if !e.Live(c.now()) {
		c.Remove(key)
		return Entry[K, V]{}, false
	}
	return e, true
}
