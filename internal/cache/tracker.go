// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import "sync"

// keyTracker is the side set of keys currently in the store. The LRU store
// cannot be enumerated without racing its own evictions, so snapshots walk
// this set instead.
type keyTracker[K comparable] struct {
	mu   sync.Mutex
	keys map[K]struct{}
}

func newKeyTracker[K comparable]() *keyTracker[K] {
	return &keyTracker[K]{keys: make(map[K]struct{})}
}

func (t *keyTracker[K]) add(key K) {
	t.mu.Lock()
	t.keys[key] = struct{}{}
	t.mu.Unlock()
}

func (t *keyTracker[K]) remove(key K) {
	t.mu.Lock()
	delete(t.keys, key)
	t.mu.Unlock()
}

func (t *keyTracker[K]) has(key K) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.keys[key]
	return ok
}

func (t *keyTracker[K]) list() []K {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]K, 0, len(t.keys))
	for k := range t.keys {
		out = append(out, k)
	}
	return out
}
