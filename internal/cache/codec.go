// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Serialize encodes the live entries of c as a JSON array of
// {key, value, expirationDate} records, soonest expiry first. Replaying the
// records in that order keeps the freshest entries when a snapshot is loaded
// into a smaller cache.
func Serialize[K comparable, V any](c *Cache[K, V]) ([]byte, error) {
	entries := c.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].ExpiresAt.Before(entries[j].ExpiresAt)
	})

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache: %w", err)
	}
	return data, nil
}

// Deserialize builds a fresh cache from a Serialize blob. Records are inserted
// with their stored expiration, so a record that expired while on disk is
// loaded and then dropped the first time it is read.
func Deserialize[K comparable, V any](data []byte, opts ...Option) (*Cache[K, V], error) {
	var entries []Entry[K, V]
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode cache: %w", err)
	}

	c := New[K, V](opts...)
	for _, e := range entries {
		c.insert(e)
	}
	return c, nil
}
