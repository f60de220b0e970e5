// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/apex/log"
)

// DefaultSnapshotName is the snapshot name used when none is configured.
const DefaultSnapshotName = "ForecastCache.cache"

// SaveToDisk serializes c and writes it to store under name.
func SaveToDisk[K comparable, V any](ctx context.Context, c *Cache[K, V], name string, store Store) error {
	data, err := Serialize(c)
	if err != nil {
		return err
	}
	if err := store.Write(ctx, name, data); err != nil {
		return fmt.Errorf("failed to save cache: %w", err)
	}
	log.WithFields(log.Fields{
		"location": store.Location(name),
		"bytes":    len(data),
	}).Debug("cache saved")
	return nil
}

// LoadFromDisk restores a cache from store. A missing or undecodable snapshot
// is reported as absence, never as an error: the caller starts empty.
func LoadFromDisk[K comparable, V any](ctx context.Context, name string, store Store, opts ...Option) (*Cache[K, V], bool) {
	data, err := store.Read(ctx, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debugf("no cache snapshot at %s", store.Location(name))
		} else {
			log.WithError(err).Warnf("failed to read cache snapshot %s", store.Location(name))
		}
		return nil, false
	}

	c, err := Deserialize[K, V](data, opts...)
	if err != nil {
		log.WithError(err).Warnf("ignoring corrupt cache snapshot %s", store.Location(name))
		return nil, false
	}

	log.Debugf("loaded %d cache entries from %s", c.Len(), store.Location(name))
	return c, true
}

// LoadOrNew is LoadFromDisk falling back to an empty cache.
func LoadOrNew[K comparable, V any](ctx context.Context, name string, store Store, opts ...Option) *Cache[K, V] {
	if c, ok := LoadFromDisk[K, V](ctx, name, store, opts...); ok {
		return c
	}
	return New[K, V](opts...)
}
