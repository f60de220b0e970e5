// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/apex/log"

	"github.com/staranto/wxctlgo/internal/cache"
	"github.com/staranto/wxctlgo/internal/config"
)

// Dir resolves the base cache directory.
// Precedence:
//  1. WXCTL_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/wxctl
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir() (string, bool) {
	if c, ok := os.LookupEnv("WXCTL_CACHE_DIR"); ok && c != "" {
		return c, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "wxctl"), true
	}
	return "", false
}

// Enabled returns true unless WXCTL_CACHE explicitly disables it ("0"/"false").
func Enabled() bool {
	enabled, _ := os.LookupEnv("WXCTL_CACHE")
	enabled = strings.ToLower(enabled)
	return enabled == "" || (enabled != "0" && enabled != "false")
}

// EnsureBaseDir creates the base cache directory if caching is enabled and
// a base path can be resolved. Returns the path, whether it is usable, and an
// error if creation failed.
func EnsureBaseDir() (string, bool, error) {
	if !Enabled() {
		return "", false, nil
	}
	base, ok := Dir()
	if !ok {
		return "", false, nil
	}
	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, false, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return base, true, nil
}

// SnapshotName is the configured snapshot name (cache.name), reduced to its
// base name so it can never escape the cache directory.
func SnapshotName() string {
	name, _ := config.GetString("cache.name", cache.DefaultSnapshotName)
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return cache.DefaultSnapshotName
	}
	return name
}

// SnapshotPath returns the absolute path of the snapshot file and whether it
// currently exists.
func SnapshotPath() (string, bool) {
	base, ok := Dir()
	if !ok {
		return "", false
	}
	p := filepath.Join(base, SnapshotName())
	if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
		return p, true
	}
	return p, false
}

// Purge removes temporary snapshot files older than maxAge. These are left
// behind only when a save is interrupted between write and rename. A
// non-positive maxAge or an unresolvable cache dir is a no-op.
func Purge(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		log.Debug("cache cleaning disabled")
		return 0, nil
	}
	base, ok := Dir()
	if !ok {
		return 0, nil
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to purge cache: %w", err)
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil || time.Since(info.ModTime()) <= maxAge {
			continue
		}
		path := filepath.Join(base, e.Name())
		if err := os.Remove(path); err == nil {
			log.Debugf("removed cache file %s", path)
			removed++
		} else {
			log.WithError(err).Warnf("failed to remove cache file %s", path)
		}
	}
	return removed, nil
}
