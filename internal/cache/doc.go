// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package cache provides a generic in-memory cache whose entries expire after
// a fixed lifetime and whose size is bounded by an LRU store. The live entries
// can be written to and restored from a single snapshot blob held by a Store
// (a local directory or an object store).
package cache
