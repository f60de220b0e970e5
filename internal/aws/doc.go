// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package aws loads AWS SDK v2 configuration and provides an S3-backed
// cache.Store so the forecast snapshot can live in a bucket instead of the
// local cache directory.
package aws
