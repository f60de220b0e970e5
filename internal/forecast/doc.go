// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package forecast holds the city-forecast domain: the query and entity
// types, the error taxonomy surfaced to users, the Repository contract and
// the read-through use case built on it.
//
// The use case answers from the repository's cache when it can and otherwise
// fetches, returning the fetched value while the cache is populated in the
// background. Searcher layers keyword filtering, debounce and latest-wins
// cancellation on top for interactive use.
package forecast
