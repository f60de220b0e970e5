// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package forecast

import (
	"context"
	"fmt"
	"sync"

	"github.com/apex/log"
	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"
)

// Executor is anything that can answer a forecast query.
type Executor interface {
	Execute(ctx context.Context, q CityForecastQuery) (CityForecast, error)
}

// Stats is a point-in-time copy of the use case counters.
type Stats struct {
	Hits         int64 `json:"hits"`
	Misses       int64 `json:"misses"`
	Fetches      int64 `json:"fetches"`
	Coalesced    int64 `json:"coalesced"`
	Errors       int64 `json:"errors"`
	Saves        int64 `json:"saves"`
	SaveFailures int64 `json:"saveFailures"`
}

type stats struct {
	hits         atomic.Int64
	misses       atomic.Int64
	fetches      atomic.Int64
	coalesced    atomic.Int64
	errors       atomic.Int64
	saves        atomic.Int64
	saveFailures atomic.Int64
}

// UseCaseOption customizes a CityForecastUseCase.
type UseCaseOption func(*CityForecastUseCase)

// WithCoalescing collapses concurrent misses for the same query into a single
// fetch whose result is shared by every waiter. Off by default: concurrent
// misses each fetch and the last save wins.
func WithCoalescing(enabled bool) UseCaseOption {
	return func(uc *CityForecastUseCase) { uc.coalesce = enabled }
}

// CityForecastUseCase is the read-through "cached or fetch" operation.
type CityForecastUseCase struct {
	repo     Repository
	coalesce bool
	group    singleflight.Group
	pending  sync.WaitGroup
	stats    stats
}

var _ Executor = (*CityForecastUseCase)(nil)

// NewCityForecastUseCase returns a use case over repo.
func NewCityForecastUseCase(repo Repository, opts ...UseCaseOption) *CityForecastUseCase {
	uc := &CityForecastUseCase{repo: repo}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute returns the saved forecast for q or, on a miss, fetches it. A
// fetched forecast is returned immediately and saved in the background; a
// save failure is logged and never returned. Fetch errors are returned
// unchanged.
func (uc *CityForecastUseCase) Execute(ctx context.Context, q CityForecastQuery) (CityForecast, error) {
	if err := q.Validate(); err != nil {
		return CityForecast{}, err
	}

	saved, err := uc.repo.SavedForecast(ctx, q)
	if err != nil {
		// A broken cache is a miss, never a failure.
		log.WithError(err).Warnf("cache lookup failed for %q", q.Key())
	}
	if saved != nil {
		uc.stats.hits.Inc()
		log.Debugf("cache hit for %q", q.Key())
		return *saved, nil
	}

	uc.stats.misses.Inc()
	log.Debugf("cache miss for %q", q.Key())
	return uc.fetch(ctx, q)
}

// Refresh skips the cache lookup and always fetches, saving the result.
func (uc *CityForecastUseCase) Refresh(ctx context.Context, q CityForecastQuery) (CityForecast, error) {
	if err := q.Validate(); err != nil {
		return CityForecast{}, err
	}
	return uc.fetch(ctx, q)
}

func (uc *CityForecastUseCase) fetch(ctx context.Context, q CityForecastQuery) (CityForecast, error) {
	if !uc.coalesce {
		return uc.fetchAndSave(ctx, q)
	}

	// The flight outlives whichever caller started it; each waiter gives up
	// on its own ctx below.
	shared := context.WithoutCancel(ctx)
	ch := uc.group.DoChan(fmt.Sprintf("%s\x00%d", q.Key(), q.NumberOfDay), func() (interface{}, error) {
		return uc.fetchAndSave(shared, q)
	})

	select {
	case <-ctx.Done():
		return CityForecast{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			uc.stats.coalesced.Inc()
		}
		if res.Err != nil {
			return CityForecast{}, res.Err
		}
		return res.Val.(CityForecast), nil
	}
}

func (uc *CityForecastUseCase) fetchAndSave(ctx context.Context, q CityForecastQuery) (CityForecast, error) {
	uc.stats.fetches.Inc()
	f, err := uc.repo.FetchForecast(ctx, q)
	if err != nil {
		uc.stats.errors.Inc()
		return CityForecast{}, err
	}
	uc.save(ctx, q, f)
	return f, nil
}

// save populates the cache without holding up the caller. The request
// context's cancellation does not reach the save.
func (uc *CityForecastUseCase) save(ctx context.Context, q CityForecastQuery, f CityForecast) {
	ctx = context.WithoutCancel(ctx)
	uc.pending.Add(1)
	go func() {
		defer uc.pending.Done()
		if err := uc.repo.SaveForecastResult(ctx, q, f); err != nil {
			uc.stats.saveFailures.Inc()
			log.WithError(err).Warnf("failed to cache forecast for %q", q.Key())
			return
		}
		uc.stats.saves.Inc()
	}()
}

// Wait blocks until every background save started so far has finished.
func (uc *CityForecastUseCase) Wait() {
	uc.pending.Wait()
}

// Stats returns the current counters.
func (uc *CityForecastUseCase) Stats() Stats {
	return Stats{
		Hits:         uc.stats.hits.Load(),
		Misses:       uc.stats.misses.Load(),
		Fetches:      uc.stats.fetches.Load(),
		Coalesced:    uc.stats.coalesced.Load(),
		Errors:       uc.stats.errors.Load(),
		Saves:        uc.stats.saves.Load(),
		SaveFailures: uc.stats.saveFailures.Load(),
	}
}
