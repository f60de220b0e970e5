// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package forecast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execFunc adapts a function to Executor.
type execFunc func(ctx context.Context, q CityForecastQuery) (CityForecast, error)

func (f execFunc) Execute(ctx context.Context, q CityForecastQuery) (CityForecast, error) {
	return f(ctx, q)
}

// recorder captures the queries an Executor saw.
type recorder struct {
	mu      sync.Mutex
	queries []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	r.queries = append(r.queries, name)
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.queries...)
}

const testDebounce = 20 * time.Millisecond

func next(t *testing.T, s *Searcher) SearchResult {
	t.Helper()
	select {
	case r, ok := <-s.Results():
		require.True(t, ok, "results closed")
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no search result")
		return SearchResult{}
	}
}

func assertQuiet(t *testing.T, s *Searcher, d time.Duration) {
	t.Helper()
	select {
	case r := <-s.Results():
		t.Fatalf("unexpected result %+v", r)
	case <-time.After(d):
	}
}

func TestSearcher_DebouncesToLastKeyword(t *testing.T) {
	rec := &recorder{}
	s := NewSearcher(execFunc(func(_ context.Context, q CityForecastQuery) (CityForecast, error) {
		rec.add(q.Name)
		return forecastFor(q), nil
	}), WithDebounce(testDebounce), WithDays(3))
	defer s.Close()

	for _, kw := range []string{"sai", "saig", "saigo", "Saigon"} {
		s.Submit(kw)
	}

	r := next(t, s)
	require.NoError(t, r.Err)
	require.NotNil(t, r.Forecast)
	assert.Equal(t, "saigon", r.Forecast.Name)
	assert.Len(t, r.Forecast.Forecasts, 3)
	assert.Equal(t, "Saigon", r.Keyword)
	assert.Equal(t, []string{"saigon"}, rec.list())
}

func TestSearcher_IgnoresShortAndDuplicateKeywords(t *testing.T) {
	rec := &recorder{}
	s := NewSearcher(execFunc(func(_ context.Context, q CityForecastQuery) (CityForecast, error) {
		rec.add(q.Name)
		return forecastFor(q), nil
	}), WithDebounce(testDebounce))
	defer s.Close()

	s.Submit("ab")
	assertQuiet(t, s, 3*testDebounce)

	s.Submit("paris")
	next(t, s)

	// The same keyword again is dropped, even after the debounce.
	s.Submit("paris")
	s.Submit("pa")
	assertQuiet(t, s, 3*testDebounce)

	assert.Equal(t, []string{"paris"}, rec.list())
}

func TestSearcher_EmptyKeywordClears(t *testing.T) {
	called := false
	s := NewSearcher(execFunc(func(_ context.Context, q CityForecastQuery) (CityForecast, error) {
		called = true
		return forecastFor(q), nil
	}), WithDebounce(testDebounce))
	defer s.Close()

	s.Submit("")
	r := next(t, s)
	assert.True(t, r.Cleared())
	assert.False(t, called)
}

func TestSearcher_LatestWins(t *testing.T) {
	var mu sync.Mutex
	canceled := map[string]bool{}

	s := NewSearcher(execFunc(func(ctx context.Context, q CityForecastQuery) (CityForecast, error) {
		if q.Name == "slowcity" {
			<-ctx.Done()
			mu.Lock()
			canceled[q.Name] = true
			mu.Unlock()
			// A late success must never be emitted.
			return forecastFor(q), nil
		}
		return forecastFor(q), nil
	}), WithDebounce(testDebounce))
	defer s.Close()

	s.Submit("slowcity")
	time.Sleep(3 * testDebounce)
	s.Submit("fastcity")

	r := next(t, s)
	require.NotNil(t, r.Forecast)
	assert.Equal(t, "fastcity", r.Forecast.Name)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return canceled["slowcity"]
	}, time.Second, time.Millisecond)
	assertQuiet(t, s, 3*testDebounce)
}

func TestSearcher_ErrorsAreClassified(t *testing.T) {
	s := NewSearcher(execFunc(func(_ context.Context, q CityForecastQuery) (CityForecast, error) {
		switch q.Name {
		case "city6":
			return CityForecast{}, ErrCityNotFound
		default:
			return CityForecast{}, errors.New("decoder exploded")
		}
	}), WithDebounce(testDebounce))
	defer s.Close()

	s.Submit("city6")
	r := next(t, s)
	assert.ErrorIs(t, r.Err, ErrCityNotFound)
	assert.Nil(t, r.Forecast)

	s.Submit("weird")
	r = next(t, s)
	assert.ErrorIs(t, r.Err, ErrSomethingWentWrong)
}

func TestSearcher_Close(t *testing.T) {
	started := make(chan struct{})
	var ctxErr error
	var mu sync.Mutex
	s := NewSearcher(execFunc(func(ctx context.Context, q CityForecastQuery) (CityForecast, error) {
		close(started)
		<-ctx.Done()
		mu.Lock()
		ctxErr = ctx.Err()
		mu.Unlock()
		return CityForecast{}, ctx.Err()
	}), WithDebounce(testDebounce))

	s.Submit("hanoi")
	<-started
	s.Close()
	s.Close()

	_, ok := <-s.Results()
	assert.False(t, ok)

	// Submit after Close does not block.
	s.Submit("danang")

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return errors.Is(ctxErr, context.Canceled)
	}, time.Second, time.Millisecond)
}

func TestSearcher_FinishFlushesPendingKeyword(t *testing.T) {
	rec := &recorder{}
	s := NewSearcher(execFunc(func(_ context.Context, q CityForecastQuery) (CityForecast, error) {
		rec.add(q.Name)
		return forecastFor(q), nil
	}), WithDebounce(time.Hour))
	defer s.Close()

	s.Submit("hanoi")
	s.Finish()

	r := next(t, s)
	require.NoError(t, r.Err)
	assert.Equal(t, "hanoi", r.Keyword)

	_, ok := <-s.Results()
	assert.False(t, ok, "results close after the flushed search")
	assert.Equal(t, []string{"hanoi"}, rec.list())

	// Submitting after Finish does not block.
	s.Submit("paris")
	s.Finish()
}

func TestSearcher_FinishWhenIdle(t *testing.T) {
	s := NewSearcher(execFunc(func(_ context.Context, q CityForecastQuery) (CityForecast, error) {
		return forecastFor(q), nil
	}), WithDebounce(testDebounce))
	defer s.Close()

	s.Finish()
	select {
	case _, ok := <-s.Results():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("results not closed")
	}
}

func TestAccepted(t *testing.T) {
	assert.True(t, accepted(""))
	assert.False(t, accepted("a"))
	assert.False(t, accepted("ab"))
	assert.True(t, accepted("abc"))
	assert.True(t, accepted("Huế"))
}
