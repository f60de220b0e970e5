// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package forecast

import "context"

// Repository reconciles the local cache and the remote source.
//
// SavedForecast is a cache lookup only and returns nil for absence.
// SaveForecastResult populates the cache. FetchForecast always goes to the
// remote source and fails with a taxonomy error.
type Repository interface {
	SavedForecast(ctx context.Context, q CityForecastQuery) (*CityForecast, error)
	SaveForecastResult(ctx context.Context, q CityForecastQuery, f CityForecast) error
	FetchForecast(ctx context.Context, q CityForecastQuery) (CityForecast, error)
}
