// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package repository implements forecast.Repository over a forecast cache and
// a NetworkClient.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/apex/log"

	"github.com/staranto/wxctlgo/internal/cache"
	"github.com/staranto/wxctlgo/internal/forecast"
	"github.com/staranto/wxctlgo/internal/openweather"
)

const iconURLTemplate = "https://openweathermap.org/img/wn/%s@2x.png"

// IconURL is the image URL for an OpenWeatherMap icon code.
func IconURL(code string) string {
	return fmt.Sprintf(iconURLTemplate, code)
}

// NetworkClient fetches the raw daily forecast for a city.
type NetworkClient interface {
	Fetch(ctx context.Context, name string, days int) (*openweather.Response, error)
}

// Cache is the forecast cache shape the repository needs.
type Cache = cache.Cache[string, forecast.CityForecast]

// ForecastRepository answers saved-forecast lookups from its cache and
// fetches through its network client.
type ForecastRepository struct {
	cache  *Cache
	client NetworkClient
}

var _ forecast.Repository = (*ForecastRepository)(nil)

// New returns a repository that owns c for its lifetime.
func New(c *Cache, client NetworkClient) *ForecastRepository {
	return &ForecastRepository{cache: c, client: client}
}

// SavedForecast implements forecast.Repository. Entries are keyed by city
// alone, so a saved forecast with fewer days than q asks for is a miss and
// one with more is cut down to q.NumberOfDay.
func (r *ForecastRepository) SavedForecast(ctx context.Context, q forecast.CityForecastQuery) (*forecast.CityForecast, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	saved := r.cache.Get(q.Key())
	if saved == nil {
		return nil, nil
	}

	if len(saved.Forecasts) < q.NumberOfDay {
		log.Debugf("saved forecast for %q has %d days, want %d", q.Key(), len(saved.Forecasts), q.NumberOfDay)
		return nil, nil
	}

	out := *saved
	out.Forecasts = append([]forecast.DailyForecast(nil), saved.Forecasts[:q.NumberOfDay]...)
	return &out, nil
}

// SaveForecastResult implements forecast.Repository.
func (r *ForecastRepository) SaveForecastResult(ctx context.Context, q forecast.CityForecastQuery, f forecast.CityForecast) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.cache.Insert(f, q.Key())
	return nil
}

// FetchForecast implements forecast.Repository.
func (r *ForecastRepository) FetchForecast(ctx context.Context, q forecast.CityForecastQuery) (forecast.CityForecast, error) {
	resp, err := r.client.Fetch(ctx, q.Name, q.NumberOfDay)
	if err != nil {
		return forecast.CityForecast{}, classifyTransport(err)
	}
	return mapResponse(resp)
}

func classifyTransport(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case openweather.IsOffline(err):
		log.WithError(err).Debug("no connectivity")
		return fmt.Errorf("%w: %w", forecast.ErrNoInternetConnection, err)
	default:
		log.WithError(err).Debug("transport failure")
		return forecast.Classify(err)
	}
}

func mapResponse(resp *openweather.Response) (forecast.CityForecast, error) {
	if resp == nil {
		return forecast.CityForecast{}, forecast.ErrSomethingWentWrong
	}

	switch resp.Cod {
	case "200":
	case "404":
		return forecast.CityForecast{}, forecast.ErrCityNotFound
	default:
		return forecast.CityForecast{}, fmt.Errorf("%w: cod %s %s", forecast.ErrSomethingWentWrong, resp.Cod, resp.Message)
	}

	if resp.City == nil || resp.List == nil {
		return forecast.CityForecast{}, fmt.Errorf("%w: response without city or list", forecast.ErrSomethingWentWrong)
	}

	cf := forecast.CityForecast{
		ID:        strconv.FormatInt(resp.City.ID, 10),
		Name:      resp.City.Name,
		Forecasts: make([]forecast.DailyForecast, 0, len(resp.List)),
	}
	for _, d := range resp.List {
		cf.Forecasts = append(cf.Forecasts, mapDay(d))
	}
	return cf, nil
}

func mapDay(d openweather.Day) forecast.DailyForecast {
	df := forecast.DailyForecast{
		Date:    time.Unix(d.Dt, 0).UTC(),
		Sunrise: time.Unix(d.Sunrise, 0).UTC(),
		Sunset:  time.Unix(d.Sunset, 0).UTC(),
		Temperature: forecast.Temperature{
			Day:   d.Temp.Day,
			Min:   d.Temp.Min,
			Max:   d.Temp.Max,
			Night: d.Temp.Night,
			Eve:   d.Temp.Eve,
			Morn:  d.Temp.Morn,
		},
		Pressure: d.Pressure,
		Humidity: d.Humidity,
		Weathers: make([]forecast.Weather, 0, len(d.Weather)),
	}
	for _, w := range d.Weather {
		df.Weathers = append(df.Weathers, forecast.Weather{
			ID:          strconv.FormatInt(w.ID, 10),
			Name:        w.Main,
			Description: w.Description,
			IconURL:     IconURL(w.Icon),
		})
	}
	return df
}
