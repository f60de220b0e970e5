// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package forecast

import (
	"fmt"
	"strings"
)

// DefaultNumberOfDay is the day count used when a query does not ask for one.
const DefaultNumberOfDay = 7

// CityForecastQuery asks for NumberOfDay daily forecasts for a city.
type CityForecastQuery struct {
	Name        string `json:"name"`
	NumberOfDay int    `json:"numberOfDay"`
}

// NewQuery normalizes name (trimmed, lower-cased) and substitutes the default
// for a non-positive day count.
func NewQuery(name string, days int) CityForecastQuery {
	if days <= 0 {
		days = DefaultNumberOfDay
	}
	return CityForecastQuery{
		Name:        strings.ToLower(strings.TrimSpace(name)),
		NumberOfDay: days,
	}
}

// Key is the cache key for q.
func (q CityForecastQuery) Key() string {
	return q.Name
}

// Validate rejects queries that must never reach the repository.
func (q CityForecastQuery) Validate() error {
	if q.Name == "" {
		return fmt.Errorf("empty city name: %w", ErrInvalidValue)
	}
	if q.NumberOfDay <= 0 {
		return fmt.Errorf("number of days %d: %w", q.NumberOfDay, ErrInvalidValue)
	}
	return nil
}
