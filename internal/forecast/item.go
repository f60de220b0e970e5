// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package forecast

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Unit is a temperature display unit.
type Unit string

const (
	Celsius    Unit = "celsius"
	Fahrenheit Unit = "fahrenheit"
)

// ParseUnit accepts the unit names and their first letter.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "c", "celsius", "metric":
		return Celsius, nil
	case "f", "fahrenheit", "imperial":
		return Fahrenheit, nil
	default:
		return "", fmt.Errorf("unknown unit %q: %w", s, ErrInvalidValue)
	}
}

// Toggle flips between Celsius and Fahrenheit.
func (u Unit) Toggle() Unit {
	if u == Fahrenheit {
		return Celsius
	}
	return Fahrenheit
}

// Symbol is the display suffix for u.
func (u Unit) Symbol() string {
	if u == Fahrenheit {
		return "°F"
	}
	return "°C"
}

// Convert converts a Celsius reading to u.
func (u Unit) Convert(celsius float64) float64 {
	if u == Fahrenheit {
		return celsius*9/5 + 32
	}
	return celsius
}

// Item is one display row for a day.
type Item struct {
	ID          string    `json:"id"`
	Date        time.Time `json:"date"`
	AverageTemp float64   `json:"averageTemp"`
	Pressure    int       `json:"pressure"`
	Humidity    int       `json:"humidity"`
	Description string    `json:"description"`
	IconURL     string    `json:"iconUrlStr"`
	Unit        Unit      `json:"unit"`
}

// Items maps the days of cf into display rows. The average is the day
// temperature.
func Items(cf *CityForecast, unit Unit) []Item {
	if cf == nil {
		return []Item{}
	}

	items := make([]Item, 0, len(cf.Forecasts))
	for _, d := range cf.Forecasts {
		item := Item{
			ID:          strconv.FormatInt(d.Date.Unix(), 10),
			Date:        d.Date,
			AverageTemp: unit.Convert(d.Temperature.Day),
			Pressure:    d.Pressure,
			Humidity:    d.Humidity,
			Description: "N/A",
			Unit:        unit,
		}
		if w, ok := d.PrimaryWeather(); ok {
			item.Description = w.Description
			item.IconURL = w.IconURL
		}
		items = append(items, item)
	}
	return items
}
