// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnit(t *testing.T) {
	for in, want := range map[string]Unit{
		"":           Celsius,
		"C":          Celsius,
		"celsius":    Celsius,
		"f":          Fahrenheit,
		"Fahrenheit": Fahrenheit,
		"imperial":   Fahrenheit,
	} {
		got, err := ParseUnit(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseUnit("kelvin")
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestUnit(t *testing.T) {
	assert.Equal(t, Fahrenheit, Celsius.Toggle())
	assert.Equal(t, Celsius, Fahrenheit.Toggle())
	assert.InDelta(t, 212.0, Fahrenheit.Convert(100), 1e-9)
	assert.InDelta(t, -40.0, Fahrenheit.Convert(-40), 1e-9)
	assert.InDelta(t, 21.5, Celsius.Convert(21.5), 1e-9)
	assert.Equal(t, "°F", Fahrenheit.Symbol())
	assert.Equal(t, "°C", Celsius.Symbol())
}

func TestItems(t *testing.T) {
	day := time.Unix(1656907200, 0).UTC()
	cf := &CityForecast{
		ID:   "1566083",
		Name: "Ho Chi Minh City",
		Forecasts: []DailyForecast{
			{
				Date:        day,
				Temperature: Temperature{Day: 30},
				Pressure:    1008,
				Humidity:    70,
				Weathers: []Weather{
					{ID: "500", Name: "Rain", Description: "light rain", IconURL: "https://openweathermap.org/img/wn/10d@2x.png"},
					{ID: "800", Name: "Clear", Description: "clear sky"},
				},
			},
			{Date: day.Add(24 * time.Hour), Temperature: Temperature{Day: 10}},
		},
	}

	items := Items(cf, Fahrenheit)
	require.Len(t, items, 2)

	assert.Equal(t, "1656907200", items[0].ID)
	assert.InDelta(t, 86.0, items[0].AverageTemp, 1e-9)
	assert.Equal(t, "light rain", items[0].Description)
	assert.Equal(t, "https://openweathermap.org/img/wn/10d@2x.png", items[0].IconURL)
	assert.Equal(t, 1008, items[0].Pressure)
	assert.Equal(t, Fahrenheit, items[0].Unit)

	assert.Equal(t, "N/A", items[1].Description)
	assert.Empty(t, items[1].IconURL)
	assert.InDelta(t, 50.0, items[1].AverageTemp, 1e-9)

	assert.Empty(t, Items(nil, Celsius))
}
