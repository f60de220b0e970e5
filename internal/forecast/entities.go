// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package forecast

import "time"

// The JSON names below are the cache snapshot format; changing them orphans
// existing snapshots.

type CityForecast struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Forecasts []DailyForecast `json:"forecasts"`
}

type DailyForecast struct {
	Date        time.Time   `json:"date"`
	Sunrise     time.Time   `json:"sunrise"`
	Sunset      time.Time   `json:"sunset"`
	Temperature Temperature `json:"temperature"`
	Weathers    []Weather   `json:"weathers"`
	Pressure    int         `json:"pressure"`
	Humidity    int         `json:"humidity"`
}

// Temperature readings are in Celsius.
type Temperature struct {
	Day   float64 `json:"day"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Night float64 `json:"night"`
	Eve   float64 `json:"eve"`
	Morn  float64 `json:"morn"`
}

type Weather struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrlStr"`
}

// PrimaryWeather is the first reported condition, the only one displayed.
func (d DailyForecast) PrimaryWeather() (Weather, bool) {
	if len(d.Weathers) == 0 {
		return Weather{}, false
	}
	return d.Weathers[0], true
}
