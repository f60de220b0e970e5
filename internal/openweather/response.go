// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package openweather

import (
	"strconv"

	"github.com/tidwall/gjson"
)

// Response is the decoded body of a daily forecast call. City and List are
// nil when the body does not carry them, as on errors.
type Response struct {
	Cod     string
	Message string
	City    *City
	List    []Day
}

// City identifies the place the forecast is for.
type City struct {
	ID       int64
	Name     string
	Country  string
	Timezone int64
}

// Day is one daily entry. Instants are unix seconds.
type Day struct {
	Dt       int64
	Sunrise  int64
	Sunset   int64
	Temp     Temp
	Pressure int
	Humidity int
	Weather  []Weather
}

// Temp holds a day's temperatures in the requested units.
type Temp struct {
	Day   float64
	Min   float64
	Max   float64
	Night float64
	Eve   float64
	Morn  float64
}

// Weather is one condition reported for a day.
type Weather struct {
	ID          int64
	Main        string
	Description string
	Icon        string
}

// Parse decodes body. The API reports cod as a string on success and as a
// number on some errors; both come back as a string. When the body is not
// JSON or has no cod, the HTTP status stands in for it.
func Parse(body []byte, status int) *Response {
	resp := &Response{Cod: strconv.Itoa(status)}
	if !gjson.ValidBytes(body) {
		return resp
	}

	root := gjson.ParseBytes(body)
	if cod := root.Get("cod"); cod.Exists() && cod.String() != "" {
		resp.Cod = cod.String()
	}
	resp.Message = root.Get("message").String()

	if city := root.Get("city"); city.IsObject() {
		resp.City = &City{
			ID:       city.Get("id").Int(),
			Name:     city.Get("name").String(),
			Country:  city.Get("country").String(),
			Timezone: city.Get("timezone").Int(),
		}
	}

	if list := root.Get("list"); list.IsArray() {
		resp.List = []Day{}
		list.ForEach(func(_, d gjson.Result) bool {
			resp.List = append(resp.List, parseDay(d))
			return true
		})
	}

	return resp
}

func parseDay(d gjson.Result) Day {
	day := Day{
		Dt:       d.Get("dt").Int(),
		Sunrise:  d.Get("sunrise").Int(),
		Sunset:   d.Get("sunset").Int(),
		Pressure: int(d.Get("pressure").Int()),
		Humidity: int(d.Get("humidity").Int()),
		Temp: Temp{
			Day:   d.Get("temp.day").Float(),
			Min:   d.Get("temp.min").Float(),
			Max:   d.Get("temp.max").Float(),
			Night: d.Get("temp.night").Float(),
			Eve:   d.Get("temp.eve").Float(),
			Morn:  d.Get("temp.morn").Float(),
		},
		Weather: []Weather{},
	}
	d.Get("weather").ForEach(func(_, w gjson.Result) bool {
		day.Weather = append(day.Weather, Weather{
			ID:          w.Get("id").Int(),
			Main:        w.Get("main").String(),
			Description: w.Get("description").String(),
			Icon:        w.Get("icon").String(),
		})
		return true
	})
	return day
}
