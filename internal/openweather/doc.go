// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package openweather is a thin client for the OpenWeatherMap daily forecast
// endpoint. It returns the response as sent, status code included, and leaves
// interpretation to the repository.
package openweather
