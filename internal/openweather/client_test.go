// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package openweather

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/wxctlgo/internal/config"
)

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return b
}

func TestParse(t *testing.T) {
	r := Parse(fixture(t, "forecast_city1.json"), http.StatusOK)

	assert.Equal(t, "200", r.Cod)
	require.NotNil(t, r.City)
	assert.Equal(t, int64(1566083), r.City.ID)
	assert.Equal(t, "Ho Chi Minh City", r.City.Name)
	assert.Equal(t, "VN", r.City.Country)

	require.Len(t, r.List, 7)
	d := r.List[0]
	assert.Equal(t, int64(1656907200), d.Dt)
	assert.InDelta(t, 30.5, d.Temp.Day, 1e-9)
	assert.InDelta(t, 25.1, d.Temp.Min, 1e-9)
	assert.Equal(t, 1008, d.Pressure)
	assert.Equal(t, 70, d.Humidity)
	require.Len(t, d.Weather, 1)
	assert.Equal(t, Weather{ID: 500, Main: "Rain", Description: "light rain", Icon: "10d"}, d.Weather[0])
}

func TestParse_Codes(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		cod    string
	}{
		{"string cod", `{"cod":"404","message":"city not found"}`, 404, "404"},
		{"numeric cod", `{"cod":401,"message":"Invalid API key"}`, 401, "401"},
		{"no cod", `{"message":"x"}`, 502, "502"},
		{"not json", `<html>bad gateway</html>`, 502, "502"},
		{"empty", ``, 500, "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Parse([]byte(tt.body), tt.status)
			assert.Equal(t, tt.cod, r.Cod)
			assert.Nil(t, r.City)
			assert.Nil(t, r.List)
		})
	}
}

func TestFetch(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(fixture(t, "forecast_city1.json"))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL+"/"), WithAPIKey("secret"), WithRetries(0))
	r, err := c.Fetch(context.Background(), "city1", 7)
	require.NoError(t, err)

	assert.Equal(t, "200", r.Cod)
	assert.Len(t, r.List, 7)

	require.NotNil(t, got)
	assert.Equal(t, "/forecast/daily", got.URL.Path)
	assert.Equal(t, "city1", got.URL.Query().Get("q"))
	assert.Equal(t, "7", got.URL.Query().Get("cnt"))
	assert.Equal(t, "metric", got.URL.Query().Get("units"))
	assert.Equal(t, "secret", got.URL.Query().Get("appid"))
}

func TestFetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write(fixture(t, "not_found.json"))
	}))
	defer srv.Close()

	r, err := New(WithBaseURL(srv.URL), WithRetries(0)).Fetch(context.Background(), "city6", 7)
	require.NoError(t, err)
	assert.Equal(t, "404", r.Cod)
	assert.Equal(t, "city not found", r.Message)
	assert.Nil(t, r.City)
}

func TestFetch_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write(fixture(t, "forecast_city1.json"))
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL), WithRetries(3))
	c.http.RetryWaitMin = time.Millisecond
	c.http.RetryWaitMax = 5 * time.Millisecond

	r, err := c.Fetch(context.Background(), "city1", 7)
	require.NoError(t, err)
	assert.Equal(t, "200", r.Cod)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_ExhaustedRetriesReturnLastResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(WithBaseURL(srv.URL), WithRetries(1))
	c.http.RetryWaitMin = time.Millisecond
	c.http.RetryWaitMax = time.Millisecond

	r, err := c.Fetch(context.Background(), "city1", 7)
	require.NoError(t, err)
	assert.Equal(t, "502", r.Cod)
}

// dialFailing returns an http.Client whose every dial fails with err.
func dialFailing(err error) *http.Client {
	return &http.Client{Transport: &http.Transport{
		DialContext: func(context.Context, string, string) (net.Conn, error) {
			return nil, err
		},
	}}
}

func TestFetch_TransportErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		offline bool
	}{
		{"network unreachable", &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ENETUNREACH)}, true},
		{"host unreachable", &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.EHOSTUNREACH)}, true},
		{"dns", &net.OpError{Op: "dial", Net: "tcp", Err: &net.DNSError{Err: "no such host", Name: "api.openweathermap.org"}}, true},
		{"refused", &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(WithHTTPClient(dialFailing(tt.err)), WithRetries(0))

			r, err := c.Fetch(context.Background(), "city1", 7)
			assert.Nil(t, r)
			require.Error(t, err)

			var te *TransportError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.offline, te.Offline)
			assert.Equal(t, tt.offline, IsOffline(err))
			assert.NotContains(t, err.Error(), "appid")
		})
	}
}

func TestFetch_Canceled(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(WithBaseURL(srv.URL), WithRetries(0)).Fetch(ctx, "city1", 7)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, IsOffline(err))
}

func TestAPIKey(t *testing.T) {
	t.Cleanup(func() { config.Config = config.Type{} })
	config.Config = config.Type{Data: map[string]interface{}{
		"api": map[string]interface{}{"key": "from-config"},
	}}

	t.Setenv("WXCTL_API_KEY", "")
	t.Setenv("OPENWEATHER_APP_ID", "")
	assert.Equal(t, "from-config", APIKey())

	t.Setenv("OPENWEATHER_APP_ID", "from-owm")
	assert.Equal(t, "from-owm", APIKey())

	t.Setenv("WXCTL_API_KEY", "from-wxctl")
	assert.Equal(t, "from-wxctl", APIKey())
}
