// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package openweather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/staranto/wxctlgo/internal/config"
	mylog "github.com/staranto/wxctlgo/internal/log"
)

const (
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"
	DefaultTimeout = 15 * time.Second
	DefaultRetries = 2

	forecastPath = "/forecast/daily"
	maxBodyBytes = 4 << 20
)

// TransportError is a failure to get any response at all. Offline is set
// when the failure means there is no usable network.
type TransportError struct {
	Op      string
	Host    string
	Offline bool
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Host, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsOffline reports whether err is a TransportError flagged offline.
func IsOffline(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Offline
}

// offline reports whether err indicates that the host has no network, as
// opposed to a remote that refused or failed.
func offline(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETDOWN)
}

// Client calls the daily forecast endpoint.
type Client struct {
	http    *retryablehttp.Client
	baseURL string
	apiKey  string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithAPIKey sets the appid sent with every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithRetries sets how many times a failed request is retried.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.http.RetryMax = n
		}
	}
}

// WithTimeout bounds each attempt.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.HTTPClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying pooled client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http.HTTPClient = hc
		}
	}
}

// New returns a client with retries, a pooled transport and apex logging.
func New(opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.HTTPClient = cleanhttp.DefaultPooledClient()
	rc.HTTPClient.Timeout = DefaultTimeout
	rc.RetryMax = DefaultRetries
	rc.RetryWaitMin = 250 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.Logger = mylog.Leveled{Interface: log.Log}
	// Hand back the final response instead of a "giving up" error so 5xx
	// bodies still reach Parse.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	c := &Client{http: rc, baseURL: DefaultBaseURL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch requests days daily forecasts for the city name.
func (c *Client) Fetch(ctx context.Context, name string, days int) (*Response, error) {
	u, err := url.Parse(c.baseURL + forecastPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}
	q := u.Query()
	q.Set("q", name)
	q.Set("cnt", strconv.Itoa(days))
	q.Set("units", "metric")
	q.Set("appid", c.apiKey)
	u.RawQuery = q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	log.Debugf("GET %s%s q=%s cnt=%d", u.Host, u.Path, name, days)
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// The url.Error carries the full URL, API key included.
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, &TransportError{Op: http.MethodGet, Host: u.Host, Offline: offline(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &TransportError{Op: "read", Host: u.Host, Offline: offline(err), Err: err}
	}

	r := Parse(body, resp.StatusCode)
	log.WithFields(log.Fields{
		"status": resp.StatusCode,
		"cod":    r.Cod,
		"days":   len(r.List),
	}).Debug("forecast response")
	return r, nil
}

// APIKey resolves the API key from WXCTL_API_KEY, OPENWEATHER_APP_ID or the
// api.key config value, in that order.
func APIKey() string {
	for _, env := range []string{"WXCTL_API_KEY", "OPENWEATHER_APP_ID"} {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v
		}
	}
	key, _ := config.GetString("api.key", "")
	return key
}
