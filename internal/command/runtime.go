// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/wxctlgo/internal/aws"
	"github.com/staranto/wxctlgo/internal/cache"
	"github.com/staranto/wxctlgo/internal/cacheutil"
	"github.com/staranto/wxctlgo/internal/config"
	"github.com/staranto/wxctlgo/internal/forecast"
	"github.com/staranto/wxctlgo/internal/openweather"
	"github.com/staranto/wxctlgo/internal/repository"
)

// Runtime is the forecast pipeline a command runs against.
type Runtime struct {
	Cache   *repository.Cache
	UseCase *forecast.CityForecastUseCase

	// Store is nil when caching is disabled; nothing is loaded or saved.
	Store cache.Store
	Name  string
}

// OpenRuntime assembles the pipeline from config and the environment,
// restoring the cache snapshot when there is one.
func OpenRuntime(ctx context.Context) (*Runtime, error) {
	opts, err := cacheOptions()
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Store: store, Name: cacheutil.SnapshotName()}
	if store != nil {
		rt.Cache = cache.LoadOrNew[string, forecast.CityForecast](ctx, rt.Name, store, opts...)
	} else {
		rt.Cache = cache.New[string, forecast.CityForecast](opts...)
	}

	client, err := newClient()
	if err != nil {
		return nil, err
	}

	coalesce, _ := config.GetBool("forecast.coalesce", false)
	rt.UseCase = forecast.NewCityForecastUseCase(
		repository.New(rt.Cache, client),
		forecast.WithCoalescing(coalesce),
	)
	return rt, nil
}

// Close waits for background cache population and, if anything was cached,
// writes the snapshot.
func (rt *Runtime) Close(ctx context.Context) error {
	rt.UseCase.Wait()
	if rt.Store == nil || rt.UseCase.Stats().Saves == 0 {
		return nil
	}
	return rt.Save(ctx)
}

// Save writes the snapshot unconditionally.
func (rt *Runtime) Save(ctx context.Context) error {
	if rt.Store == nil {
		return nil
	}
	return cache.SaveToDisk(ctx, rt.Cache, rt.Name, rt.Store)
}

func cacheOptions() ([]cache.Option, error) {
	lifetime, err := config.GetDuration("cache.lifetime", cache.DefaultLifetime)
	if err != nil {
		return nil, fmt.Errorf("invalid cache.lifetime: %w", err)
	}
	maxEntries, err := config.GetInt("cache.max_entries", cache.DefaultMaxEntries)
	if err != nil {
		return nil, fmt.Errorf("invalid cache.max_entries: %w", err)
	}

	return []cache.Option{
		cache.WithLifetime(lifetime),
		cache.WithMaxEntries(maxEntries),
		cache.WithEvictionHook(func(key any) {
			log.Debugf("evicted %v from cache", key)
		}),
	}, nil
}

// s3Settings reads cache.s3.* from config.
func s3Settings() aws.Settings {
	get := func(key string) string {
		v, _ := config.GetString("cache.s3."+key, "")
		return strings.TrimSpace(v)
	}
	return aws.Settings{
		Bucket:   get("bucket"),
		Prefix:   get("prefix"),
		Region:   get("region"),
		Profile:  get("profile"),
		Endpoint: get("endpoint"),
	}
}

// openStore picks where the snapshot lives: S3 when a bucket is configured,
// otherwise the cache directory. A nil Store means caching is disabled.
func openStore(ctx context.Context) (cache.Store, error) {
	if !cacheutil.Enabled() {
		log.Debug("cache disabled by WXCTL_CACHE")
		return nil, nil
	}

	if s := s3Settings(); s.Enabled() {
		store, err := aws.OpenStore(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("failed to open S3 cache store: %w", err)
		}
		return store, nil
	}

	dir, _, err := cacheutil.EnsureBaseDir()
	if err != nil {
		// The store reports the directory as unavailable on save.
		log.WithError(err).Warn("cache directory unavailable")
	}
	if dir == "" {
		return nil, nil
	}
	return cache.NewFileStore(dir), nil
}

func newClient() (*openweather.Client, error) {
	base, err := config.GetString("api.base_url", openweather.DefaultBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api.base_url: %w", err)
	}
	timeout, err := config.GetDuration("api.timeout", openweather.DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid api.timeout: %w", err)
	}
	retries, err := config.GetInt("api.retries", openweather.DefaultRetries)
	if err != nil {
		return nil, fmt.Errorf("invalid api.retries: %w", err)
	}

	key := openweather.APIKey()
	if key == "" {
		log.Warn("no OpenWeather API key; set WXCTL_API_KEY or api.key")
	}

	return openweather.New(
		openweather.WithBaseURL(base),
		openweather.WithAPIKey(key),
		openweather.WithTimeout(timeout),
		openweather.WithRetries(retries),
	), nil
}
