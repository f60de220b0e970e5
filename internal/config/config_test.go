// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// setupTestConfig sets WXCTL_CFG to point to a test config file and resets
// the package-level Config.
func setupTestConfig(t *testing.T, testdataFile string) {
	t.Helper()

	absPath, err := filepath.Abs(filepath.Join("testdata", testdataFile))
	assert.NoError(t, err, "failed to get absolute path for test config")

	t.Setenv("WXCTL_CFG", absPath)

	Config = Type{}
	t.Cleanup(func() { Config = Type{} })
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		testFile  string
		checkFunc func(*testing.T, Type)
	}{
		{
			name:     "simple string values",
			testFile: "simple.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				assert.NotEmpty(t, cfg.Source)
				assert.Equal(t, "celsius", cfg.Data["units"])
			},
		},
		{
			name:     "nested structure",
			testFile: "nested.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				cache, ok := cfg.Data["cache"].(map[string]interface{})
				assert.True(t, ok, "cache should be a map")
				s3, ok := cache["s3"].(map[string]interface{})
				assert.True(t, ok, "s3 should be a map")
				assert.Equal(t, "wx-snapshots", s3["bucket"])
			},
		},
		{
			name:     "empty file",
			testFile: "empty.yaml",
			checkFunc: func(t *testing.T, cfg Type) {
				// Empty YAML unmarshals to nil map, which is acceptable
				assert.NotEmpty(t, cfg.Source, "should have a source path")
				assert.Empty(t, cfg.Data)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)

			cfg, err := Load()
			assert.NoError(t, err)
			tt.checkFunc(t, cfg)
		})
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Setenv("WXCTL_CFG", "/nonexistent/path/wxctl.yaml")
	Config = Type{}

	_, err := Load()
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "config file not found")
}

func TestLoad_IsDirectory(t *testing.T) {
	t.Setenv("WXCTL_CFG", "testdata")
	Config = Type{}

	_, err := Load()
	assert.ErrorIs(t, err, ErrIsDirectory)
}

func TestLoad_StandardLocations(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WXCTL_CFG", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("APPDATA", "")
	t.Setenv("HOME", dir)
	Config = Type{}

	_, err := Load()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetString(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue []string
		want         string
		wantErr      bool
	}{
		{name: "nested string value", key: "cache.s3.region", want: "eu-west-1"},
		{name: "missing key with default", key: "missing", defaultValue: []string{"fallback"}, want: "fallback"},
		{name: "missing key without default", key: "missing", wantErr: true},
		{name: "non-string value", key: "cache.max_entries", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, "nested.yaml")

			got, err := GetString(tt.key, tt.defaultValue...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetInt(t *testing.T) {
	tests := []struct {
		name         string
		testFile     string
		key          string
		defaultValue []int
		want         int
		wantErr      bool
	}{
		{name: "int value", testFile: "mixed-types.yaml", key: "version", want: 1},
		{name: "float value converted to int", testFile: "mixed-types.yaml", key: "timeout", want: 30},
		{name: "nested int value", testFile: "nested.yaml", key: "cache.max_entries", want: 50},
		{name: "missing key with default", testFile: "simple.yaml", key: "missing", defaultValue: []int{60}, want: 60},
		{name: "missing key without default", testFile: "simple.yaml", key: "missing", wantErr: true},
		{name: "non-int value", testFile: "simple.yaml", key: "units", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)

			got, err := GetInt(tt.key, tt.defaultValue...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetBool(t *testing.T) {
	setupTestConfig(t, "mixed-types.yaml")

	got, err := GetBool("enabled")
	assert.NoError(t, err)
	assert.True(t, got)

	got, err = GetBool("missing", false)
	assert.NoError(t, err)
	assert.False(t, got)

	_, err = GetBool("name")
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestGetDuration(t *testing.T) {
	tests := []struct {
		name     string
		testFile string
		key      string
		want     time.Duration
		wantErr  bool
	}{
		{name: "duration string", testFile: "nested.yaml", key: "cache.lifetime", want: 12 * time.Hour},
		{name: "millisecond string", testFile: "mixed-types.yaml", key: "debounce", want: 500 * time.Millisecond},
		{name: "float seconds", testFile: "nested.yaml", key: "api.timeout", want: 2500 * time.Millisecond},
		{name: "int seconds", testFile: "mixed-types.yaml", key: "version", want: time.Second},
		{name: "not a duration", testFile: "mixed-types.yaml", key: "name", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupTestConfig(t, tt.testFile)

			got, err := GetDuration(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetStringSlice(t *testing.T) {
	setupTestConfig(t, "mixed-types.yaml")

	got, err := GetStringSlice("tags")
	assert.NoError(t, err)
	assert.Equal(t, []string{"weather", "cache"}, got)

	got, err = GetStringSlice("name")
	assert.NoError(t, err)
	assert.Equal(t, []string{"wxctl"}, got)

	_, err = GetStringSlice("mixed")
	assert.ErrorIs(t, err, ErrWrongType)

	got, err = GetStringSlice("missing", []string{"a"})
	assert.NoError(t, err)
	assert.Equal(t, []string{"a"}, got)
}

func TestConfig_GetWithNamespace(t *testing.T) {
	setupTestConfig(t, "nested.yaml")

	_, err := Load("fq")
	assert.NoError(t, err)

	// Namespaced value wins over nothing at the root.
	val, err := Config.get("units")
	assert.NoError(t, err)
	assert.Equal(t, "fahrenheit", val)

	// Root value is still reachable through the namespace.
	val, err = Config.get("cache.name")
	assert.NoError(t, err)
	assert.Equal(t, "ForecastCache.cache", val)
}

func TestConfig_LazyLoad(t *testing.T) {
	setupTestConfig(t, "simple.yaml")

	// Don't explicitly call Load(), just use GetString
	val, err := GetString("units")
	assert.NoError(t, err)
	assert.Equal(t, "celsius", val)
	assert.NotEmpty(t, Config.Source, "Config should be loaded")
}
