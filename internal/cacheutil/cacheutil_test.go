// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cacheutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/wxctlgo/internal/cache"
	"github.com/staranto/wxctlgo/internal/config"
)

func TestEnabled(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", true},
		{"1", true},
		{"yes", true},
		{"0", false},
		{"false", false},
		{"FALSE", false},
	}

	for _, tt := range tests {
		t.Run("WXCTL_CACHE="+tt.value, func(t *testing.T) {
			t.Setenv("WXCTL_CACHE", tt.value)
			assert.Equal(t, tt.want, Enabled())
		})
	}
}

func TestDir(t *testing.T) {
	t.Setenv("WXCTL_CACHE_DIR", "/tmp/wx")
	dir, ok := Dir()
	assert.True(t, ok)
	assert.Equal(t, "/tmp/wx", dir)

	t.Setenv("WXCTL_CACHE_DIR", "")
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")
	t.Setenv("HOME", "/tmp/home")
	dir, ok = Dir()
	assert.True(t, ok)
	assert.Equal(t, "wxctl", filepath.Base(dir))
}

func TestEnsureBaseDir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "wxctl")
	t.Setenv("WXCTL_CACHE_DIR", base)
	t.Setenv("WXCTL_CACHE", "")

	got, ok, err := EnsureBaseDir()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, base, got)
	assert.DirExists(t, base)

	t.Setenv("WXCTL_CACHE", "0")
	got, ok, err = EnsureBaseDir()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestSnapshotName(t *testing.T) {
	t.Cleanup(func() { config.Config = config.Type{} })

	config.Config = config.Type{Data: map[string]interface{}{"other": 1}}
	assert.Equal(t, cache.DefaultSnapshotName, SnapshotName())

	config.Config = config.Type{Data: map[string]interface{}{
		"cache": map[string]interface{}{"name": "../../etc/wx.cache"},
	}}
	assert.Equal(t, "wx.cache", SnapshotName())
}

func TestSnapshotPath(t *testing.T) {
	t.Cleanup(func() { config.Config = config.Type{} })
	config.Config = config.Type{Data: map[string]interface{}{"other": 1}}

	base := t.TempDir()
	t.Setenv("WXCTL_CACHE_DIR", base)

	p, exists := SnapshotPath()
	assert.Equal(t, filepath.Join(base, cache.DefaultSnapshotName), p)
	assert.False(t, exists)

	require.NoError(t, os.WriteFile(p, []byte("[]"), 0o600))
	_, exists = SnapshotPath()
	assert.True(t, exists)
}

func TestPurge(t *testing.T) {
	base := t.TempDir()
	t.Setenv("WXCTL_CACHE_DIR", base)

	old := time.Now().Add(-3 * time.Hour)
	write := func(name string, mod time.Time) string {
		p := filepath.Join(base, name)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
		require.NoError(t, os.Chtimes(p, mod, mod))
		return p
	}

	stale := write(".ForecastCache.cache-123", old)
	fresh := write(".ForecastCache.cache-456", time.Now())
	snapshot := write("ForecastCache.cache", old)

	n, err := Purge(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, fresh)
	assert.FileExists(t, snapshot)

	n, err = Purge(0)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPurge_MissingDir(t *testing.T) {
	t.Setenv("WXCTL_CACHE_DIR", filepath.Join(t.TempDir(), "absent"))

	n, err := Purge(time.Hour)
	assert.NoError(t, err)
	assert.Zero(t, n)
}
