// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package cache

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemStore(t *testing.T) *FileStore {
	t.Helper()
	mfs := memfs.New()
	require.NoError(t, mfs.MkdirAll("/cache", 0o755))
	return NewFileStoreFS(mfs, "/cache")
}

func TestFileStore_WriteRead(t *testing.T) {
	ctx := context.Background()
	s := newMemStore(t)

	require.NoError(t, s.Write(ctx, "ForecastCache.cache", []byte("one")))
	require.NoError(t, s.Write(ctx, "ForecastCache.cache", []byte("two")))

	data, err := s.Read(ctx, "ForecastCache.cache")
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	info, err := s.Stat(ctx, "ForecastCache.cache")
	require.NoError(t, err)
	assert.Equal(t, int64(3), info.Size)

	// No temp files left behind.
	entries, err := s.fs.ReadDir("/cache")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_ReadMissing(t *testing.T) {
	s := newMemStore(t)

	_, err := s.Read(context.Background(), "nope.cache")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFileStore_WriteMissingDir(t *testing.T) {
	s := NewFileStoreFS(memfs.New(), "/does/not/exist")

	err := s.Write(context.Background(), "ForecastCache.cache", []byte("x"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
}

func TestFileStore_WriteDirIsFile(t *testing.T) {
	mfs := memfs.New()
	require.NoError(t, util.WriteFile(mfs, "/cache", []byte("file"), 0o644))
	s := NewFileStoreFS(mfs, "/cache")

	err := s.Write(context.Background(), "ForecastCache.cache", []byte("x"))
	assert.ErrorIs(t, err, ErrNotDirectory)
}

func TestFileStore_Remove(t *testing.T) {
	ctx := context.Background()
	s := newMemStore(t)

	require.NoError(t, s.Write(ctx, "a.cache", []byte("x")))
	require.NoError(t, s.Remove(ctx, "a.cache"))
	require.NoError(t, s.Remove(ctx, "a.cache"))

	_, err := s.Stat(ctx, "a.cache")
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestFileStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := newMemStore(t)

	assert.ErrorIs(t, s.Write(ctx, "a", nil), context.Canceled)
	_, err := s.Read(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileStore_OS(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "ForecastCache.cache", []byte("[]")))

	raw, err := os.ReadFile(filepath.Join(dir, "ForecastCache.cache"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
	assert.Equal(t, filepath.Join(dir, "ForecastCache.cache"), s.Location("ForecastCache.cache"))

	missing := NewFileStore(filepath.Join(dir, "missing"))
	assert.Error(t, missing.Write(ctx, "ForecastCache.cache", []byte("[]")))
	_, statErr := os.Stat(filepath.Join(dir, "missing"))
	assert.ErrorIs(t, statErr, fs.ErrNotExist, "the directory must not be created")
}

func TestSaveLoadDisk(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	s := newMemStore(t)

	c := New[string, string](WithClock(clock.Now))
	c.Insert("sunny", "city1")
	c.Insert("rain", "city2")

	require.NoError(t, SaveToDisk(ctx, c, DefaultSnapshotName, s))

	restored, ok := LoadFromDisk[string, string](ctx, DefaultSnapshotName, s, WithClock(clock.Now))
	require.True(t, ok)
	v, found := restored.Value("city2")
	assert.True(t, found)
	assert.Equal(t, "rain", v)

	clock.Advance(13 * time.Hour)
	_, found = restored.Value("city1")
	assert.False(t, found)
}

func TestSaveToDisk_Unavailable(t *testing.T) {
	s := NewFileStoreFS(memfs.New(), "/gone")
	c := New[string, string]()

	err := SaveToDisk(context.Background(), c, DefaultSnapshotName, s)
	assert.Error(t, err)
}

func TestLoadFromDisk_Absent(t *testing.T) {
	ctx := context.Background()
	s := newMemStore(t)

	c, ok := LoadFromDisk[string, string](ctx, "missing.cache", s)
	assert.False(t, ok)
	assert.Nil(t, c)

	require.NoError(t, s.Write(ctx, "corrupt.cache", []byte("{{{")))
	c, ok = LoadFromDisk[string, string](ctx, "corrupt.cache", s)
	assert.False(t, ok)
	assert.Nil(t, c)

	fresh := LoadOrNew[string, string](ctx, "corrupt.cache", s, WithMaxEntries(5))
	require.NotNil(t, fresh)
	assert.Equal(t, 0, fresh.Len())
	assert.Equal(t, 5, fresh.MaxEntries())
}

func TestLoadFromDisk_NonexistentPath(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "no", "such", "dir"))

	c, ok := LoadFromDisk[string, int](context.Background(), DefaultSnapshotName, s)
	assert.False(t, ok)
	assert.Nil(t, c)
}
