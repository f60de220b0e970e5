// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// ErrNotDirectory is returned when a FileStore's directory is a file.
var ErrNotDirectory = errors.New("not a directory")

// Info describes a stored snapshot.
type Info struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Store holds named snapshot blobs. Implementations report a missing blob with
// an error matching fs.ErrNotExist.
type Store interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Remove(ctx context.Context, name string) error
	Stat(ctx context.Context, name string) (Info, error)
	// Location is a human readable description of where name lives.
	Location(name string) string
}

// FileStore keeps snapshots as files in a single directory of a billy
// filesystem.
type FileStore struct {
	fs   billy.Filesystem
	dir  string
	root string
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a store over dir on the OS filesystem. dir is not
// created; see cacheutil.EnsureBaseDir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{fs: osfs.New(dir), root: dir}
}

// NewFileStoreFS returns a store over dir inside filesystem.
func NewFileStoreFS(filesystem billy.Filesystem, dir string) *FileStore {
	return &FileStore{fs: filesystem, dir: dir}
}

func (s *FileStore) path(name string) string {
	return s.fs.Join(s.dir, path.Base(name))
}

// Location implements Store.
func (s *FileStore) Location(name string) string {
	return filepath.Join(s.root, s.path(name))
}

// Read implements Store.
func (s *FileStore) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := util.ReadFile(s.fs, s.path(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.Location(name), err)
	}
	return data, nil
}

// Write implements Store. The blob is written to a temporary file in the same
// directory and renamed over the target so readers never see a partial file.
func (s *FileStore) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Join(s.root, s.dir)
	info, err := s.fs.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("cache directory %s unavailable: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("cache directory %s: %w", dir, ErrNotDirectory)
	}

	tmp, err := s.fs.TempFile(s.dir, "."+path.Base(name)+"-")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to close snapshot: %w", err)
	}

	if err := s.fs.Rename(tmpName, s.path(name)); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("failed to move snapshot into place: %w", err)
	}
	return nil
}

// Remove implements Store. Removing a missing snapshot is not an error.
func (s *FileStore) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fs.Remove(s.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", s.Location(name), err)
	}
	return nil
}

// Stat implements Store.
func (s *FileStore) Stat(ctx context.Context, name string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	fi, err := s.fs.Stat(s.path(name))
	if err != nil {
		return Info{}, err
	}
	return Info{Name: name, Size: fi.Size(), ModTime: fi.ModTime()}, nil
}
