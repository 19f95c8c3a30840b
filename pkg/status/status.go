// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package status tracks the outcome of each file and persists rewritten ones.
package status

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 📊 FileStatus represents the outcome of processing one file
type FileStatus int

const (
	StatusUnknown     FileStatus = iota
	StatusFixed                  // File was rewritten
	StatusWouldFix               // File needs rewriting (dry run)
	StatusUnchanged              // No occurrence needed rewriting
	StatusNeedsReview            // Some occurrence could not be rewritten safely
	StatusNotFound               // Path does not exist
	StatusFailed                 // Read or write failed
)

// String returns a string representation of FileStatus
func (s FileStatus) String() string {
	switch s {
	case StatusFixed:
		return "fixed"
	case StatusWouldFix:
		return "would fix"
	case StatusUnchanged:
		return "no changes needed"
	case StatusNeedsReview:
		return "needs review"
	case StatusNotFound:
		return "file not found"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Touched reports whether the file has (or would have) rewrites.
func (s FileStatus) Touched() bool {
	return s == StatusFixed || s == StatusWouldFix
}

// 💾 Store reads and rewrites source files in place
type Store struct{}

// 🏭 NewStore creates a new store
func NewStore() *Store {
	return &Store{}
}

// ReadFile returns the content and permissions of path.
func (s *Store) ReadFile(ctx context.Context, path string) ([]byte, fs.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, 0, errors.Errorf("checking file: %w", err)
	}
	if info.IsDir() {
		return nil, 0, errors.Errorf("%s is a directory", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, errors.Errorf("reading file: %w", err)
	}
	return content, info.Mode().Perm(), nil
}

// WriteFileAtomic replaces the content of path. The bytes are written as-is,
// so the encoding of the file is whatever it was when read.
//
// Symlinks are resolved first so the link stays a link and its target gets
// the new content. A temp file in the target's directory is renamed over it;
// on failure the target is left untouched and the temp file removed. A file
// with more than one hard link is overwritten in place instead, since a
// rename would detach it from its other names.
func (s *Store) WriteFileAtomic(ctx context.Context, path string, content []byte, mode fs.FileMode) error {
	target, err := filepath.EvalSymlinks(path)
	if err != nil {
		return errors.Errorf("resolving symlinks: %w", err)
	}

	info, err := os.Stat(target)
	if err != nil {
		return errors.Errorf("checking file: %w", err)
	}
	if linkCount(info) > 1 {
		return s.overwrite(ctx, target, content)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		if rerr := os.Remove(tmpPath); rerr != nil && !os.IsNotExist(rerr) {
			zerolog.Ctx(ctx).Warn().Err(rerr).Str("path", tmpPath).Msg("removing temp file")
		}
	}

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		cleanup()
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		cleanup()
		return errors.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		cleanup()
		return errors.Errorf("renaming temp file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Str("target", target).Int("bytes", len(content)).Msg("file rewritten")
	return nil
}

// overwrite truncates and rewrites target through its existing inode.
func (s *Store) overwrite(ctx context.Context, target string, content []byte) error {
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return errors.Errorf("opening file: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return errors.Errorf("writing file: %w", err)
	}
	if err := f.Close(); err != nil {
		return errors.Errorf("closing file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", target).Int("bytes", len(content)).Msg("hard-linked file rewritten in place")
	return nil
}
