// Copyright 2011 Google Inc. All Rights Reserved.
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

package dirstate

import (
	"fmt"
	"os"
)

// FileInfo is what the core needs back from a stat call: enough to build a
// v1/v2 entry payload and to compare against a recorded mtime.
type FileInfo struct {
	Mode  int32
	Size  int32
	Mtime TruncatedTimestamp
}

// FileReader is the minimal read capability the core needs, split out from
// the fuller DiskInterface the way the teacher splits FileReader from
// DiskInterface: most of the core (pattern include expansion, legacy v1
// loading) only ever needs to read bytes.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// DiskInterface is the fuller capability surface the core's callers expose
// to it: stat, symlink, read, rename, classify. Abstract so it can be
// mocked out in tests; the real implementation is Real.
type DiskInterface interface {
	FileReader

	// SymlinkMetadata stats path without following a trailing symlink.
	SymlinkMetadata(path string) (FileInfo, error)
	// ReadLink returns the target of a symlink.
	ReadLink(path string) ([]byte, error)
	// Rename atomically renames from to to, used to publish a rewritten
	// docket or data file.
	Rename(from, to string) error
	// IsDir reports whether path names a directory.
	IsDir(path string) bool
	// IsFile reports whether path names a regular file.
	IsFile(path string) bool
}

// Real is the DiskInterface implementation that actually hits the disk.
type Real struct{}

// NewReal returns a DiskInterface backed by the real filesystem.
func NewReal() Real { return Real{} }

func (Real) ReadFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dirstate: read %s: %w", path, err)
	}
	return b, nil
}

func (Real) SymlinkMetadata(path string) (FileInfo, error) {
	st, err := os.Lstat(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("dirstate: stat %s: %w", path, err)
	}
	return FileInfo{
		Mode:  int32(st.Mode()),
		Size:  int32(st.Size()),
		Mtime: FromSystemTime(st.ModTime()),
	}, nil
}

func (Real) ReadLink(path string) ([]byte, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return nil, fmt.Errorf("dirstate: readlink %s: %w", path, err)
	}
	return []byte(target), nil
}

func (Real) Rename(from, to string) error {
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("dirstate: rename %s -> %s: %w", from, to, err)
	}
	return nil
}

func (Real) IsDir(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.IsDir()
}

func (Real) IsFile(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}
