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

//go:build unix

package dirstate

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mmapReadOnly maps path read-only for the lifetime of the returned closer.
// Grounded on the mmap technique used for append-only log backing in the
// reference dittofs WAL persister: open, stat, Mmap(PROT_READ, MAP_SHARED).
func mmapReadOnly(path string) (data []byte, closer func() error, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("dirstate: mmap open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("dirstate: mmap stat %s: %w", path, err)
	}
	size := info.Size()
	if size == 0 {
		// unix.Mmap rejects a zero-length mapping; an empty data blob is
		// legal (a brand new, never-written dirstate).
		return nil, func() error { return nil }, nil
	}

	data, err = unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("dirstate: mmap %s: %w", path, err)
	}
	return data, func() error { return unix.Munmap(data) }, nil
}
