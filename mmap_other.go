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

//go:build !unix

package dirstate

import (
	"fmt"
	"os"
)

// mmapReadOnly falls back to a plain read on platforms without the unix mmap
// syscalls wired (e.g. Windows). The data is copied into the process's
// memory instead of being backed by the OS page cache, but the Container
// API above it is unaffected: it only ever sees a []byte.
func mmapReadOnly(path string) (data []byte, closer func() error, err error) {
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("dirstate: read %s: %w", path, err)
	}
	return data, func() error { return nil }, nil
}
