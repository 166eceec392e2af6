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
	"errors"
	"strconv"
)

// Sentinel error kinds, per the error-handling design: leaf operations
// return one of these (optionally wrapped with context via fmt.Errorf's
// %w), aggregators collect Warning values instead of failing.
var (
	// ErrCorruptedContainer means the on-disk v2 container (docket, node,
	// or v1 file) failed to parse: bad marker, out-of-range offset or
	// length, invalid base-name index, invalid v1 state byte. Never
	// auto-recovered; propagated straight to the caller.
	ErrCorruptedContainer = errors.New("dirstate: corrupted container")

	// ErrUnsupportedFeature means the container or entry encodes something
	// this implementation does not know how to handle, surfaced distinctly
	// so callers can fall back to another implementation.
	ErrUnsupportedFeature = errors.New("dirstate: unsupported feature")

	// ErrPattern means a pattern could not be compiled: unsupported syntax
	// prefix, or a non-regex pattern (e.g. FilePath) passed somewhere a
	// regex was required.
	ErrPattern = errors.New("dirstate: pattern error")
)

// Warning is a non-fatal diagnostic accumulated while compiling patterns:
// invalid syntax line in a pattern file, or a missing include file. Warnings
// never abort compilation; callers decide whether to surface them.
type Warning struct {
	// File is the pattern file being read, if any.
	File string
	// Line is the 1-based line number within File, or 0 if not applicable.
	Line int
	// Message describes the problem.
	Message string
}

func (w Warning) String() string {
	if w.File == "" {
		return w.Message
	}
	if w.Line > 0 {
		return w.File + ":" + strconv.Itoa(w.Line) + ": " + w.Message
	}
	return w.File + ": " + w.Message
}
