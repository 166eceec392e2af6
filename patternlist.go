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
	"bytes"
	"fmt"
	"strings"
)

// ReadPatternList reads a "listfile:"/"listfile0:" style external pattern
// list: one raw pattern per line (newline-separated) or per record
// (NUL-separated when nulSeparated is true). Unlike include:/subinclude:,
// this is not wired into ParsePatternLines: it exists for callers that pass
// large pattern sets as a file rather than on a command line, and choose
// the syntax for every resulting pattern themselves.
func ReadPatternList(fr FileReader, path string, nulSeparated bool) ([]string, error) {
	data, err := fr.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dirstate: read pattern list %s: %w", path, err)
	}
	sep := byte('\n')
	if nulSeparated {
		sep = 0
	}
	var out []string
	for _, part := range bytes.Split(data, []byte{sep}) {
		s := string(part)
		if !nulSeparated {
			s = strings.TrimRight(s, "\r")
		}
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
