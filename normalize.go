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

import "strings"

// normalizePath collapses "//" runs, drops "." components, resolves ".."
// against the components accumulated so far (without ever climbing above an
// absolute root), and keeps up to two leading slashes -- POSIX gives "//"
// implementation-defined meaning, so it is preserved rather than collapsed
// the way three or more leading slashes are. An empty result becomes ".".
func normalizePath(p string) string {
	leading := 0
	for leading < len(p) && p[leading] == '/' {
		leading++
	}
	if leading > 2 {
		leading = 1
	}
	absolute := leading > 0
	rest := p[min(leading, len(p)):]

	var out []string
	for _, part := range strings.Split(rest, "/") {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 && out[len(out)-1] != ".." {
				out = out[:len(out)-1]
			} else if !absolute {
				out = append(out, "..")
			}
			// Absolute with nothing left to pop: drop it, never climb above root.
		default:
			out = append(out, part)
		}
	}

	result := strings.Repeat("/", leading) + strings.Join(out, "/")
	if result == "" {
		return "."
	}
	return result
}
