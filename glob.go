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

// globMetaBytes are the bytes that make a RootGlob pattern ineligible for
// the literal-match shortcut in Compile's RootGlob case (see isLiteralGlob).
const globMetaBytes = `*?[]{}\`

// regexEscapeByte renders a single source byte as it should appear inside a
// synthesized regex: regex metacharacters are backslash-escaped, everything
// else passes through unchanged.
func regexEscapeByte(b byte) string {
	switch b {
	case '\\', '.', '+', '*', '?', '(', ')', '|', '[', ']', '{', '}', '^', '$':
		return "\\" + string(b)
	default:
		return string(b)
	}
}

// escapeLiteral regex-escapes every byte of s, for syntaxes (Path, RootFiles)
// that match a literal path rather than a glob.
func escapeLiteral(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		b.WriteString(regexEscapeByte(s[i]))
	}
	return b.String()
}

// globToRegex translates a glob pattern into the body of a regex, byte by
// byte: "*/" and "**" collapse directory wildcards, "?" matches any single
// byte, "[...]" becomes a character class,
// and "{...,...}" becomes a non-capturing alternation. Longest match wins,
// so "**/" is recognized before "*/" and a bare "*".
func globToRegex(pattern string) string {
	var b strings.Builder
	depth := 0
	i := 0
	n := len(pattern)
	for i < n {
		switch {
		case strings.HasPrefix(pattern[i:], "**/"):
			b.WriteString("(?:.*/)?")
			i += 3
		case strings.HasPrefix(pattern[i:], "**"):
			b.WriteString(".*")
			i += 2
		case strings.HasPrefix(pattern[i:], "*/"):
			b.WriteString("(?:.*/)?")
			i += 2
		case pattern[i] == '*':
			b.WriteString("[^/]*")
			i++
		case pattern[i] == '?':
			b.WriteByte('.')
			i++
		case pattern[i] == '[':
			consumed := globCharClass(&b, pattern[i:])
			if consumed == 0 {
				b.WriteString(regexEscapeByte('['))
				i++
			} else {
				i += consumed
			}
		case pattern[i] == '{':
			b.WriteString("(?:")
			depth++
			i++
		case pattern[i] == '}' && depth > 0:
			b.WriteByte(')')
			depth--
			i++
		case pattern[i] == ',' && depth > 0:
			b.WriteByte('|')
			i++
		case pattern[i] == '\\' && i+1 < n:
			b.WriteString(regexEscapeByte(pattern[i+1]))
			i += 2
		default:
			b.WriteString(regexEscapeByte(pattern[i]))
			i++
		}
	}
	return b.String()
}

// globCharClass translates a "[...]" character class starting at s[0] and
// writes the result to b, returning how many source bytes it consumed (0 if
// s has no closing "]", in which case the caller treats "[" as literal).
func globCharClass(b *strings.Builder, s string) int {
	end := strings.IndexByte(s[1:], ']')
	if end < 0 {
		return 0
	}
	end++ // index within s, not s[1:]
	cls := s[1:end]
	b.WriteByte('[')
	for k := 0; k < len(cls); k++ {
		c := cls[k]
		switch {
		case k == 0 && c == '!':
			b.WriteByte('^')
		case k == 0 && c == '^':
			b.WriteString(`\^`)
		case c == '\\':
			b.WriteString(`\\`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(']')
	return end + 1
}

// isLiteralGlob reports whether pattern contains none of the glob
// metacharacters, meaning it matches only itself.
func isLiteralGlob(pattern string) bool {
	return !strings.ContainsAny(pattern, globMetaBytes)
}
