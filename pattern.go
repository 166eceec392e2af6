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
	"regexp"
	"strings"
)

// Syntax is a pattern's classification, set either by an explicit line
// prefix (e.g. "glob:") or by the file's (or the compiler's) current
// default.
type Syntax int

const (
	SyntaxRelRegexp Syntax = iota // default syntax: "relre:"
	SyntaxRegexp
	SyntaxPath
	SyntaxRelPath
	SyntaxFilePath
	SyntaxRootFilesIn
	SyntaxRelGlob
	SyntaxGlob
	SyntaxRootGlob
	SyntaxInclude
	SyntaxSubInclude
)

func (s Syntax) String() string {
	switch s {
	case SyntaxRelRegexp:
		return "relre"
	case SyntaxRegexp:
		return "re"
	case SyntaxPath:
		return "path"
	case SyntaxRelPath:
		return "relpath"
	case SyntaxFilePath:
		return "filepath"
	case SyntaxRootFilesIn:
		return "rootfilesin"
	case SyntaxRelGlob:
		return "relglob"
	case SyntaxGlob:
		return "glob"
	case SyntaxRootGlob:
		return "rootglob"
	case SyntaxInclude:
		return "include"
	case SyntaxSubInclude:
		return "subinclude"
	default:
		return "unknown"
	}
}

// syntaxPrefixes are the line prefixes that select a one-off syntax for a
// single pattern line. "listfile:"/"listfile0:" are deliberately absent:
// see ReadPatternList in patternlist.go.
var syntaxPrefixes = map[string]Syntax{
	"re:":          SyntaxRegexp,
	"regexp:":      SyntaxRegexp,
	"path:":        SyntaxPath,
	"filepath:":    SyntaxFilePath,
	"relpath:":     SyntaxRelPath,
	"rootfilesin:": SyntaxRootFilesIn,
	"relglob:":     SyntaxRelGlob,
	"relre:":       SyntaxRelRegexp,
	"glob:":        SyntaxGlob,
	"rootglob:":    SyntaxRootGlob,
	"include:":     SyntaxInclude,
	"subinclude:":  SyntaxSubInclude,
}

// syntaxByName are the names accepted after a "syntax:" directive, which
// sets the default for subsequent unprefixed lines.
var syntaxByName = map[string]Syntax{
	"re":          SyntaxRegexp,
	"regexp":      SyntaxRegexp,
	"path":        SyntaxPath,
	"filepath":    SyntaxFilePath,
	"relpath":     SyntaxRelPath,
	"rootfilesin": SyntaxRootFilesIn,
	"relglob":     SyntaxRelGlob,
	"relre":       SyntaxRelRegexp,
	"glob":        SyntaxGlob,
	"rootglob":    SyntaxRootGlob,
}

// Pattern is one parsed, not-yet-compiled pattern line.
type Pattern struct {
	Syntax Syntax
	Text   string
	Source string // "<file>:<line>", for diagnostics
}

// stripComment trims everything from an unescaped "#" to end of line,
// unescaping "\#" to a literal "#" in the retained portion.
func stripComment(line string) string {
	var b strings.Builder
	i := 0
	for i < len(line) {
		if line[i] == '\\' && i+1 < len(line) && line[i+1] == '#' {
			b.WriteByte('#')
			i += 2
			continue
		}
		if line[i] == '#' {
			break
		}
		b.WriteByte(line[i])
		i++
	}
	return b.String()
}

// ParsePatternLines parses one pattern file's contents, honoring comments,
// "syntax:" directives, and per-line syntax prefixes. It never fails:
// malformed lines become warnings, not errors.
func ParsePatternLines(data []byte, sourceName string, defaultSyntax Syntax) ([]Pattern, []Warning) {
	var patterns []Pattern
	var warnings []Warning
	cur := defaultSyntax
	for i, raw := range strings.Split(string(data), "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(line, "syntax:"); ok {
			name := strings.TrimSpace(rest)
			if syn, ok := syntaxByName[name]; ok {
				cur = syn
			} else {
				warnings = append(warnings, Warning{File: sourceName, Line: lineNo, Message: fmt.Sprintf("unknown syntax %q, keeping %s", name, cur)})
			}
			continue
		}
		syn := cur
		text := line
		for prefix, s := range syntaxPrefixes {
			if rest, ok := strings.CutPrefix(line, prefix); ok {
				syn, text = s, rest
				break
			}
		}
		patterns = append(patterns, Pattern{Syntax: syn, Text: text, Source: fmt.Sprintf("%s:%d", sourceName, lineNo)})
	}
	return patterns, warnings
}

// inlineRegexFlags matches a leading Go/PCRE inline flag group such as
// "(?ia)", stopping short of a named or non-capturing group ("(?:" / "(?P").
var inlineRegexFlags = regexp.MustCompile(`^\(\?[a-zA-Z]+\)`)

// relRegexpSource implements the RelRegexp synthesis rule.
func relRegexpSource(pattern string) string {
	if strings.HasPrefix(pattern, "^") || strings.HasPrefix(pattern, "*") || strings.HasPrefix(pattern, ".*") {
		return pattern
	}
	if m := inlineRegexFlags.FindString(pattern); m != "" {
		rest := pattern[len(m):]
		prefix := ".*"
		if strings.HasPrefix(rest, "^") || strings.HasPrefix(rest, "*") || strings.HasPrefix(rest, ".*") {
			prefix = ""
		}
		return m[:len(m)-1] + ":" + prefix + rest + ")"
	}
	return ".*" + pattern
}

// CompiledPattern is a pattern ready to test paths against: either a regex,
// or (FilePath, and the RootGlob literal shortcut) a plain literal compared
// directly with no regex engine involved.
type CompiledPattern struct {
	Syntax  Syntax
	Source  string
	Literal string
	Regex   *regexp.Regexp
}

// Matches reports whether path satisfies the compiled pattern. A regex must
// match starting at the beginning of path.
func (c CompiledPattern) Matches(path string) bool {
	if c.Regex == nil {
		return path == c.Literal
	}
	loc := c.Regex.FindStringIndex(path)
	return loc != nil && loc[0] == 0
}

// DefaultGlobSuffix is the suffix glob-derived syntaxes append so that a
// glob matching a directory also matches everything inside it.
const DefaultGlobSuffix = `(?:/|$)`

// Compile synthesizes and compiles the regex (or literal shortcut) for p,
// per the translation rules for its Syntax. Include and SubInclude must
// already have been expanded by ExpandPatternFile; compiling one directly
// is a programmer error reported via ErrPattern.
func Compile(p Pattern, globSuffix string) (CompiledPattern, error) {
	out := CompiledPattern{Syntax: p.Syntax, Source: p.Text}
	switch p.Syntax {
	case SyntaxInclude, SyntaxSubInclude:
		return CompiledPattern{}, fmt.Errorf("dirstate: %w: %s pattern must be expanded before compiling", ErrPattern, p.Syntax)
	case SyntaxFilePath:
		out.Literal = p.Text
		return out, nil
	case SyntaxRegexp:
		return compileRegex(out, p.Text)
	case SyntaxRelRegexp:
		return compileRegex(out, relRegexpSource(p.Text))
	case SyntaxPath, SyntaxRelPath:
		text := normalizePath(p.Text)
		if text == "." {
			return compileRegex(out, "")
		}
		return compileRegex(out, escapeLiteral(text)+`(?:/|$)`)
	case SyntaxRootFilesIn:
		text := normalizePath(p.Text)
		if text == "." {
			return compileRegex(out, `[^/]+$`)
		}
		return compileRegex(out, escapeLiteral(text)+`/[^/]+$`)
	case SyntaxRelGlob:
		text := normalizePath(p.Text)
		glob := globToRegex(text)
		if strings.HasPrefix(glob, "[^/]*") {
			return compileRegex(out, ".*"+glob[len("[^/]*"):]+globSuffix)
		}
		return compileRegex(out, "(?:.*/)?"+glob+globSuffix)
	case SyntaxGlob:
		return compileRegex(out, globToRegex(p.Text)+globSuffix)
	case SyntaxRootGlob:
		text := normalizePath(p.Text)
		if isLiteralGlob(text) {
			out.Literal = text
			return out, nil
		}
		return compileRegex(out, globToRegex(text)+globSuffix)
	default:
		return CompiledPattern{}, fmt.Errorf("dirstate: %w: unknown syntax %d", ErrPattern, p.Syntax)
	}
}

func compileRegex(out CompiledPattern, src string) (CompiledPattern, error) {
	re, err := regexp.Compile(src)
	if err != nil {
		return CompiledPattern{}, fmt.Errorf("dirstate: %w: %v", ErrPattern, err)
	}
	out.Regex = re
	return out, nil
}
