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
	"testing"
)

// memFS is a minimal in-memory FileReader for testing include expansion.
type memFS map[string][]byte

func (m memFS) ReadFile(path string) ([]byte, error) {
	b, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("no such file: %s", path)
	}
	return b, nil
}

func TestExpandPatternFile_Include(t *testing.T) {
	fs := memFS{
		"/repo/.hgignore":        []byte("glob:*.o\ninclude:sub/more\n"),
		"/repo/sub/more":         []byte("glob:*.pyc\n"),
	}
	patterns, subs, warnings := ExpandPatternFile(fs, "/repo/.hgignore", "/repo", SyntaxRelRegexp)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(subs) != 0 {
		t.Fatalf("unexpected subincludes: %v", subs)
	}
	if len(patterns) != 2 {
		t.Fatalf("expected 2 patterns after include expansion, got %d: %+v", len(patterns), patterns)
	}
	if patterns[0].Text != "*.o" || patterns[1].Text != "*.pyc" {
		t.Fatalf("got %+v", patterns)
	}
}

func TestExpandPatternFile_SubInclude(t *testing.T) {
	fs := memFS{
		"/repo/.hgignore":          []byte("glob:*.o\nsubinclude:vendor/sub/.hgignore\n"),
		"/repo/vendor/sub/.hgignore": []byte("glob:*.tmp\n"),
	}
	patterns, subs, warnings := ExpandPatternFile(fs, "/repo/.hgignore", "/repo", SyntaxRelRegexp)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(patterns) != 1 || patterns[0].Text != "*.o" {
		t.Fatalf("subinclude patterns should not be inlined into the top-level set, got %+v", patterns)
	}
	if len(subs) != 1 {
		t.Fatalf("expected exactly one expanded subinclude, got %d", len(subs))
	}
	if subs[0].Prefix != "vendor/sub/" {
		t.Fatalf("Prefix = %q, want vendor/sub/", subs[0].Prefix)
	}
	if len(subs[0].InnerPatterns) != 1 || subs[0].InnerPatterns[0].Text != "*.tmp" {
		t.Fatalf("inner patterns = %+v", subs[0].InnerPatterns)
	}
}

func TestExpandPatternFile_MissingIncludeIsWarning(t *testing.T) {
	fs := memFS{
		"/repo/.hgignore": []byte("include:does-not-exist\nglob:*.o\n"),
	}
	patterns, _, warnings := ExpandPatternFile(fs, "/repo/.hgignore", "/repo", SyntaxRelRegexp)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning for a missing include, got %d: %v", len(warnings), warnings)
	}
	if len(patterns) != 1 || patterns[0].Text != "*.o" {
		t.Fatalf("got %+v", patterns)
	}
}

func TestReadPatternList_NewlineAndNul(t *testing.T) {
	fs := memFS{
		"/list.txt": []byte("a\nb\r\nc\n"),
		"/list0":    []byte("x\x00y\x00z"),
	}
	lines, err := ReadPatternList(fs, "/list.txt", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != 3 || lines[0] != "a" || lines[1] != "b" || lines[2] != "c" {
		t.Fatalf("got %v", lines)
	}
	nul, err := ReadPatternList(fs, "/list0", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(nul) != 3 || nul[0] != "x" || nul[1] != "y" || nul[2] != "z" {
		t.Fatalf("got %v", nul)
	}
}
