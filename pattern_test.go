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

import "testing"

func TestGlobToRegex_Semantics(t *testing.T) {
	cases := []struct{ pattern, want string }{
		{"*", "[^/]*"},
		{"**", ".*"},
		{"**/a", "(?:.*/)?a"},
		{"a/**/b", "a/(?:.*/)?b"},
		{"[a*?!^][^b][!c]", `[a*?!^][\^b][^c]`},
		{"{a,b}", "(?:a|b)"},
		{`.\*\?`, `\.\*\?`},
	}
	for _, c := range cases {
		if got := globToRegex(c.pattern); got != c.want {
			t.Errorf("globToRegex(%q) = %q, want %q", c.pattern, got, c.want)
		}
	}
}

func TestCompile_RelGlob(t *testing.T) {
	p := Pattern{Syntax: SyntaxRelGlob, Text: "rust/target/"}
	cp, err := Compile(p, DefaultGlobSuffix)
	if err != nil {
		t.Fatal(err)
	}
	want := `(?:.*/)?rust/target(?:/|$)`
	if cp.Regex == nil || cp.Regex.String() != want {
		t.Fatalf("got %v, want %q", cp.Regex, want)
	}
}

func TestCompile_RootGlob_LiteralShortcut(t *testing.T) {
	p := Pattern{Syntax: SyntaxRootGlob, Text: "whatever"}
	cp, err := Compile(p, DefaultGlobSuffix)
	if err != nil {
		t.Fatal(err)
	}
	if cp.Regex != nil {
		t.Fatalf("expected no regex for a literal RootGlob, got %v", cp.Regex)
	}
	if cp.Literal != "whatever" {
		t.Fatalf("Literal = %q, want whatever", cp.Literal)
	}
	if !cp.Matches("whatever") || cp.Matches("whatever2") {
		t.Fatal("literal shortcut should match exactly")
	}
}

func TestRelRegexpSource_InlineFlags(t *testing.T) {
	// Checks the synthesis rule itself (the shape of the generated source),
	// independent of whether the particular inline flag letter is one Go's
	// RE2 engine accepts: the spec's example flag group is not guaranteed
	// to compile under every regex engine, only to be synthesized this way.
	got := relRegexpSource("(?ia)ba{2}r")
	want := "(?ia:.*ba{2}r)"
	if got != want {
		t.Fatalf("relRegexpSource(%q) = %q, want %q", "(?ia)ba{2}r", got, want)
	}
}

func TestRelRegexpSource_LeadingAnchorPassesThrough(t *testing.T) {
	for _, p := range []string{"^foo", "*.go", ".*bar"} {
		if got := relRegexpSource(p); got != p {
			t.Errorf("relRegexpSource(%q) = %q, want unchanged", p, got)
		}
	}
}

func TestCompile_RelRegexp_PrependsDotStar(t *testing.T) {
	cp, err := Compile(Pattern{Syntax: SyntaxRelRegexp, Text: "ba{2}r"}, DefaultGlobSuffix)
	if err != nil {
		t.Fatal(err)
	}
	want := ".*ba{2}r"
	if cp.Regex == nil || cp.Regex.String() != want {
		t.Fatalf("got %v, want %q", cp.Regex, want)
	}
}

func TestCompile_IncludeIsProgrammerError(t *testing.T) {
	p := Pattern{Syntax: SyntaxInclude, Text: "foo"}
	if _, err := Compile(p, DefaultGlobSuffix); err == nil {
		t.Fatal("expected an error compiling an un-expanded include pattern")
	}
}

func TestCompile_Path(t *testing.T) {
	cp, err := Compile(Pattern{Syntax: SyntaxPath, Text: "a/b"}, DefaultGlobSuffix)
	if err != nil {
		t.Fatal(err)
	}
	if !cp.Matches("a/b") || !cp.Matches("a/b/c") || cp.Matches("a/bc") {
		t.Fatalf("Path pattern matched incorrectly")
	}
}

func TestCompile_RootFilesIn(t *testing.T) {
	cp, err := Compile(Pattern{Syntax: SyntaxRootFilesIn, Text: "."}, DefaultGlobSuffix)
	if err != nil {
		t.Fatal(err)
	}
	if !cp.Matches("file.txt") || cp.Matches("dir/file.txt") {
		t.Fatal("RootFilesIn '.' should match only top-level files")
	}
}

func TestParsePatternLines_CommentsAndSyntax(t *testing.T) {
	data := []byte("# full comment\n" +
		"syntax: glob\n" +
		"*.o\n" +
		"foo\\#bar # trailing comment\n" +
		"\n" +
		"syntax: bogus\n" +
		"baz\n")
	patterns, warnings := ParsePatternLines(data, "test", SyntaxRelRegexp)
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning for unknown syntax, got %d: %v", len(warnings), warnings)
	}
	if len(patterns) != 3 {
		t.Fatalf("expected 3 patterns, got %d: %+v", len(patterns), patterns)
	}
	if patterns[0].Syntax != SyntaxGlob || patterns[0].Text != "*.o" {
		t.Errorf("pattern 0 = %+v", patterns[0])
	}
	if patterns[1].Text != "foo#bar" {
		t.Errorf("pattern 1 text = %q, want foo#bar (unescaped)", patterns[1].Text)
	}
	// "baz" keeps the last known-good syntax (glob), since "bogus" didn't
	// parse and a warning was recorded instead of switching.
	if patterns[2].Syntax != SyntaxGlob || patterns[2].Text != "baz" {
		t.Errorf("pattern 2 = %+v", patterns[2])
	}
}

func TestParsePatternLines_SyntaxPrefixOverridesDefault(t *testing.T) {
	patterns, _ := ParsePatternLines([]byte("re:^foo$\n"), "test", SyntaxRelGlob)
	if len(patterns) != 1 || patterns[0].Syntax != SyntaxRegexp || patterns[0].Text != "^foo$" {
		t.Fatalf("got %+v", patterns)
	}
}

func TestNormalizePath_Idempotent(t *testing.T) {
	cases := []string{
		"a/b/c",
		"a//b",
		"./a/b",
		"a/../b",
		"../a",
		"/a/../../b",
		"//a/b",
		"///a/b",
		".",
		"",
		"a/./b/../c",
	}
	for _, p := range cases {
		n1 := normalizePath(p)
		n2 := normalizePath(n1)
		if n1 != n2 {
			t.Errorf("normalizePath(%q) = %q, but normalizePath(%q) = %q (not idempotent)", p, n1, n1, n2)
		}
	}
}

func TestNormalizePath_Cases(t *testing.T) {
	cases := []struct{ in, want string }{
		{"a//b", "a/b"},
		{"./a/b", "a/b"},
		{"a/../b", "b"},
		{"../a", "../a"},
		{"/a/../../b", "/b"},
		{"//a/b", "//a/b"},
		{"///a/b", "/a/b"},
		{"", "."},
		{".", "."},
	}
	for _, c := range cases {
		if got := normalizePath(c.in); got != c.want {
			t.Errorf("normalizePath(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
