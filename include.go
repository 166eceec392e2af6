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
	"path/filepath"
)

// ExpandedSubInclude is what a "subinclude:" line turns into once its file
// has been read: the patterns inside it apply only to paths under Prefix,
// so a status walker can test a single prefix before consulting
// InnerPatterns at all.
type ExpandedSubInclude struct {
	// Prefix is the subinclude file's containing directory relative to
	// the repository root, with a trailing slash, or "" if that directory
	// is the repository root itself.
	Prefix        string
	Path          string
	Root          string
	InnerPatterns []Pattern
}

// ExpandPatternFile reads path (a file path under root, passed to fr as
// given; subinclude prefixes are computed relative to root) and recursively inlines
// "include:" patterns, replacing "subinclude:" patterns with an
// ExpandedSubInclude rather than inlining them: their patterns match only
// below Prefix. Failures reading a file become warnings, not errors, so one
// missing include doesn't abort the whole pattern set.
func ExpandPatternFile(fr FileReader, path, root string, defaultSyntax Syntax) ([]Pattern, []ExpandedSubInclude, []Warning) {
	data, err := fr.ReadFile(path)
	if err != nil {
		return nil, nil, []Warning{{File: path, Message: fmt.Sprintf("cannot read: %v", err)}}
	}

	raw, warnings := ParsePatternLines(data, path, defaultSyntax)
	var patterns []Pattern
	var subincludes []ExpandedSubInclude
	for _, p := range raw {
		switch p.Syntax {
		case SyntaxInclude:
			incPath := resolveIncludePath(path, p.Text)
			incPatterns, incSub, incWarn := ExpandPatternFile(fr, incPath, root, defaultSyntax)
			warnings = append(warnings, incWarn...)
			patterns = append(patterns, incPatterns...)
			subincludes = append(subincludes, incSub...)
		case SyntaxSubInclude:
			subPath := resolveIncludePath(path, p.Text)
			innerPatterns, innerSub, innerWarn := ExpandPatternFile(fr, subPath, root, defaultSyntax)
			warnings = append(warnings, innerWarn...)
			subincludes = append(subincludes, ExpandedSubInclude{
				Prefix:        subIncludePrefix(subPath, root),
				Path:          subPath,
				Root:          root,
				InnerPatterns: innerPatterns,
			})
			subincludes = append(subincludes, innerSub...)
		default:
			patterns = append(patterns, p)
		}
	}
	return patterns, subincludes, warnings
}

// resolveIncludePath resolves an include/subinclude reference relative to
// the file it appeared in.
func resolveIncludePath(containingFile, ref string) string {
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(filepath.Dir(containingFile), ref)
}

// subIncludePrefix computes a subinclude's path prefix: its containing
// directory relative to root, with a trailing slash, or "" at the root
// itself.
func subIncludePrefix(subPath, root string) string {
	dir := filepath.Dir(subPath)
	rel, err := filepath.Rel(root, dir)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel) + "/"
}
