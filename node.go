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
	"sort"
)

// TreeNode is one node of the in-memory dirstate tree: a full path, the
// index within that path where its own base name starts (so a child's full
// path and its parent's prefix can share the same backing array), an
// optional copy-source path, an optional Entry, and its children sorted by
// base name.
//
// A node backed by an on-disk container defers decoding its children until
// Children is first called, per the container's "read on demand" design;
// a node built purely in memory (via Tree.Set in tree.go) has its children
// eagerly available.
type TreeNode struct {
	fullPath      []byte
	baseNameStart uint16
	copySource    []byte
	entry         *Entry

	children       []*TreeNode
	childrenLoaded bool

	descendantsWithEntryCount uint32
	trackedDescendantsCount   uint32

	// On-disk provenance, used by the writer to decide what can be reused
	// unchanged versus what must be freshly emitted. nil/zero for nodes
	// that were never read from (or have been modified since) a container.
	blob          []byte
	pathOrig      *pathRef
	pathChanged   bool
	copySrcOrig   *pathRef
	copySrcChged  bool
	childrenOrig  *childrenRef
	childrenDirty bool
}

// FullPath returns the node's complete slash-separated path.
func (n *TreeNode) FullPath() []byte { return n.fullPath }

// BaseName returns just this node's own path component.
func (n *TreeNode) BaseName() []byte { return n.fullPath[n.baseNameStart:] }

// CopySource returns the optional copy/rename source path, or nil.
func (n *TreeNode) CopySource() []byte { return n.copySource }

// Entry returns the node's leaf content, or nil if this is an intermediate
// directory (or a cached-mtime placeholder) with no entry of its own.
func (n *TreeNode) Entry() *Entry { return n.entry }

// DescendantsWithEntryCount returns the cached count of descendants (not
// including this node) that carry an Entry.
func (n *TreeNode) DescendantsWithEntryCount() uint32 { return n.descendantsWithEntryCount }

// TrackedDescendantsCount returns the cached count of descendants tracked
// in the working directory.
func (n *TreeNode) TrackedDescendantsCount() uint32 { return n.trackedDescendantsCount }

// Children returns the node's children, sorted ascending by base name,
// decoding them from the backing data blob on first access if necessary.
func (n *TreeNode) Children() ([]*TreeNode, error) {
	if n.childrenLoaded {
		return n.children, nil
	}
	kids, err := decodeChildren(n.blob, *n.childrenOrig)
	if err != nil {
		return nil, err
	}
	n.children = kids
	n.childrenLoaded = true
	return n.children, nil
}

func decodeChildren(blob []byte, ref childrenRef) ([]*TreeNode, error) {
	out := make([]*TreeNode, ref.count)
	for i := uint32(0); i < ref.count; i++ {
		rec, err := decodeNodeRecord(blob, ref.offset+i*nodeRecordSize)
		if err != nil {
			return nil, err
		}
		node, err := nodeFromRecord(blob, rec)
		if err != nil {
			return nil, err
		}
		if i > 0 && bytes.Compare(out[i-1].BaseName(), node.BaseName()) >= 0 {
			return nil, fmt.Errorf("dirstate: %w: children not strictly ascending at index %d", ErrCorruptedContainer, i)
		}
		out[i] = node
	}
	return out, nil
}

func nodeFromRecord(blob []byte, rec nodeRecord) (*TreeNode, error) {
	n := &TreeNode{
		baseNameStart: rec.baseNameStart,
		blob:          blob,
		pathOrig:      &rec.fullPath,
		childrenOrig:  &rec.children,
	}
	if rec.fullPath.present() {
		n.fullPath = blob[rec.fullPath.offset : rec.fullPath.offset+uint32(rec.fullPath.length)]
	}
	if rec.copySource.present() {
		cs := rec.copySource
		n.copySrcOrig = &cs
		n.copySource = blob[cs.offset : cs.offset+uint32(cs.length)]
	}
	n.entry = rec.toEntry()
	n.descendantsWithEntryCount = rec.descendantsWithEntryCount
	n.trackedDescendantsCount = rec.trackedDescendantsCount
	return n, nil
}

func findChildIndex(children []*TreeNode, baseName []byte) (int, bool) {
	i := sort.Search(len(children), func(i int) bool {
		return bytes.Compare(children[i].BaseName(), baseName) >= 0
	})
	if i < len(children) && bytes.Equal(children[i].BaseName(), baseName) {
		return i, true
	}
	return i, false
}

func insertChildAt(children []*TreeNode, idx int, node *TreeNode) []*TreeNode {
	children = append(children, nil)
	copy(children[idx+1:], children[idx:])
	children[idx] = node
	return children
}

func removeChildAt(children []*TreeNode, idx int) []*TreeNode {
	copy(children[idx:], children[idx+1:])
	return children[:len(children)-1]
}

type pathComponent struct {
	start, end int
}

// splitPathComponents finds the (start,end) byte range of each '/'-
// separated component of path, where end is cumulative (so path[:end] is
// the full path of the node at that depth, and the final component's end
// equals len(path)). Components share the path slice's backing array, so
// every ancestor node's FullPath is a sub-slice of the same allocation.
func splitPathComponents(path []byte) ([]pathComponent, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("dirstate: empty path")
	}
	if len(path) > maxPathLen {
		return nil, fmt.Errorf("dirstate: %w: path exceeds %d bytes", ErrUnsupportedFeature, maxPathLen)
	}
	var comps []pathComponent
	start := 0
	for i := 0; i <= len(path); i++ {
		if i == len(path) || path[i] == '/' {
			if i == start {
				return nil, fmt.Errorf("dirstate: empty path component in %q", path)
			}
			comps = append(comps, pathComponent{start: start, end: i})
			start = i + 1
		}
	}
	return comps, nil
}
