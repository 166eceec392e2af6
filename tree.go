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

import "fmt"

// Tree is the in-memory dirstate tree: a sorted forest of top-level
// TreeNodes. There is no dedicated root TreeNode -- the top-level children
// slice plays that role, and its location is recorded directly in the
// container's TreeMetadata rather than inside any node record.
type Tree struct {
	blob []byte

	root              []*TreeNode
	rootOrig          *childrenRef
	rootDirty         bool

	nodesWithEntryCount      uint32
	nodesWithCopySourceCount uint32
}

// NewTree returns an empty, purely in-memory tree.
func NewTree() *Tree {
	return &Tree{rootDirty: true}
}

// Root returns the top-level nodes, sorted by base name.
func (t *Tree) Root() []*TreeNode { return t.root }

// NodesWithEntryCount returns the tree-wide count of nodes carrying an
// Entry, maintained incrementally as Set/Remove are called.
func (t *Tree) NodesWithEntryCount() uint32 { return t.nodesWithEntryCount }

// NodesWithCopySourceCount returns the tree-wide count of nodes carrying a
// copy source.
func (t *Tree) NodesWithCopySourceCount() uint32 { return t.nodesWithCopySourceCount }

// Lookup finds the node for path, if any.
func (t *Tree) Lookup(path []byte) (*TreeNode, error) {
	comps, err := splitPathComponents(path)
	if err != nil {
		return nil, err
	}
	siblings := t.root
	var node *TreeNode
	for _, c := range comps {
		idx, found := findChildIndex(siblings, path[c.start:c.end])
		if !found {
			return nil, nil
		}
		node = siblings[idx]
		if c.end != len(path) {
			siblings, err = node.Children()
			if err != nil {
				return nil, err
			}
		}
	}
	return node, nil
}

// descend walks (creating as needed) the chain of directory nodes for every
// component but the last, returning the parent slice the final component
// lives in. Every node walked through is marked as needing its children
// array rewritten, since the leaf this call is building or updating lives
// (directly or transitively) inside each of their children arrays.
func (t *Tree) descend(path []byte, comps []pathComponent) (*[]*TreeNode, error) {
	siblingsPtr := &t.root
	t.rootDirty = true
	for _, c := range comps[:len(comps)-1] {
		full := path[:c.end]
		base := full[c.start:c.end]
		idx, found := findChildIndex(*siblingsPtr, base)
		var node *TreeNode
		if found {
			node = (*siblingsPtr)[idx]
		} else {
			node = &TreeNode{fullPath: full, baseNameStart: uint16(c.start), childrenLoaded: true}
			*siblingsPtr = insertChildAt(*siblingsPtr, idx, node)
		}
		node.childrenDirty = true
		if _, err := node.Children(); err != nil {
			return nil, err
		}
		siblingsPtr = &node.children
	}
	return siblingsPtr, nil
}

// Set creates or updates the entry at path, creating intermediate directory
// nodes as needed.
func (t *Tree) Set(path []byte, e Entry) error {
	comps, err := splitPathComponents(path)
	if err != nil {
		return err
	}
	siblingsPtr, err := t.descend(path, comps)
	if err != nil {
		return err
	}
	last := comps[len(comps)-1]
	full := path[:last.end]
	base := full[last.start:last.end]
	idx, found := findChildIndex(*siblingsPtr, base)
	var node *TreeNode
	if found {
		node = (*siblingsPtr)[idx]
	} else {
		node = &TreeNode{fullPath: full, baseNameStart: uint16(last.start), childrenLoaded: true}
		*siblingsPtr = insertChildAt(*siblingsPtr, idx, node)
	}
	if node.entry == nil {
		t.nodesWithEntryCount++
	}
	ec := e
	node.entry = &ec
	node.pathChanged = node.pathChanged || !found
	node.childrenDirty = node.childrenDirty || !node.childrenLoaded
	return nil
}

// Remove clears the entry at path and deletes its node unless the node
// still has children. It reports whether a node existed at path. Empty
// intermediate directories left behind are pruned.
func (t *Tree) Remove(path []byte) (bool, error) {
	comps, err := splitPathComponents(path)
	if err != nil {
		return false, err
	}
	type frame struct {
		siblingsPtr *[]*TreeNode
		idx         int
		node        *TreeNode
	}
	var frames []frame
	siblingsPtr := &t.root
	for _, c := range comps {
		base := path[c.start:c.end]
		idx, found := findChildIndex(*siblingsPtr, base)
		if !found {
			return false, nil
		}
		node := (*siblingsPtr)[idx]
		frames = append(frames, frame{siblingsPtr: siblingsPtr, idx: idx, node: node})
		// Load children even for the leaf, so a node whose children are
		// still on disk is not mistaken for an empty one below.
		if _, err := node.Children(); err != nil {
			return false, err
		}
		siblingsPtr = &node.children
	}
	leaf := frames[len(frames)-1].node
	if leaf.entry != nil {
		t.nodesWithEntryCount--
		if len(leaf.copySource) > 0 {
			t.nodesWithCopySourceCount--
		}
	}
	leaf.entry = nil

	// Prune this node and any now-empty ancestor. Once an ancestor is kept
	// (it still has an entry or other children), pruning stops, but every
	// remaining ancestor above it still needs its children array rewritten
	// (the pruned child's removal changed that array's contents), so
	// dirtiness keeps propagating all the way to the root regardless.
	pruning := true
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		if pruning && f.node.entry == nil && len(f.node.children) == 0 {
			*f.siblingsPtr = removeChildAt(*f.siblingsPtr, f.idx)
			continue
		}
		pruning = false
		f.node.childrenDirty = true
	}
	t.rootDirty = true
	return true, nil
}

// SetCopySource records a copy/rename source for the node at path. The node
// must already exist; it is an error otherwise.
func (t *Tree) SetCopySource(path, source []byte) error {
	node, err := t.Lookup(path)
	if err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("dirstate: set copy source: %q not tracked", path)
	}
	if len(node.copySource) == 0 && len(source) > 0 {
		t.nodesWithCopySourceCount++
	}
	node.copySource = source
	node.copySrcChged = true
	t.markDirtyPath(path)
	return nil
}

// ClearCopySource removes the copy/rename source for the node at path, if
// any.
func (t *Tree) ClearCopySource(path []byte) error {
	node, err := t.Lookup(path)
	if err != nil {
		return err
	}
	if node == nil || len(node.copySource) == 0 {
		return nil
	}
	node.copySource = nil
	node.copySrcChged = true
	t.nodesWithCopySourceCount--
	t.markDirtyPath(path)
	return nil
}

// markDirtyPath marks every ancestor of path (and the root) dirty, without
// otherwise touching the tree. Used by mutations that change a leaf's
// payload but not the tree's shape.
func (t *Tree) markDirtyPath(path []byte) {
	comps, err := splitPathComponents(path)
	if err != nil {
		return
	}
	t.rootDirty = true
	siblings := t.root
	for _, c := range comps[:len(comps)-1] {
		idx, found := findChildIndex(siblings, path[c.start:c.end])
		if !found {
			return
		}
		node := siblings[idx]
		node.childrenDirty = true
		siblings = node.children
	}
}
