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
	"os"
	"path/filepath"
)

// docketFileName is the fixed name of the small header file; the data blob
// it points to is named by Docket.DataFileName.
const docketFileName = "dirstate"

// Container is an opened dirstate v2 docket plus its mapped data blob.
// Readers hold the mapping for the lifetime of any Tree obtained from it:
// the tree's nodes borrow path and copy-source bytes directly out of the
// blob, so Close must not be called while a Tree from this Container is
// still in use.
type Container struct {
	dir    string
	docket Docket
	blob   []byte
	closer func() error
}

// Open reads the docket and mmaps its data blob from dir.
func Open(dir string) (*Container, error) {
	raw, err := os.ReadFile(filepath.Join(dir, docketFileName))
	if err != nil {
		return nil, fmt.Errorf("dirstate: read docket: %w", err)
	}
	docket, err := DecodeDocket(raw)
	if err != nil {
		return nil, err
	}
	var blob []byte
	var closer func() error
	if docket.DataSize > 0 {
		blob, closer, err = mmapReadOnly(filepath.Join(dir, docket.DataFileName()))
		if err != nil {
			return nil, err
		}
	} else {
		closer = func() error { return nil }
	}
	if uint32(len(blob)) < docket.DataSize {
		closer()
		return nil, fmt.Errorf("dirstate: %w: data file shorter (%d) than docket declares (%d)", ErrCorruptedContainer, len(blob), docket.DataSize)
	}
	return &Container{dir: dir, docket: docket, blob: blob, closer: closer}, nil
}

// Close unmaps the data blob. Any Tree obtained from this Container must not
// be used afterwards.
func (c *Container) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

// Docket returns the currently loaded docket.
func (c *Container) Docket() Docket { return c.docket }

// Tree decodes the top-level entries of the container's tree. Deeper levels
// are decoded lazily as TreeNode.Children is called.
func (c *Container) Tree() (*Tree, error) {
	t := &Tree{
		blob:                     c.blob,
		rootOrig:                 &c.docket.Tree.RootChildren,
		nodesWithEntryCount:      c.docket.Tree.NodesWithEntryCount,
		nodesWithCopySourceCount: c.docket.Tree.NodesWithCopySourceCount,
	}
	kids, err := decodeChildren(c.blob, c.docket.Tree.RootChildren)
	if err != nil {
		return nil, err
	}
	t.root = kids
	return t, nil
}

// WriteShouldAppend is the policy hook spec.md leaves to the caller: given
// how many bytes of the current data blob the docket already records as
// unreachable versus how large the blob is, decide whether an append is
// worth it over a full rewrite. This default policy appends while those
// unreachable bytes make up less than a third of the current blob (an empty
// blob always reports true), without hard-coding a single universal
// threshold into the container format itself.
func (c *Container) WriteShouldAppend() bool {
	if c.docket.DataSize == 0 {
		return true
	}
	return c.docket.Tree.UnreachableBytes*3 < c.docket.DataSize
}

// WriteOptions carries the docket fields a write needs that aren't derived
// from the tree itself.
type WriteOptions struct {
	Parent1            ParentID
	Parent2            ParentID
	IgnorePatternsHash [parentIDSize]byte
	// CanAppend is the hint from spec.md §4.C step 1: append is permitted
	// only when this holds AND WriteShouldAppend agrees.
	CanAppend bool
}

// Write serializes tree, appending to the existing data blob when it is
// non-empty and CanAppend and WriteShouldAppend both allow it, or performing a full
// rewrite under a fresh UUID otherwise. It publishes the result by writing
// a new docket to a temp file and renaming it over the old one, so readers
// never observe a half-written docket.
func (c *Container) Write(tree *Tree, opts WriteOptions) (Docket, error) {
	appendMode := opts.CanAppend && c.docket.DataSize > 0 && c.WriteShouldAppend()

	var uuid string
	var dataPath string
	var baseOffset uint32
	var orphanedBefore uint32
	if appendMode {
		uuid = c.docket.UUID
		dataPath = filepath.Join(c.dir, c.docket.DataFileName())
		baseOffset = c.docket.DataSize
		orphanedBefore = c.docket.Tree.UnreachableBytes
	} else {
		uuid = NewUUID()
		dataPath = filepath.Join(c.dir, "dirstate."+uuid)
	}

	tail, rootRef, orphaned, err := serializeTree(tree, appendMode, baseOffset)
	if err != nil {
		return Docket{}, err
	}

	if appendMode {
		f, err := os.OpenFile(dataPath, os.O_WRONLY, 0o644)
		if err != nil {
			return Docket{}, fmt.Errorf("dirstate: open data file for append: %w", err)
		}
		defer f.Close()
		if _, err := f.WriteAt(tail, int64(baseOffset)); err != nil {
			return Docket{}, fmt.Errorf("dirstate: append data file: %w", err)
		}
	} else {
		if err := os.WriteFile(dataPath, tail, 0o644); err != nil {
			return Docket{}, fmt.Errorf("dirstate: write data file: %w", err)
		}
		orphanedBefore = 0
	}

	newDocket := Docket{
		Parent1: opts.Parent1,
		Parent2: opts.Parent2,
		Tree: TreeMetadata{
			RootChildren:             rootRef,
			NodesWithEntryCount:      tree.nodesWithEntryCount,
			NodesWithCopySourceCount: tree.nodesWithCopySourceCount,
			UnreachableBytes:         orphanedBefore + orphaned,
			WriteCount:               c.docket.Tree.WriteCount + 1,
			IgnorePatternsHash:       opts.IgnorePatternsHash,
		},
		DataSize: baseOffset + uint32(len(tail)),
		UUID:     uuid,
	}

	raw, err := EncodeDocket(newDocket)
	if err != nil {
		return Docket{}, err
	}
	tmp := filepath.Join(c.dir, docketFileName+".tmp")
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return Docket{}, fmt.Errorf("dirstate: write docket temp file: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(c.dir, docketFileName)); err != nil {
		return Docket{}, fmt.Errorf("dirstate: publish docket: %w", err)
	}
	return newDocket, nil
}

// CreateEmpty initializes a brand new, empty container in dir: a docket
// with a zero-length data blob and no tree. WriteShouldAppend won't be
// asked to consider appending until a first Write has produced some data.
func CreateEmpty(dir string, parent1, parent2 ParentID) (*Container, error) {
	docket := Docket{Parent1: parent1, Parent2: parent2, UUID: NewUUID()}
	raw, err := EncodeDocket(docket)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, docketFileName), raw, 0o644); err != nil {
		return nil, fmt.Errorf("dirstate: write initial docket: %w", err)
	}
	return &Container{dir: dir, docket: docket, closer: func() error { return nil }}, nil
}
