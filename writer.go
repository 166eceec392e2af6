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

// treeWriter accumulates the bytes a Write appends (or, in rewrite mode,
// the entire contents of a fresh data file) and tracks how many bytes of
// the blob it appended to became unreachable along the way.
type treeWriter struct {
	appendMode bool
	baseOffset uint32
	tail       []byte
	orphaned   uint32
}

func (w *treeWriter) nextOffset() uint32 { return w.baseOffset + uint32(len(w.tail)) }

func (w *treeWriter) appendBytes(b []byte) pathRef {
	ref := pathRef{offset: w.nextOffset(), length: uint16(len(b))}
	w.tail = append(w.tail, b...)
	return ref
}

// resolvePath returns where n's full path lives in the output: its
// existing on-disk location if it is unchanged and we're appending, or a
// freshly written copy otherwise. Offsets from a prior data file are never
// reused across a rewrite, since a rewrite starts a brand new file.
func (w *treeWriter) resolvePath(n *TreeNode) pathRef {
	if w.appendMode && n.pathOrig != nil && !n.pathChanged {
		return *n.pathOrig
	}
	return w.appendBytes(n.fullPath)
}

func (w *treeWriter) resolveCopySource(n *TreeNode) pathRef {
	if len(n.copySource) == 0 {
		return pathRef{}
	}
	if w.appendMode && n.copySrcOrig != nil && !n.copySrcChged {
		return *n.copySrcOrig
	}
	return w.appendBytes(n.copySource)
}

// encodeNode serializes n's subtree, recursing into its children only when
// something under it actually changed. When appending, an untouched subtree
// is left alone entirely: its children array is reused by offset and its cached
// aggregate counts are trusted without decoding a single byte of it, which
// is what lets a write that touches one file stay cheap in a large tree.
func (w *treeWriter) encodeNode(n *TreeNode) (nodeRecord, error) {
	pathOut := w.resolvePath(n)
	copySrcOut := w.resolveCopySource(n)

	needsFreshChildren := !w.appendMode || n.childrenDirty || n.childrenOrig == nil

	var childrenOut childrenRef
	var descendantsWithEntryCount, trackedDescendantsCount uint32
	if !needsFreshChildren {
		childrenOut = *n.childrenOrig
		descendantsWithEntryCount = n.descendantsWithEntryCount
		trackedDescendantsCount = n.trackedDescendantsCount
	} else {
		kids, err := n.Children()
		if err != nil {
			return nodeRecord{}, err
		}
		childRecs := make([]nodeRecord, len(kids))
		for i, k := range kids {
			rec, err := w.encodeNode(k)
			if err != nil {
				return nodeRecord{}, err
			}
			childRecs[i] = rec
			if k.entry != nil {
				descendantsWithEntryCount++
				if k.entry.Tracked() {
					trackedDescendantsCount++
				}
			}
			descendantsWithEntryCount += rec.descendantsWithEntryCount
			trackedDescendantsCount += rec.trackedDescendantsCount
		}
		if w.appendMode && n.childrenOrig != nil {
			w.orphaned += n.childrenOrig.count * nodeRecordSize
		}
		childrenOut = w.appendRecords(childRecs)
	}

	n.descendantsWithEntryCount = descendantsWithEntryCount
	n.trackedDescendantsCount = trackedDescendantsCount

	flags, data := entryToFlagsAndData(n.entry)
	return nodeRecord{
		fullPath:                  pathOut,
		baseNameStart:             n.baseNameStart,
		copySource:                copySrcOut,
		children:                  childrenOut,
		descendantsWithEntryCount: descendantsWithEntryCount,
		trackedDescendantsCount:   trackedDescendantsCount,
		flags:                     flags,
		data:                      data,
	}, nil
}

func (w *treeWriter) appendRecords(recs []nodeRecord) childrenRef {
	ref := childrenRef{offset: w.nextOffset(), count: uint32(len(recs))}
	for _, rec := range recs {
		w.tail = append(w.tail, rec.encode()...)
	}
	return ref
}

// serializeTree produces the bytes a Write needs to append (or, in rewrite
// mode, the entire new data file), the resulting root childrenRef, and how
// many additional bytes of the existing blob this write orphaned.
func serializeTree(tree *Tree, appendMode bool, baseOffset uint32) (tail []byte, root childrenRef, orphaned uint32, err error) {
	w := &treeWriter{appendMode: appendMode, baseOffset: baseOffset}

	needsFreshRoot := !appendMode || tree.rootDirty || tree.rootOrig == nil
	if !needsFreshRoot {
		return nil, *tree.rootOrig, 0, nil
	}

	childRecs := make([]nodeRecord, len(tree.root))
	for i, k := range tree.root {
		rec, err := w.encodeNode(k)
		if err != nil {
			return nil, childrenRef{}, 0, err
		}
		childRecs[i] = rec
	}
	if appendMode && tree.rootOrig != nil {
		w.orphaned += tree.rootOrig.count * nodeRecordSize
	}
	root = w.appendRecords(childRecs)
	return w.tail, root, w.orphaned, nil
}
