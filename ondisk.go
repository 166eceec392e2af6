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
	"encoding/binary"
	"fmt"
)

// nodeRecordSize is the fixed on-disk size of one tree node: see the field
// table in the container design. All multi-byte integers are big-endian.
const nodeRecordSize = 43

const (
	maxPathLen = 1<<16 - 1 // paths are at most 64 KiB (u16 length field)
)

// on-disk node flag bits. The first three match Flags exactly so an Entry's
// flags can be embedded directly into the low bits of the on-disk byte.
const (
	ndFlagWdirTracked    byte = 1 << 0
	ndFlagP1Tracked      byte = 1 << 1
	ndFlagP2Info         byte = 1 << 2
	ndFlagHasModeAndSize byte = 1 << 3
	ndFlagHasMtime       byte = 1 << 4
)

// pathRef locates a byte string (a full path or a copy source) inside the
// data blob. A zero-valued pathRef (offset 0, length 0) means absent.
type pathRef struct {
	offset uint32
	length uint16
}

func (r pathRef) present() bool { return r.length > 0 || r.offset != 0 }

// childrenRef locates a contiguous run of child node records inside the
// data blob. count is the number of 43-byte records, not a byte length.
type childrenRef struct {
	offset uint32
	count  uint32
}

// nodeRecord is the decoded form of one 43-byte on-disk node.
type nodeRecord struct {
	fullPath      pathRef
	baseNameStart uint16
	copySource    pathRef
	children      childrenRef

	descendantsWithEntryCount uint32
	trackedDescendantsCount  uint32

	flags byte
	data  [3]int32
}

// encode serializes the record into a freshly allocated 43-byte slice.
func (n nodeRecord) encode() []byte {
	b := make([]byte, nodeRecordSize)
	binary.BigEndian.PutUint32(b[0:4], n.fullPath.offset)
	binary.BigEndian.PutUint16(b[4:6], n.fullPath.length)
	binary.BigEndian.PutUint16(b[6:8], n.baseNameStart)
	binary.BigEndian.PutUint32(b[8:12], n.copySource.offset)
	binary.BigEndian.PutUint16(b[12:14], n.copySource.length)
	binary.BigEndian.PutUint32(b[14:18], n.children.offset)
	binary.BigEndian.PutUint32(b[18:22], n.children.count)
	binary.BigEndian.PutUint32(b[22:26], n.descendantsWithEntryCount)
	binary.BigEndian.PutUint32(b[26:30], n.trackedDescendantsCount)
	b[30] = n.flags
	binary.BigEndian.PutUint32(b[31:35], uint32(n.data[0]))
	binary.BigEndian.PutUint32(b[35:39], uint32(n.data[1]))
	binary.BigEndian.PutUint32(b[39:43], uint32(n.data[2]))
	return b
}

// decodeNodeRecord parses a 43-byte record starting at blob[off:] and
// validates that every offset/length it contains stays within blob. It does
// not recurse into children: callers dereference the children slice (and
// the path/copy-source bytes) only when they need them, per the container's
// on-demand read design.
func decodeNodeRecord(blob []byte, off uint32) (nodeRecord, error) {
	if uint64(off)+nodeRecordSize > uint64(len(blob)) {
		return nodeRecord{}, fmt.Errorf("dirstate: %w: node record at %d out of range (blob size %d)", ErrCorruptedContainer, off, len(blob))
	}
	b := blob[off : off+nodeRecordSize]
	var n nodeRecord
	n.fullPath.offset = binary.BigEndian.Uint32(b[0:4])
	n.fullPath.length = binary.BigEndian.Uint16(b[4:6])
	n.baseNameStart = binary.BigEndian.Uint16(b[6:8])
	n.copySource.offset = binary.BigEndian.Uint32(b[8:12])
	n.copySource.length = binary.BigEndian.Uint16(b[12:14])
	n.children.offset = binary.BigEndian.Uint32(b[14:18])
	n.children.count = binary.BigEndian.Uint32(b[18:22])
	n.descendantsWithEntryCount = binary.BigEndian.Uint32(b[22:26])
	n.trackedDescendantsCount = binary.BigEndian.Uint32(b[26:30])
	n.flags = b[30]
	n.data[0] = int32(binary.BigEndian.Uint32(b[31:35]))
	n.data[1] = int32(binary.BigEndian.Uint32(b[35:39]))
	n.data[2] = int32(binary.BigEndian.Uint32(b[39:43]))

	if err := checkByteRange(blob, n.fullPath.offset, uint32(n.fullPath.length)); err != nil {
		return nodeRecord{}, fmt.Errorf("dirstate: %w: full_path: %v", ErrCorruptedContainer, err)
	}
	if n.baseNameStart >= n.fullPath.length && n.fullPath.length != 0 {
		return nodeRecord{}, fmt.Errorf("dirstate: %w: base_name_start %d >= full_path length %d", ErrCorruptedContainer, n.baseNameStart, n.fullPath.length)
	}
	if n.copySource.present() {
		if err := checkByteRange(blob, n.copySource.offset, uint32(n.copySource.length)); err != nil {
			return nodeRecord{}, fmt.Errorf("dirstate: %w: copy_source: %v", ErrCorruptedContainer, err)
		}
	}
	if n.children.count > 0 {
		end := uint64(n.children.offset) + uint64(n.children.count)*nodeRecordSize
		if end > uint64(len(blob)) {
			return nodeRecord{}, fmt.Errorf("dirstate: %w: children slice out of range (offset %d count %d, blob size %d)", ErrCorruptedContainer, n.children.offset, n.children.count, len(blob))
		}
	}
	return n, nil
}

func checkByteRange(blob []byte, offset, length uint32) error {
	end := uint64(offset) + uint64(length)
	if end > uint64(len(blob)) {
		return fmt.Errorf("range [%d, %d) exceeds blob size %d", offset, end, len(blob))
	}
	return nil
}

// hasTrackingFlag reports whether any of WdirTracked/P1Tracked/P2Info is set
// on the record's flag byte: per the container invariants, that's exactly
// when a node carries an Entry rather than being an intermediate directory
// or a cached-mtime placeholder.
func (n nodeRecord) hasTrackingFlag() bool {
	return n.flags&(ndFlagWdirTracked|ndFlagP1Tracked|ndFlagP2Info) != 0
}

// toEntry decodes the record's Entry, if it has one. data is interpreted as
// (mode, mtime, size) when a tracking flag is set.
func (n nodeRecord) toEntry() *Entry {
	if !n.hasTrackingFlag() {
		return nil
	}
	e := &Entry{flags: Flags(n.flags & (ndFlagWdirTracked | ndFlagP1Tracked | ndFlagP2Info))}
	if n.flags&ndFlagHasModeAndSize != 0 {
		e.hasModeSize = true
		e.modeSize = ModeSize{Mode: n.data[0], Size: n.data[2]}
	}
	if n.flags&ndFlagHasMtime != 0 {
		e.hasMtime = true
		e.mtime = n.data[1]
	}
	return e
}

// dirCachedMtime decodes the cached-directory-mtime placeholder payload
// (seconds:i64, nanoseconds:u32), valid only when HasMtime is the only
// tracking-unrelated flag set and no tracking flag is present.
func (n nodeRecord) dirCachedMtime() (TruncatedTimestamp, bool) {
	if n.hasTrackingFlag() || n.flags&ndFlagHasMtime == 0 {
		return TruncatedTimestamp{}, false
	}
	seconds := int64(uint32(n.data[0]))<<32 | int64(uint32(n.data[1]))
	nanoseconds := uint32(n.data[2])
	ts, err := FromAlreadyTruncated(uint32(seconds&secondsMask), nanoseconds)
	if err != nil {
		return TruncatedTimestamp{}, false
	}
	return ts, true
}

// entryToFlagsAndData packs an Entry back into the on-disk flags byte and
// 3xi32 data slots.
func entryToFlagsAndData(e *Entry) (flags byte, data [3]int32) {
	if e == nil {
		return 0, data
	}
	flags = byte(e.flags)
	if e.hasModeSize {
		flags |= ndFlagHasModeAndSize
		data[0] = e.modeSize.Mode
		data[2] = e.modeSize.Size
	}
	if e.hasMtime {
		flags |= ndFlagHasMtime
		data[1] = e.mtime
	}
	return flags, data
}
