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

// V1Record is one decoded entry of the legacy flat dirstate file: the v1
// quad plus the path it belongs to.
type V1Record struct {
	Data V1Data
	Path []byte
}

// legacyV1RecordHeaderSize is the fixed portion of one record: state (1) +
// mode/size/mtime (4 each) + path_len (4).
const legacyV1RecordHeaderSize = 1 + 4 + 4 + 4 + 4

// DecodeLegacyV1 parses the flat v1 file format: two 20-byte parent
// identifiers followed by a concatenation of
// (state, mode, size, mtime, path_len, path_bytes) records. This is treated
// purely as an interconversion target: every record is run through FromV1 so
// the mapping table in the entry state machine is the single source of
// truth, not a second ad hoc decoder.
func DecodeLegacyV1(b []byte) (parent1, parent2 [parentIDSize]byte, records []V1Record, err error) {
	if len(b) < 2*parentIDSize {
		return parent1, parent2, nil, fmt.Errorf("dirstate: %w: legacy v1 file too short for parent identifiers", ErrCorruptedContainer)
	}
	copy(parent1[:], b[:parentIDSize])
	copy(parent2[:], b[parentIDSize:2*parentIDSize])
	off := 2 * parentIDSize

	for off < len(b) {
		if off+legacyV1RecordHeaderSize > len(b) {
			return parent1, parent2, nil, fmt.Errorf("dirstate: %w: truncated legacy v1 record header at offset %d", ErrCorruptedContainer, off)
		}
		state := V1State(b[off])
		mode := int32(binary.BigEndian.Uint32(b[off+1 : off+5]))
		size := int32(binary.BigEndian.Uint32(b[off+5 : off+9]))
		mtime := int32(binary.BigEndian.Uint32(b[off+9 : off+13]))
		pathLen := binary.BigEndian.Uint32(b[off+13 : off+17])
		off += legacyV1RecordHeaderSize

		if uint64(off)+uint64(pathLen) > uint64(len(b)) {
			return parent1, parent2, nil, fmt.Errorf("dirstate: %w: legacy v1 path length %d exceeds file size", ErrCorruptedContainer, pathLen)
		}
		path := b[off : off+int(pathLen)]
		off += int(pathLen)

		d := V1Data{State: state, Mode: mode, Size: size, Mtime: mtime}
		// Validate through the same table FromV1 uses, so a corrupt state
		// byte is rejected here rather than surfacing later as a mysterious
		// Entry invariant violation.
		if _, verr := FromV1(d); verr != nil {
			return parent1, parent2, nil, verr
		}
		records = append(records, V1Record{Data: d, Path: append([]byte(nil), path...)})
	}
	return parent1, parent2, records, nil
}

// EncodeLegacyV1 serializes parent identifiers and records back into the
// flat v1 file format, the inverse of DecodeLegacyV1.
func EncodeLegacyV1(parent1, parent2 [parentIDSize]byte, records []V1Record) []byte {
	size := 2 * parentIDSize
	for _, r := range records {
		size += legacyV1RecordHeaderSize + len(r.Path)
	}
	out := make([]byte, 0, size)
	out = append(out, parent1[:]...)
	out = append(out, parent2[:]...)
	var hdr [legacyV1RecordHeaderSize]byte
	for _, r := range records {
		hdr[0] = byte(r.Data.State)
		binary.BigEndian.PutUint32(hdr[1:5], uint32(r.Data.Mode))
		binary.BigEndian.PutUint32(hdr[5:9], uint32(r.Data.Size))
		binary.BigEndian.PutUint32(hdr[9:13], uint32(r.Data.Mtime))
		binary.BigEndian.PutUint32(hdr[13:17], uint32(len(r.Path)))
		out = append(out, hdr[:]...)
		out = append(out, r.Path...)
	}
	return out
}
