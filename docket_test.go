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
	"testing"
)

// Scenario 4 from the spec: a hand-built byte sequence parses to the
// expected docket fields.
func TestDecodeDocket_Scenario(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(docketMarker)
	buf.Write(bytes.Repeat([]byte{0x11}, parentSlotSize))
	buf.Write(bytes.Repeat([]byte{0x22}, parentSlotSize))
	buf.Write(make([]byte, treeMetaSize))
	buf.Write([]byte{0x00, 0x00, 0x10, 0x00}) // data_size = 0x1000
	buf.WriteByte(4)
	buf.WriteString("abcd")

	d, err := DecodeDocket(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(d.Parent1[:parentIDSize], bytes.Repeat([]byte{0x11}, parentIDSize)) {
		t.Errorf("Parent1 = % x", d.Parent1[:parentIDSize])
	}
	if !bytes.Equal(d.Parent2[:parentIDSize], bytes.Repeat([]byte{0x22}, parentIDSize)) {
		t.Errorf("Parent2 = % x", d.Parent2[:parentIDSize])
	}
	if d.DataSize != 4096 {
		t.Errorf("DataSize = %d, want 4096", d.DataSize)
	}
	if d.DataFileName() != "dirstate.abcd" {
		t.Errorf("DataFileName() = %q, want dirstate.abcd", d.DataFileName())
	}
}

func TestDocket_EncodeDecodeRoundTrip(t *testing.T) {
	var p1, p2, hash [parentSlotSize]byte
	copy(p1[:], bytes.Repeat([]byte{0xAA}, parentIDSize))
	copy(p2[:], bytes.Repeat([]byte{0xBB}, parentIDSize))
	copy(hash[:parentIDSize], bytes.Repeat([]byte{0xCC}, parentIDSize))

	d := Docket{
		Parent1: ParentID(p1),
		Parent2: ParentID(p2),
		Tree: TreeMetadata{
			RootChildren:             childrenRef{offset: 125, count: 3},
			NodesWithEntryCount:      7,
			NodesWithCopySourceCount: 2,
			UnreachableBytes:         0,
			WriteCount:               5,
			IgnorePatternsHash:       [parentIDSize]byte(hash[:parentIDSize]),
		},
		DataSize: 999,
		UUID:     "0123456789abcdef",
	}

	raw, err := EncodeDocket(d)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeDocket(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got != d {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, d)
	}
}

func TestDecodeDocket_BadMarker(t *testing.T) {
	raw := make([]byte, docketFixedSize)
	copy(raw, "not-a-docket")
	if _, err := DecodeDocket(raw); err == nil {
		t.Fatal("expected an error for a bad marker")
	}
}

func TestDecodeDocket_TooShort(t *testing.T) {
	if _, err := DecodeDocket([]byte("short")); err == nil {
		t.Fatal("expected an error for a too-short docket")
	}
}

func TestDecodeDocket_UUIDLengthExceedsDocket(t *testing.T) {
	d := Docket{UUID: "ab"}
	raw, err := EncodeDocket(d)
	if err != nil {
		t.Fatal(err)
	}
	raw = raw[:len(raw)-1] // truncate the UUID bytes but keep the length byte
	if _, err := DecodeDocket(raw); err == nil {
		t.Fatal("expected an error when uuid bytes are truncated")
	}
}
