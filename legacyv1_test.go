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

func TestLegacyV1_EncodeDecodeRoundTrip(t *testing.T) {
	var p1, p2 [parentIDSize]byte
	copy(p1[:], bytes.Repeat([]byte{1}, parentIDSize))
	copy(p2[:], bytes.Repeat([]byte{2}, parentIDSize))
	records := []V1Record{
		{Data: V1Data{State: V1Normal, Mode: 0o644, Size: 5, Mtime: 100}, Path: []byte("a/b.txt")},
		{Data: V1Data{State: V1Added}, Path: []byte("new-file")},
		{Data: V1Data{State: V1Removed, Size: -1}, Path: []byte("gone")},
	}
	raw := EncodeLegacyV1(p1, p2, records)

	gotP1, gotP2, gotRecords, err := DecodeLegacyV1(raw)
	if err != nil {
		t.Fatal(err)
	}
	if gotP1 != p1 || gotP2 != p2 {
		t.Fatalf("parent mismatch")
	}
	if len(gotRecords) != len(records) {
		t.Fatalf("got %d records, want %d", len(gotRecords), len(records))
	}
	for i, want := range records {
		if gotRecords[i].Data != want.Data || !bytes.Equal(gotRecords[i].Path, want.Path) {
			t.Errorf("record %d = %+v %q, want %+v %q", i, gotRecords[i].Data, gotRecords[i].Path, want.Data, want.Path)
		}
	}
}

func TestDecodeLegacyV1_InvalidStateByte(t *testing.T) {
	var p1, p2 [parentIDSize]byte
	raw := EncodeLegacyV1(p1, p2, nil)
	raw = append(raw, 'x', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	if _, _, _, err := DecodeLegacyV1(raw); err == nil {
		t.Fatal("expected an error for an invalid v1 state byte")
	}
}

func TestDecodeLegacyV1_TooShortForParents(t *testing.T) {
	if _, _, _, err := DecodeLegacyV1([]byte("short")); err == nil {
		t.Fatal("expected an error when the file is too short for the parent identifiers")
	}
}
