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
	"testing"
	"time"
)

func TestTruncatedTimestamp_RoundTrip(t *testing.T) {
	ts := NewTruncatedTimestamp(1_700_000_000, 123_456_789)
	if got := ts.Seconds(); got != 1_700_000_000 {
		t.Fatalf("Seconds() = %d, want 1700000000", got)
	}
	if got := ts.Nanoseconds(); got != 123_456_789 {
		t.Fatalf("Nanoseconds() = %d, want 123456789", got)
	}
}

func TestTruncatedTimestamp_MasksHighBit(t *testing.T) {
	over := NewTruncatedTimestamp(1<<31, 0)
	if over.Seconds() != 0 {
		t.Fatalf("Seconds() = %d, want 0 after masking 2^31", over.Seconds())
	}
}

func TestTruncatedTimestamp_NanosecondsOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-range nanoseconds")
		}
	}()
	NewTruncatedTimestamp(0, 1_000_000_000)
}

func TestFromAlreadyTruncated_RejectsOutOfRange(t *testing.T) {
	if _, err := FromAlreadyTruncated(secondsMask+1, 0); err == nil {
		t.Fatal("expected error for seconds above the 31-bit mask")
	}
	if _, err := FromAlreadyTruncated(0, nanosPerSecond); err == nil {
		t.Fatal("expected error for out-of-range nanoseconds")
	}
}

func TestFromSystemTime_BeforeEpoch(t *testing.T) {
	// Construct a pre-epoch time whose nanoseconds would go negative under
	// a naive subtraction, to check that the result stays renormalized.
	tm := time.Date(1960, time.January, 1, 0, 0, 0, 500_000_000, time.UTC)
	ts := FromSystemTime(tm)
	if ts.Nanoseconds() >= nanosPerSecond {
		t.Fatalf("nanoseconds out of range: %d", ts.Nanoseconds())
	}
}

func TestTruncatedTimestamp_VeryLikelyEqual(t *testing.T) {
	a := NewTruncatedTimestamp(10, 20)
	b := NewTruncatedTimestamp(10, 20)
	c := NewTruncatedTimestamp(10, 21)
	if !a.VeryLikelyEqual(b) {
		t.Fatal("identical timestamps should compare equal")
	}
	if a.VeryLikelyEqual(c) {
		t.Fatal("timestamps differing in nanoseconds should not compare equal")
	}
}
