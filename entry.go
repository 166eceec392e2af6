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

// Flags is the orthogonal flag set a dirstate entry is built from. The
// legacy four-state view (Normal/Added/Removed/Merged) is a derived
// projection of these three bits plus the optional payloads, not the
// primary representation.
type Flags uint8

const (
	// WdirTracked means the path is tracked in the working directory.
	WdirTracked Flags = 1 << iota
	// P1Tracked means the path was tracked in the first parent changeset.
	P1Tracked
	// P2Info means the path carries information from the second parent
	// (set during a merge).
	P2Info
)

// ModeSize is the optional (mode, size) payload of an entry.
type ModeSize struct {
	Mode int32
	Size int32
}

// Entry is the per-path dirstate state machine: the flag set plus the two
// optional payloads (mode/size, mtime). An Entry with no flags set is
// logically absent and cannot be constructed by FromV2/FromV1; a node with
// no tracking flags is an intermediate directory or a cached-mtime
// placeholder, not an Entry (see TreeNode in node.go).
type Entry struct {
	flags Flags

	hasModeSize bool
	modeSize    ModeSize

	hasMtime bool
	mtime    int32
}

// FromV2 builds an Entry directly from its v2 flag set and payloads. modeSize
// and mtime are nil when absent. It is an error for all three flags to be
// unset: such an entry is logically absent and should not be represented.
//
// Per spec: when P2Info is set or P1Tracked is unset, mtime is not
// meaningful; FromV2 does not reject that combination (the caller may be
// reconstructing a value that will immediately have mtime cleared). V1Data
// always reports the sentinel -1 for it regardless of what was passed in;
// V2Data returns the stored value unchanged.
func FromV2(wdirTracked, p1Tracked, p2Info bool, modeSize *ModeSize, mtime *int32) (Entry, error) {
	var e Entry
	if wdirTracked {
		e.flags |= WdirTracked
	}
	if p1Tracked {
		e.flags |= P1Tracked
	}
	if p2Info {
		e.flags |= P2Info
	}
	if e.flags == 0 {
		return Entry{}, fmt.Errorf("dirstate: %w: entry with no flags set is not observable", ErrUnsupportedFeature)
	}
	if modeSize != nil {
		e.hasModeSize = true
		e.modeSize = *modeSize
	}
	if mtime != nil {
		e.hasMtime = true
		e.mtime = *mtime
	}
	return e, nil
}

// V2Data returns the flag set and optional payloads, the inverse of FromV2:
// a direct readback of what was stored. Per the entry invariants, a caller
// that honors them never has mtime set while P2Info is set or P1Tracked is
// unset; V2Data does not re-check that here, it just reports what's there.
func (e Entry) V2Data() (wdirTracked, p1Tracked, p2Info bool, modeSize *ModeSize, mtime *int32) {
	wdirTracked = e.flags&WdirTracked != 0
	p1Tracked = e.flags&P1Tracked != 0
	p2Info = e.flags&P2Info != 0
	if e.hasModeSize {
		ms := e.modeSize
		modeSize = &ms
	}
	if e.hasMtime {
		m := e.mtime
		mtime = &m
	}
	return
}

// V1State is the legacy four-state label.
type V1State byte

const (
	V1Normal  V1State = 'n'
	V1Added   V1State = 'a'
	V1Removed V1State = 'r'
	V1Merged  V1State = 'm'
)

// V1Data is the legacy (state, mode, size, mtime) quad. Two size sentinels
// reserve the size channel: -1 means "non-normal / needs lookup", -2 means
// "data comes from the other parent".
type V1Data struct {
	State V1State
	Mode  int32
	Size  int32
	Mtime int32
}

// FromV1 decodes a legacy v1 quad into an Entry, following the table in
// the dirstate entry state machine spec. It returns ErrCorruptedContainer
// for a v1 state byte outside {n, a, r, m}.
//
// Open question preserved from the source: for Removed entries with
// size == -2 ("from the other parent"), it is unclear whether P1Tracked
// should also be set. This decodes the conservative choice: P1Tracked is
// left clear.
func FromV1(d V1Data) (Entry, error) {
	var e Entry
	switch d.State {
	case V1Normal:
		e.flags = WdirTracked
		switch {
		case d.Size == -2:
			// P1 unknown; see the open-question note above.
			e.flags |= P2Info
		case d.Size == -1:
			e.flags |= P1Tracked
		case d.Size >= 0 && d.Mtime == -1:
			e.flags |= P1Tracked
			e.hasModeSize = true
			e.modeSize = ModeSize{Mode: d.Mode, Size: d.Size}
		case d.Size >= 0 && d.Mtime >= 0:
			e.flags |= P1Tracked
			e.hasModeSize = true
			e.modeSize = ModeSize{Mode: d.Mode, Size: d.Size}
			e.hasMtime = true
			e.mtime = d.Mtime
		default:
			return Entry{}, fmt.Errorf("dirstate: %w: invalid normal-state size/mtime %d/%d", ErrCorruptedContainer, d.Size, d.Mtime)
		}
	case V1Added:
		e.flags = WdirTracked
	case V1Removed:
		switch d.Size {
		case -1:
			e.flags = P1Tracked | P2Info
		case -2:
			// P1 unknown; see the open-question note above.
			e.flags = P2Info
		default:
			e.flags = P1Tracked
		}
	case V1Merged:
		// Over-approximation: both P1Tracked and P2Info are always set, even
		// though after a rename during a merge the path may not really be
		// known to both parents.
		e.flags = WdirTracked | P1Tracked | P2Info
	default:
		return Entry{}, fmt.Errorf("dirstate: %w: invalid v1 state byte %q", ErrCorruptedContainer, byte(d.State))
	}
	return e, nil
}

// V1Data derives the legacy quad from the entry's current flags/payloads.
func (e Entry) V1Data() V1Data {
	wdir := e.flags&WdirTracked != 0
	p1 := e.flags&P1Tracked != 0
	p2 := e.flags&P2Info != 0
	removed := !wdir && (p1 || p2)

	var state V1State
	switch {
	case removed:
		state = V1Removed
	case wdir && p1 && p2:
		state = V1Merged
	case wdir && !p1 && !p2:
		state = V1Added
	default:
		state = V1Normal
	}

	mode := int32(0)
	if e.hasModeSize {
		mode = e.modeSize.Mode
	}

	var size int32
	switch {
	case removed && p1 && p2:
		size = -1
	case p2:
		size = -2
	case removed:
		size = 0
	case state == V1Added:
		size = -1
	case e.hasModeSize:
		size = e.modeSize.Size
	default:
		size = -1
	}

	var mtime int32
	switch {
	case removed:
		mtime = 0
	case p2 || !p1:
		mtime = -1
	case e.hasMtime:
		mtime = e.mtime
	default:
		mtime = -1
	}

	return V1Data{State: state, Mode: mode, Size: size, Mtime: mtime}
}

// Tracked reports whether the path is tracked in the working directory.
func (e Entry) Tracked() bool { return e.flags&WdirTracked != 0 }

// Added reports whether the path was newly added: tracked in the working
// directory but in neither parent.
func (e Entry) Added() bool {
	return e.flags&(WdirTracked|P1Tracked|P2Info) == WdirTracked
}

// Removed reports whether the path was removed from the working directory
// while still known to a parent.
func (e Entry) Removed() bool {
	return e.flags&WdirTracked == 0 && e.flags&(P1Tracked|P2Info) != 0
}

// Merged reports whether the entry carries information from both parents
// while still tracked (the derived "merged" state).
func (e Entry) Merged() bool {
	return e.flags&(WdirTracked|P1Tracked|P2Info) == WdirTracked|P1Tracked|P2Info
}

// P2Info reports whether the path is tracked and carries second-parent
// information. Note this is gated on WdirTracked, unlike the raw P2Info
// flag consulted internally by V1Data.
func (e Entry) P2Info() bool { return e.flags&(WdirTracked|P2Info) == WdirTracked|P2Info }

// MaybeClean reports whether the path might be clean: tracked, known to
// the first parent, and not part of a merge. A status walker must still
// stat (and possibly read) the file to be sure.
func (e Entry) MaybeClean() bool {
	return e.flags&(WdirTracked|P1Tracked|P2Info) == WdirTracked|P1Tracked
}

// AnyTracked reports whether the entry is observable at all: tracked in the
// working directory, the first parent, or carries second-parent info.
func (e Entry) AnyTracked() bool { return e.flags != 0 }

// SetClean marks the entry as tracked and clean as of a given (mode, size,
// mtime) observation: both payloads are set and WdirTracked/P1Tracked are
// asserted.
func (e *Entry) SetClean(mode, size, mtime int32) {
	e.flags |= WdirTracked | P1Tracked
	e.hasModeSize = true
	e.modeSize = ModeSize{Mode: mode, Size: size}
	e.hasMtime = true
	e.mtime = mtime
}

// SetPossiblyDirty clears the mtime payload only, forcing the next status
// check to fall back to a content comparison instead of trusting the mtime.
func (e *Entry) SetPossiblyDirty() {
	e.hasMtime = false
	e.mtime = 0
}

// SetTracked marks the path as tracked in the working directory. The mtime
// payload is cleared (not just possibly stale): a freshly (re)tracked path
// has no observation to trust yet, so the next status check must rescan.
func (e *Entry) SetTracked() {
	e.flags |= WdirTracked
	e.hasMtime = false
	e.mtime = 0
}

// SetUntracked clears WdirTracked and both payloads. If the entry was also
// tracked by a parent, it remains observable as Removed; otherwise it
// becomes the logically-absent zero value and should be dropped by the
// caller.
func (e *Entry) SetUntracked() {
	e.flags &^= WdirTracked
	e.hasModeSize = false
	e.modeSize = ModeSize{}
	e.hasMtime = false
	e.mtime = 0
}

// DropMergeData clears P2Info and both payloads if P2Info was set.
// Idempotent: calling it on an entry that has no second-parent info is a
// no-op, not an error.
func (e *Entry) DropMergeData() {
	if e.flags&P2Info == 0 {
		return
	}
	e.flags &^= P2Info
	e.hasModeSize = false
	e.modeSize = ModeSize{}
	e.hasMtime = false
	e.mtime = 0
}

// MtimeIsAmbiguous reports whether the entry is in the Normal v1 state and
// its recorded mtime equals now, without mutating the entry. A status
// walker uses this to decide whether a maybe-clean entry needs a full
// content re-read.
func (e Entry) MtimeIsAmbiguous(now int32) bool {
	d := e.V1Data()
	return d.State == V1Normal && d.Mtime == now
}

// ClearAmbiguousMtime clears the mtime payload if the entry is Normal and
// its mtime equals now (an mtime equal to the dirstate write time cannot
// distinguish a same-second modification from a clean file). Returns
// whether it fired.
func (e *Entry) ClearAmbiguousMtime(now int32) bool {
	if !e.MtimeIsAmbiguous(now) {
		return false
	}
	e.hasMtime = false
	e.mtime = 0
	return true
}
