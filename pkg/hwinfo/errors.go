/*
 * Copyright 2025 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package hwinfo

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
)

// Kind classifies a read failure so callers can tell an absent producer from
// corrupt data without inspecting error types.
type Kind int

const (
	KindUnknown Kind = iota
	// KindRegionNotFound: the named region does not exist. Read methods turn
	// this into an empty result.
	KindRegionNotFound
	// KindAccessDenied: the region exists but cannot be opened for reading.
	KindAccessDenied
	// KindDecode: the data does not match the layout (bad signature, short
	// stride, reading pointing at a missing group).
	KindDecode
	// KindIO: the mapping is shorter than the header claims.
	KindIO
	// KindIndexOutOfRange: a reading refers to a group that is not there.
	KindIndexOutOfRange
)

var kindNames = [...]string{
	KindUnknown:         "unknown",
	KindRegionNotFound:  "region not found",
	KindAccessDenied:    "access denied",
	KindDecode:          "decode error",
	KindIO:              "io error",
	KindIndexOutOfRange: "index out of range",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

var (
	ErrRegionNotFound = errors.New("shared memory region not found")
	ErrAccessDenied   = errors.New("shared memory region access denied")
	ErrDecode         = errors.New("malformed shared memory data")
	ErrIO             = errors.New("short read from shared memory")
	// ErrIndexOutOfRange also matches ErrDecode.
	ErrIndexOutOfRange = errors.New("reading refers to unknown sensor group")
)

// kindSentinels is ordered: the more specific kind comes first.
var kindSentinels = []struct {
	kind Kind
	err  error
}{
	{KindRegionNotFound, ErrRegionNotFound},
	{KindAccessDenied, ErrAccessDenied},
	{KindIndexOutOfRange, ErrIndexOutOfRange},
	{KindDecode, ErrDecode},
	{KindIO, ErrIO},
}

func (k Kind) sentinel() error {
	for _, ks := range kindSentinels {
		if ks.kind == k {
			return ks.err
		}
	}
	return nil
}

// Error is returned by every Reader operation that fails.
type Error struct {
	Kind Kind
	// Op is the step that failed, e.g. "open" or "read readings".
	Op string
	// Name is the region name.
	Name string
	Err  error
}

func (e *Error) Error() string {
	msg := "hwinfo: " + e.Op
	if e.Name != "" {
		msg += " " + e.Name
	}
	switch {
	case e.Err == nil:
		msg += ": " + e.Kind.String()
	case errors.Is(e.Err, e.Kind.sentinel()):
		msg += ": " + e.Err.Error()
	default:
		msg += ": " + e.Kind.String() + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's Kind, so errors.Is(err,
// ErrRegionNotFound) works however the cause was produced.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if e.Kind == KindIndexOutOfRange && target == ErrDecode {
		return true
	}
	return target == e.Kind.sentinel()
}

// KindOf returns the Kind of err, or KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for _, ks := range kindSentinels {
		if errors.Is(err, ks.err) {
			return ks.kind
		}
	}
	return KindUnknown
}

// IndexError reports a reading whose group index is outside the group array.
type IndexError struct {
	// Position is the reading's position in the reading section.
	Position  int
	ReadingID uint32
	Index     uint32
	Groups    int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("reading %d (id %#x) refers to group %d of %d", e.Position, e.ReadingID, e.Index, e.Groups)
}

func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange || target == ErrDecode
}

// regionError wraps an OS failure from opening a region.
func regionError(op, name string, err error) *Error {
	kind := KindIO
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kind = KindRegionNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = KindAccessDenied
	}
	return &Error{Kind: kind, Op: op, Name: name, Err: err}
}

// dataError wraps a failure while interpreting the region's contents. The
// Kind comes from the sentinel in err.
func dataError(op, name string, err error) *Error {
	kind := KindOf(err)
	if kind == KindUnknown {
		kind = KindDecode
	}
	return &Error{Kind: kind, Op: op, Name: name, Err: err}
}
