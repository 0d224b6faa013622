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

// Package shm contains the platform-specific helpers used to reach named
// shared memory regions and the named mutex that guards them.
package shm

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrEmptyRegion is reported for a region that exists but has no pages.
	ErrEmptyRegion = errors.New("shared memory region is empty")
	// ErrNotHeld is reported when releasing a mutex the caller does not own.
	ErrNotHeld = errors.New("mutex not held")
	// ErrUnsupported is reported where named mutexes are unavailable.
	ErrUnsupported = errors.New("named mutex unsupported on this platform")
)

// DefaultDir is where named regions live on Linux.
const DefaultDir = "/dev/shm"

// MappedRegion represents a read-only view of a named shared region.
// Addr aliases the live mapping: its contents change under the reader.
type MappedRegion struct {
	Addr []byte
	Name string

	unmap func() error
}

// Len returns the size of the mapped view in bytes.
func (r *MappedRegion) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Addr)
}

// MapOptions defines options for mapping a named shared region.
type MapOptions struct {
	Name string
	// Dir is the directory backing named regions on Linux. Ignored on Windows.
	Dir string
}

// MutexOptions defines options for opening a named mutex.
type MutexOptions struct {
	Name string
	// Dir holds lock files on Linux. Ignored on Windows.
	Dir string
}

// LockState is the outcome of one acquisition attempt.
type LockState int

const (
	LockAcquired LockState = iota
	// LockAbandoned means the previous owner exited while holding the mutex.
	// Ownership is transferred to the caller.
	LockAbandoned
	LockTimeout
)

func (s LockState) String() string {
	switch s {
	case LockAcquired:
		return "acquired"
	case LockAbandoned:
		return "abandoned"
	case LockTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Lease is returned by Acquire. It must be released whatever its State,
// including LockTimeout.
type Lease struct {
	State   LockState
	release func() error
}

// NewLease returns a lease in state that runs release once.
func NewLease(state LockState, release func() error) *Lease {
	return &Lease{State: state, release: release}
}

// Release gives the mutex back. Releasing a lease that does not own the
// mutex reports an error.
func (l *Lease) Release() error {
	if l == nil || l.release == nil {
		return nil
	}
	release := l.release
	l.release = nil
	return release()
}

// WaitForever makes Acquire block until the mutex is obtained.
const WaitForever time.Duration = -1

// fileName turns a Windows object name such as `Global\HWiNFO_SENS_SM2`
// into a single path element.
func fileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\\', '/', ':':
			return '_'
		}
		return r
	}, name)
}

// RegionPath returns the file backing a named region on Linux.
func RegionPath(dir, name string) string {
	return filepath.Join(dirOrDefault(dir), fileName(name))
}

func dirOrDefault(dir string) string {
	if dir == "" {
		return DefaultDir
	}
	return dir
}
