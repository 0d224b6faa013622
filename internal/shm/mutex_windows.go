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

//go:build windows

package shm

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sys/windows"
)

// mutexModifyState is the access right ReleaseMutex needs.
const mutexModifyState = 0x0001

// NamedMutex is a kernel mutex object shared with the producer.
type NamedMutex struct {
	name   string
	handle windows.Handle
}

// OpenMutex opens the named mutex, creating it when the producer has not
// done so yet. The caller never takes initial ownership.
func OpenMutex(opts MutexOptions) (*NamedMutex, error) {
	name, err := windows.UTF16PtrFromString(opts.Name)
	if err != nil {
		return nil, fmt.Errorf("mutex name %q: %w", opts.Name, err)
	}
	h, err := windows.CreateMutex(nil, false, name)
	if err != nil && !errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		// Creating objects in the Global namespace needs a privilege the
		// opener does not; opening an existing one does not.
		oh, oerr := windows.OpenMutex(windows.SYNCHRONIZE|mutexModifyState, false, name)
		if oerr != nil {
			return nil, fmt.Errorf("CreateMutex %s: %w", opts.Name, err)
		}
		h = oh
	}
	if h == 0 {
		return nil, fmt.Errorf("CreateMutex %s: %w", opts.Name, err)
	}
	return &NamedMutex{name: opts.Name, handle: h}, nil
}

// Acquire waits up to timeout for ownership. Mutex ownership belongs to an
// OS thread, so the calling goroutine stays locked to its thread until the
// lease is released.
func (m *NamedMutex) Acquire(timeout time.Duration) (*Lease, error) {
	runtime.LockOSThread()

	event, err := windows.WaitForSingleObject(m.handle, waitMillis(timeout))
	var state LockState
	switch {
	case err != nil:
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("WaitForSingleObject %s: %w", m.name, err)
	case event == windows.WAIT_OBJECT_0:
		state = LockAcquired
	case event == windows.WAIT_ABANDONED:
		state = LockAbandoned
	case event == uint32(windows.WAIT_TIMEOUT):
		state = LockTimeout
	default:
		runtime.UnlockOSThread()
		return nil, fmt.Errorf("WaitForSingleObject %s: unexpected result %#x", m.name, event)
	}

	return NewLease(state, func() error {
		defer runtime.UnlockOSThread()
		if err := windows.ReleaseMutex(m.handle); err != nil {
			return fmt.Errorf("ReleaseMutex %s: %w", m.name, err)
		}
		return nil
	}), nil
}

// Close closes the mutex handle.
func (m *NamedMutex) Close() error {
	if m.handle == 0 {
		return nil
	}
	h := m.handle
	m.handle = 0
	return windows.CloseHandle(h)
}

func waitMillis(timeout time.Duration) uint32 {
	if timeout < 0 {
		return windows.INFINITE
	}
	ms := timeout.Milliseconds()
	if ms >= int64(windows.INFINITE) {
		return windows.INFINITE - 1
	}
	return uint32(ms)
}
