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

//go:build linux

package shm

import (
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sys/unix"
)

const (
	lockPollInitial = time.Millisecond
	lockPollMax     = 20 * time.Millisecond
)

// NamedMutex emulates a host-global named mutex with flock(2) on a file
// next to the regions. Every Acquire opens its own file description so that
// goroutines of one process exclude each other as well.
type NamedMutex struct {
	name string
	path string
}

// OpenMutex prepares the named mutex (Linux implementation). The lock file
// is created lazily by Acquire.
func OpenMutex(opts MutexOptions) (*NamedMutex, error) {
	if opts.Name == "" {
		return nil, errors.New("named mutex: empty name")
	}
	return &NamedMutex{
		name: opts.Name,
		path: RegionPath(opts.Dir, opts.Name),
	}, nil
}

// Acquire waits up to timeout for the lock. A timeout is not an error: the
// lease comes back with State LockTimeout.
func (m *NamedMutex) Acquire(timeout time.Duration) (*Lease, error) {
	fd, err := unix.Open(m.path, unix.O_RDONLY|unix.O_CREAT|unix.O_CLOEXEC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock %s: %w", m.path, err)
	}

	err = m.poll(fd, timeout)
	switch {
	case err == nil:
		return NewLease(LockAcquired, func() error {
			uerr := unix.Flock(fd, unix.LOCK_UN)
			cerr := unix.Close(fd)
			if uerr != nil {
				return fmt.Errorf("unlock %s: %w", m.path, uerr)
			}
			return cerr
		}), nil
	case errors.Is(err, unix.EWOULDBLOCK):
		return NewLease(LockTimeout, func() error {
			_ = unix.Close(fd)
			return fmt.Errorf("unlock %s: %w", m.path, ErrNotHeld)
		}), nil
	default:
		_ = unix.Close(fd)
		return nil, fmt.Errorf("flock %s: %w", m.path, err)
	}
}

// poll retries a non-blocking flock with growing pauses until the deadline.
// The last attempt happens at the deadline, so the full timeout is waited.
func (m *NamedMutex) poll(fd int, timeout time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = lockPollInitial
	b.MaxInterval = lockPollMax
	b.MaxElapsedTime = 0
	b.Reset()

	deadline := time.Now().Add(timeout)
	for {
		err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			return err
		}
		wait := b.NextBackOff()
		if timeout >= 0 {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return unix.EWOULDBLOCK
			}
			if wait > remaining {
				wait = remaining
			}
		}
		time.Sleep(wait)
	}
}

// Close releases resources held by the mutex. Leases stay valid.
func (m *NamedMutex) Close() error {
	return nil
}
