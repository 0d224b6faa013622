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
	"sync"
	"time"

	internalshm "github.com/srediag/hwinfo-shm/internal/shm"
)

// namedMutex is the part of internalshm.NamedMutex the guard uses.
type namedMutex interface {
	Acquire(timeout time.Duration) (*internalshm.Lease, error)
	Close() error
}

// guard serializes reads with the producer's updates through its named
// mutex. The lock is advisory: when the wait times out, or the mutex cannot
// be opened at all, the guarded function runs anyway. Release errors are
// dropped. A reader can therefore observe a torn update; callers that need
// consistency may retry on decode errors (see Retry).
type guard struct {
	opts    internalshm.MutexOptions
	timeout time.Duration
	metrics *metrics

	mu    sync.Mutex
	mutex namedMutex
	open  func(internalshm.MutexOptions) (namedMutex, error)
}

func newGuard(opts internalshm.MutexOptions, timeout time.Duration, m *metrics) *guard {
	g := &guard{
		opts:    opts,
		timeout: timeout,
		metrics: m,
		open: func(o internalshm.MutexOptions) (namedMutex, error) {
			return internalshm.OpenMutex(o)
		},
	}
	return g
}

// handle returns the mutex, opening it on first use. A failed open is
// retried on the next call.
func (g *guard) handle() (namedMutex, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mutex != nil {
		return g.mutex, nil
	}
	m, err := g.open(g.opts)
	if err != nil {
		return nil, err
	}
	g.mutex = m
	return m, nil
}

// acquire waits for the mutex. The returned lease is nil when nothing needs
// releasing.
func (g *guard) acquire() *internalshm.Lease {
	m, err := g.handle()
	if err != nil {
		g.metrics.observeLock("unavailable")
		return nil
	}
	lease, err := m.Acquire(g.timeout)
	if err != nil {
		g.metrics.observeLock(outcomeError)
		return nil
	}
	g.metrics.observeLock(lease.State.String())
	return lease
}

// withLock runs fn between acquire and release.
func withLock[T any](g *guard, fn func() (T, error)) (T, error) {
	lease := g.acquire()
	defer func() {
		_ = lease.Release()
	}()
	return fn()
}

func (g *guard) close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.mutex == nil {
		return nil
	}
	err := g.mutex.Close()
	g.mutex = nil
	return err
}
