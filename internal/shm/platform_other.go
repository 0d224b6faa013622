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

//go:build !linux && !windows

package shm

import (
	"context"
	"fmt"
	"io/fs"
	"runtime"
	"time"
)

// MapRegion reports every region as missing: named regions are only
// published on Windows, and emulated under /dev/shm on Linux.
func MapRegion(ctx context.Context, opts MapOptions) (*MappedRegion, error) {
	return nil, fmt.Errorf("open %s on %s: %w", opts.Name, runtime.GOOS, fs.ErrNotExist)
}

// UnmapRegion is a no-op on unsupported platforms.
func UnmapRegion(ctx context.Context, region *MappedRegion) error {
	return nil
}

// NamedMutex is unavailable on this platform.
type NamedMutex struct{}

// OpenMutex always fails on unsupported platforms.
func OpenMutex(opts MutexOptions) (*NamedMutex, error) {
	return nil, fmt.Errorf("named mutex %s on %s: %w", opts.Name, runtime.GOOS, ErrUnsupported)
}

// Acquire is never reached: OpenMutex fails on this platform.
func (m *NamedMutex) Acquire(timeout time.Duration) (*Lease, error) {
	return nil, ErrUnsupported
}

// Close is a no-op on unsupported platforms.
func (m *NamedMutex) Close() error {
	return nil
}
