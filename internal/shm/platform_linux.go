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
	"context"
	"fmt"

	"golang.org/x/sys/unix"
)

// MapRegion maps an existing named region read-only (Linux implementation).
// A missing region reports an error matching fs.ErrNotExist.
func MapRegion(ctx context.Context, opts MapOptions) (*MappedRegion, error) {
	shmPath := RegionPath(opts.Dir, opts.Name)
	fd, err := unix.Open(shmPath, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", shmPath, err)
	}
	defer func() {
		_ = unix.Close(fd)
	}()

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return nil, fmt.Errorf("fstat %s: %w", shmPath, err)
	}
	if st.Size <= 0 {
		return nil, fmt.Errorf("mmap %s: %w", shmPath, ErrEmptyRegion)
	}
	addr, err := unix.Mmap(fd, 0, int(st.Size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %w", shmPath, err)
	}
	return &MappedRegion{
		Addr: addr,
		Name: opts.Name,
		unmap: func() error {
			return unix.Munmap(addr)
		},
	}, nil
}

// UnmapRegion unmaps the shared memory region (Linux implementation).
func UnmapRegion(ctx context.Context, region *MappedRegion) error {
	if region == nil || region.unmap == nil {
		return nil
	}
	unmap := region.unmap
	region.unmap = nil
	region.Addr = nil
	if err := unmap(); err != nil {
		return fmt.Errorf("munmap: %w", err)
	}
	return nil
}
