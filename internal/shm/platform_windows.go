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
	"context"
	"fmt"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procOpenFileMappingW = modkernel32.NewProc("OpenFileMappingW")
)

func openFileMapping(access uint32, inherit bool, name *uint16) (windows.Handle, error) {
	var inheritHandle uintptr
	if inherit {
		inheritHandle = 1
	}
	r, _, e := procOpenFileMappingW.Call(uintptr(access), inheritHandle, uintptr(unsafe.Pointer(name)))
	if r == 0 {
		if errno, ok := e.(syscall.Errno); ok && errno != 0 {
			return 0, errno
		}
		return 0, syscall.EINVAL
	}
	return windows.Handle(r), nil
}

// MapRegion maps an existing named region read-only (Windows implementation).
// A missing region reports an error matching fs.ErrNotExist.
func MapRegion(ctx context.Context, opts MapOptions) (*MappedRegion, error) {
	name, err := windows.UTF16PtrFromString(opts.Name)
	if err != nil {
		return nil, fmt.Errorf("region name %q: %w", opts.Name, err)
	}
	h, err := openFileMapping(windows.FILE_MAP_READ, false, name)
	if err != nil {
		return nil, fmt.Errorf("OpenFileMapping %s: %w", opts.Name, err)
	}
	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ, 0, 0, 0)
	if err != nil {
		_ = windows.CloseHandle(h)
		return nil, fmt.Errorf("MapViewOfFile %s: %w", opts.Name, err)
	}
	var info windows.MemoryBasicInformation
	if err := windows.VirtualQuery(addr, &info, unsafe.Sizeof(info)); err != nil {
		_ = windows.UnmapViewOfFile(addr)
		_ = windows.CloseHandle(h)
		return nil, fmt.Errorf("VirtualQuery %s: %w", opts.Name, err)
	}
	if info.RegionSize == 0 {
		_ = windows.UnmapViewOfFile(addr)
		_ = windows.CloseHandle(h)
		return nil, fmt.Errorf("MapViewOfFile %s: %w", opts.Name, ErrEmptyRegion)
	}
	return &MappedRegion{
		Addr: unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(info.RegionSize)),
		Name: opts.Name,
		unmap: func() error {
			uerr := windows.UnmapViewOfFile(addr)
			cerr := windows.CloseHandle(h)
			if uerr != nil {
				return uerr
			}
			return cerr
		},
	}, nil
}

// UnmapRegion unmaps and closes the shared memory region (Windows implementation).
func UnmapRegion(ctx context.Context, region *MappedRegion) error {
	if region == nil || region.unmap == nil {
		return nil
	}
	unmap := region.unmap
	region.unmap = nil
	region.Addr = nil
	if err := unmap(); err != nil {
		return fmt.Errorf("UnmapViewOfFile: %w", err)
	}
	return nil
}
