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
	"context"
	"fmt"

	"github.com/valyala/bytebufferpool"

	internalshm "github.com/srediag/hwinfo-shm/internal/shm"
)

// region is an open view of a named region, valid for one read call.
type region struct {
	m    *internalshm.MappedRegion
	name string
}

func openRegion(ctx context.Context, name, dir string) (*region, error) {
	m, err := internalshm.MapRegion(ctx, internalshm.MapOptions{Name: name, Dir: dir})
	if err != nil {
		return nil, regionError("open", name, err)
	}
	return &region{m: m, name: name}, nil
}

func (r *region) close(ctx context.Context) {
	if err := internalshm.UnmapRegion(ctx, r.m); err != nil {
		internalLogger.warnf("unmap %s: %v", r.name, err)
	}
}

// readBlockInto copies size bytes at offset out of the live mapping into
// buf, so decoding works on a stable copy.
func (r *region) readBlockInto(buf *bytebufferpool.ByteBuffer, offset uint64, size uint32) error {
	n := uint64(r.m.Len())
	if offset > n || uint64(size) > n-offset {
		return fmt.Errorf("%w: %d bytes at offset %d, region holds %d", ErrIO, size, offset, n)
	}
	buf.B = append(buf.B[:0], r.m.Addr[offset:offset+uint64(size)]...)
	return nil
}

// readBlock reads exactly size bytes at offset. The caller returns the
// buffer with bytebufferpool.Put.
func (r *region) readBlock(offset uint64, size uint32) (*bytebufferpool.ByteBuffer, error) {
	buf := bytebufferpool.Get()
	if err := r.readBlockInto(buf, offset, size); err != nil {
		bytebufferpool.Put(buf)
		return nil, err
	}
	return buf, nil
}

func (r *region) readHeader() (Header, error) {
	buf, err := r.readBlock(0, HeaderSize)
	if err != nil {
		return Header{}, dataError("read header", r.name, err)
	}
	defer bytebufferpool.Put(buf)

	h, err := decode[Header](buf.B)
	if err != nil {
		return Header{}, dataError("read header", r.name, err)
	}
	if err := checkSignature(h); err != nil {
		return Header{}, dataError("read header", r.name, err)
	}
	return h, nil
}

// readArray decodes sec.Count records of sec.Stride bytes each. A record
// that runs past the end of the mapping fails the whole array: partial
// sections are never returned.
func readArray[T any, P wireRecord[T]](r *region, op string, sec Section) ([]T, error) {
	var zero T
	if size := P(&zero).wireSize(); sec.Count > 0 && int(sec.Stride) < size {
		return nil, dataError(op, r.name, fmt.Errorf("%w: stride %d below record size %d", ErrDecode, sec.Stride, size))
	}
	if sec.Count == 0 {
		return []T{}, nil
	}

	// The count comes from shared memory: bound the allocation by what the
	// mapping can actually hold.
	capacity := uint64(sec.Count)
	if fit := uint64(r.m.Len()) / uint64(sec.Stride); fit < capacity {
		capacity = fit
	}
	out := make([]T, 0, capacity)

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	for i := uint32(0); i < sec.Count; i++ {
		offset := uint64(sec.Offset) + uint64(i)*uint64(sec.Stride)
		if err := r.readBlockInto(buf, offset, sec.Stride); err != nil {
			return nil, dataError(op, r.name, fmt.Errorf("element %d of %d: %w", i, sec.Count, err))
		}
		v, err := decode[T, P](buf.B)
		if err != nil {
			return nil, dataError(op, r.name, fmt.Errorf("element %d of %d: %w", i, sec.Count, err))
		}
		out = append(out, v)
	}
	return out, nil
}
