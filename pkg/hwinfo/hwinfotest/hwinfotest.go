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

// Package hwinfotest builds synthetic SM2 regions for tests.
//
// On Linux the hwinfo reader maps regions from files under a directory
// (Config.ShmDir), so WriteRegion lets a test stand in for the producer.
package hwinfotest

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/charmap"

	internalshm "github.com/srediag/hwinfo-shm/internal/shm"
	"github.com/srediag/hwinfo-shm/pkg/hwinfo"
)

// Region describes a region image. Zero strides mean the static record
// sizes; a zero Signature means hwinfo.SignatureActive.
type Region struct {
	Signature     uint32
	Version       uint32
	Revision      uint32
	PollTime      int64
	GroupStride   uint32
	ReadingStride uint32

	Groups   []hwinfo.GroupRecord
	Readings []hwinfo.ReadingRecord

	// Truncate cuts this many bytes off the end of the image.
	Truncate int
}

// Header returns the header Bytes will write: groups right after the
// header, readings right after the groups.
func (r Region) Header() hwinfo.Header {
	sig := r.Signature
	if sig == 0 {
		sig = hwinfo.SignatureActive
	}
	gs := r.GroupStride
	if gs == 0 {
		gs = hwinfo.GroupRecordSize
	}
	rs := r.ReadingStride
	if rs == 0 {
		rs = hwinfo.ReadingRecordSize
	}
	groups := hwinfo.Section{Offset: hwinfo.HeaderSize, Stride: gs, Count: uint32(len(r.Groups))}
	return hwinfo.Header{
		Signature:    sig,
		Version:      r.Version,
		Revision:     r.Revision,
		PollTimeUnix: r.PollTime,
		Groups:       groups,
		Readings:     hwinfo.Section{Offset: uint32(groups.End()), Stride: rs, Count: uint32(len(r.Readings))},
	}
}

// Bytes encodes the region image.
func (r Region) Bytes() []byte {
	h := r.Header()
	out := EncodeHeader(h)
	for _, g := range r.Groups {
		out = append(out, EncodeGroup(g, h.Groups.Stride)...)
	}
	for _, rd := range r.Readings {
		out = append(out, EncodeReading(rd, h.Readings.Stride)...)
	}
	if r.Truncate > 0 && r.Truncate <= len(out) {
		out = out[:len(out)-r.Truncate]
	}
	return out
}

// WriteRegion writes r as the region name under dir, replacing any
// previous image.
func WriteRegion(dir, name string, r Region) error {
	path := internalshm.RegionPath(dir, name)
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp")
	if err := os.WriteFile(tmp, r.Bytes(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// RemoveRegion deletes the region name under dir.
func RemoveRegion(dir, name string) error {
	return os.Remove(internalshm.RegionPath(dir, name))
}

// EncodeHeader encodes h at its wire size.
func EncodeHeader(h hwinfo.Header) []byte {
	b := make([]byte, hwinfo.HeaderSize)
	le := binary.LittleEndian
	le.PutUint32(b[0:], h.Signature)
	le.PutUint32(b[4:], h.Version)
	le.PutUint32(b[8:], h.Revision)
	le.PutUint64(b[12:], uint64(h.PollTimeUnix))
	le.PutUint32(b[20:], h.Groups.Offset)
	le.PutUint32(b[24:], h.Groups.Stride)
	le.PutUint32(b[28:], h.Groups.Count)
	le.PutUint32(b[32:], h.Readings.Offset)
	le.PutUint32(b[36:], h.Readings.Stride)
	le.PutUint32(b[40:], h.Readings.Count)
	return b
}

// EncodeGroup encodes g padded with zeros to stride bytes.
func EncodeGroup(g hwinfo.GroupRecord, stride uint32) []byte {
	b := make([]byte, max(stride, hwinfo.GroupRecordSize))
	le := binary.LittleEndian
	le.PutUint32(b[0:], g.ID)
	le.PutUint32(b[4:], g.Instance)
	PutString(b[8:8+hwinfo.LabelLen], g.LabelOrig)
	PutString(b[8+hwinfo.LabelLen:8+2*hwinfo.LabelLen], g.LabelUser)
	return b[:stride]
}

// EncodeReading encodes r padded with zeros to stride bytes.
func EncodeReading(r hwinfo.ReadingRecord, stride uint32) []byte {
	b := make([]byte, max(stride, hwinfo.ReadingRecordSize))
	le := binary.LittleEndian
	le.PutUint32(b[0:], uint32(r.Type))
	le.PutUint32(b[4:], r.Index)
	le.PutUint32(b[8:], r.ID)
	off := 12
	PutString(b[off:off+hwinfo.LabelLen], r.LabelOrig)
	off += hwinfo.LabelLen
	PutString(b[off:off+hwinfo.LabelLen], r.LabelUser)
	off += hwinfo.LabelLen
	PutString(b[off:off+hwinfo.UnitLen], r.Unit)
	off += hwinfo.UnitLen
	for _, v := range []float64{r.Value, r.ValueMin, r.ValueMax, r.ValueAvg} {
		le.PutUint64(b[off:], math.Float64bits(v))
		off += 8
	}
	return b[:stride]
}

// PutString writes s into field as Windows-1252, NUL terminated when it is
// shorter than the field. Characters outside the code page become '?'.
func PutString(field []byte, s string) {
	i := 0
	for _, r := range s {
		if i == len(field) {
			return
		}
		c, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			c = '?'
		}
		field[i] = c
		i++
	}
	for ; i < len(field); i++ {
		field[i] = 0
	}
}
