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
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// wireRecord is implemented by the pointer types of the records that can be
// decoded from a fixed size block.
type wireRecord[T any] interface {
	*T
	wireSize() int
	decodeFrom(b []byte)
}

// decode interprets b as one T. b must hold at least the static wire size of
// T; extra trailing bytes belong to fields this reader does not know.
func decode[T any, P wireRecord[T]](b []byte) (T, error) {
	var v T
	p := P(&v)
	if len(b) == 0 {
		return v, fmt.Errorf("%w: no bytes read", ErrDecode)
	}
	if len(b) < p.wireSize() {
		return v, fmt.Errorf("%w: %d byte block, %T needs %d", ErrDecode, len(b), v, p.wireSize())
	}
	p.decodeFrom(b)
	return v, nil
}

func (h *Header) wireSize() int { return HeaderSize }

func (h *Header) decodeFrom(b []byte) {
	h.Signature = u32(b, hdrSignature)
	h.Version = u32(b, hdrVersion)
	h.Revision = u32(b, hdrRevision)
	h.PollTimeUnix = int64(binary.LittleEndian.Uint64(b[hdrPollTime:]))
	h.Groups = Section{
		Offset: u32(b, hdrSensorOffset),
		Stride: u32(b, hdrSensorStride),
		Count:  u32(b, hdrSensorCount),
	}
	h.Readings = Section{
		Offset: u32(b, hdrReadingOffset),
		Stride: u32(b, hdrReadingStride),
		Count:  u32(b, hdrReadingCount),
	}
}

func (g *GroupRecord) wireSize() int { return GroupRecordSize }

func (g *GroupRecord) decodeFrom(b []byte) {
	g.ID = u32(b, grpID)
	g.Instance = u32(b, grpInstance)
	g.LabelOrig = fixedString(b[grpLabelOrig : grpLabelOrig+LabelLen])
	g.LabelUser = fixedString(b[grpLabelUser : grpLabelUser+LabelLen])
}

func (r *ReadingRecord) wireSize() int { return ReadingRecordSize }

func (r *ReadingRecord) decodeFrom(b []byte) {
	r.Type = SensorType(u32(b, rdType))
	r.Index = u32(b, rdIndex)
	r.ID = u32(b, rdID)
	r.LabelOrig = fixedString(b[rdLabelOrig : rdLabelOrig+LabelLen])
	r.LabelUser = fixedString(b[rdLabelUser : rdLabelUser+LabelLen])
	r.Unit = fixedString(b[rdUnit : rdUnit+UnitLen])
	r.Value = f64(b, rdValue)
	r.ValueMin = f64(b, rdValueMin)
	r.ValueMax = f64(b, rdValueMax)
	r.ValueAvg = f64(b, rdValueAvg)
}

// checkSignature rejects headers the producer did not mark as live.
func checkSignature(h Header) error {
	switch h.Signature {
	case SignatureActive:
		return nil
	case SignatureDead:
		return fmt.Errorf("%w: producer stopped sharing (signature DEAD)", ErrDecode)
	default:
		return fmt.Errorf("%w: signature %#08x, want %#08x", ErrDecode, h.Signature, SignatureActive)
	}
}

func u32(b []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(b[off:])
}

func f64(b []byte, off int) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b[off:]))
}

// fixedString decodes a fixed width Windows-1252 field. The text ends at the
// first NUL; a field without one uses all of its bytes.
func fixedString(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	ascii := true
	for _, c := range field {
		if c >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return string(field)
	}
	var sb strings.Builder
	sb.Grow(len(field) + len(field)/2)
	for _, c := range field {
		sb.WriteRune(charmap.Windows1252.DecodeByte(c))
	}
	return sb.String()
}
