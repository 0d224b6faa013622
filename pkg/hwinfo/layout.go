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

import "time"

// Wire layout of the SM2 region. All records are packed (1-byte alignment)
// and little endian. Offsets are derived from field sizes.
const (
	// LabelLen is the size of every label field.
	LabelLen = 128
	// UnitLen is the size of the unit field of a reading.
	UnitLen = 16

	sizeU32 = 4
	sizeI64 = 8
	sizeF64 = 8
)

// Header field offsets.
const (
	hdrSignature     = 0
	hdrVersion       = hdrSignature + sizeU32
	hdrRevision      = hdrVersion + sizeU32
	hdrPollTime      = hdrRevision + sizeU32
	hdrSensorOffset  = hdrPollTime + sizeI64
	hdrSensorStride  = hdrSensorOffset + sizeU32
	hdrSensorCount   = hdrSensorStride + sizeU32
	hdrReadingOffset = hdrSensorCount + sizeU32
	hdrReadingStride = hdrReadingOffset + sizeU32
	hdrReadingCount  = hdrReadingStride + sizeU32

	// HeaderSize is the size of the header at offset 0.
	HeaderSize = hdrReadingCount + sizeU32
)

// Group record field offsets.
const (
	grpID        = 0
	grpInstance  = grpID + sizeU32
	grpLabelOrig = grpInstance + sizeU32
	grpLabelUser = grpLabelOrig + LabelLen

	// GroupRecordSize is the smallest stride a group section may declare.
	GroupRecordSize = grpLabelUser + LabelLen
)

// Reading record field offsets.
const (
	rdType      = 0
	rdIndex     = rdType + sizeU32
	rdID        = rdIndex + sizeU32
	rdLabelOrig = rdID + sizeU32
	rdLabelUser = rdLabelOrig + LabelLen
	rdUnit      = rdLabelUser + LabelLen
	rdValue     = rdUnit + UnitLen
	rdValueMin  = rdValue + sizeF64
	rdValueMax  = rdValueMin + sizeF64
	rdValueAvg  = rdValueMax + sizeF64

	// ReadingRecordSize is the smallest stride a reading section may declare.
	ReadingRecordSize = rdValueAvg + sizeF64
)

const (
	// SignatureActive is "HWiS": the producer is sharing.
	SignatureActive uint32 = 0x53695748
	// SignatureDead is "DEAD": the producer stopped sharing but the region
	// is still mapped by someone.
	SignatureDead uint32 = 0x44414544
)

// Section locates one record array inside the region.
type Section struct {
	Offset uint32
	// Stride is the size of one element as published by the producer. Newer
	// producers may append fields, so it can exceed the static record size.
	Stride uint32
	Count  uint32
}

// End returns the offset one past the last element.
func (s Section) End() uint64 {
	return uint64(s.Offset) + uint64(s.Stride)*uint64(s.Count)
}

// Header is the fixed block at offset 0. Section layout may change between
// polls and must be read again every time.
type Header struct {
	Signature uint32
	Version   uint32
	Revision  uint32
	// PollTimeUnix is the producer's last poll, in seconds since the epoch.
	PollTimeUnix int64

	Groups   Section
	Readings Section
}

// PollTime returns the producer's last poll time.
func (h Header) PollTime() time.Time {
	return time.Unix(h.PollTimeUnix, 0)
}

// GroupRecord is one sensor group: a chip or logical source such as "GPU #0".
type GroupRecord struct {
	ID        uint32
	Instance  uint32
	LabelOrig string
	LabelUser string
}

// ReadingRecord is one reading as laid out on the wire. Index refers to the
// group array of the same snapshot.
type ReadingRecord struct {
	Type      SensorType
	Index     uint32
	ID        uint32
	LabelOrig string
	LabelUser string
	Unit      string
	Value     float64
	ValueMin  float64
	ValueMax  float64
	ValueAvg  float64
}
