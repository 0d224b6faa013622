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

import "strconv"

// SensorType tags what a reading measures.
type SensorType uint32

const (
	SensorTypeNone SensorType = iota
	SensorTypeTemperature
	SensorTypeVoltage
	SensorTypeFan
	SensorTypeCurrent
	SensorTypePower
	SensorTypeClock
	SensorTypeUsage
	SensorTypeOther
)

var sensorTypeNames = [...]string{
	SensorTypeNone:        "none",
	SensorTypeTemperature: "temperature",
	SensorTypeVoltage:     "voltage",
	SensorTypeFan:         "fan",
	SensorTypeCurrent:     "current",
	SensorTypePower:       "power",
	SensorTypeClock:       "clock",
	SensorTypeUsage:       "usage",
	SensorTypeOther:       "other",
}

func (t SensorType) String() string {
	if int(t) < len(sensorTypeNames) {
		return sensorTypeNames[t]
	}
	return "SensorType(" + strconv.FormatUint(uint64(t), 10) + ")"
}

// Known reports whether t is one of the defined tags.
func (t SensorType) Known() bool {
	return t <= SensorTypeOther
}

// SensorReading is one reading joined with the group that owns it. It is a
// snapshot of a single poll and is never updated.
type SensorReading struct {
	ID        uint32
	Index     uint32
	Type      SensorType
	LabelOrig string
	LabelUser string
	Unit      string
	Value     float64
	ValueMin  float64
	ValueMax  float64
	ValueAvg  float64

	GroupID         uint32
	GroupInstanceID uint32
	GroupLabelUser  string
	GroupLabelOrig  string
}

// Label returns the user label, or the original one when the user did not
// rename the reading.
func (r SensorReading) Label() string {
	if r.LabelUser != "" {
		return r.LabelUser
	}
	return r.LabelOrig
}

// GroupLabel is Label for the owning group.
func (r SensorReading) GroupLabel() string {
	if r.GroupLabelUser != "" {
		return r.GroupLabelUser
	}
	return r.GroupLabelOrig
}
