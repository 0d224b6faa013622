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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleResolvesGroups(t *testing.T) {
	groups := []GroupRecord{
		{ID: 1, Instance: 0, LabelOrig: "CPU [#0]", LabelUser: "CPU"},
		{ID: 7, Instance: 0, LabelOrig: "GPU [#0]", LabelUser: "GPU"},
	}
	readings := []ReadingRecord{{
		Type:      SensorTypeTemperature,
		Index:     1,
		ID:        0x1000000,
		LabelOrig: "GPU Temperature",
		LabelUser: "GPU Temp",
		Unit:      "°C",
		Value:     54,
		ValueMin:  31,
		ValueMax:  77.5,
		ValueAvg:  48.25,
	}}

	out, err := Assemble(readings, groups)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, SensorReading{
		ID:              0x1000000,
		Index:           1,
		Type:            SensorTypeTemperature,
		LabelOrig:       "GPU Temperature",
		LabelUser:       "GPU Temp",
		Unit:            "°C",
		Value:           54,
		ValueMin:        31,
		ValueMax:        77.5,
		ValueAvg:        48.25,
		GroupID:         7,
		GroupInstanceID: 0,
		GroupLabelUser:  "GPU",
		GroupLabelOrig:  "GPU [#0]",
	}, out[0])
}

func TestAssembleReportsOutOfRange(t *testing.T) {
	groups := []GroupRecord{{ID: 1}, {ID: 2}}
	readings := []ReadingRecord{
		{ID: 10, Index: 0},
		{ID: 11, Index: 2},
		{ID: 12, Index: 1},
		{ID: 13, Index: 99},
	}

	out, err := Assemble(readings, groups)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.ErrorIs(t, err, ErrDecode)

	require.Len(t, out, 2)
	assert.Equal(t, uint32(10), out[0].ID)
	assert.Equal(t, uint32(1), out[0].GroupID)
	assert.Equal(t, uint32(12), out[1].ID)
	assert.Equal(t, uint32(2), out[1].GroupID)

	var ie *IndexError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 1, ie.Position)
	assert.Equal(t, uint32(11), ie.ReadingID)
	assert.Equal(t, uint32(2), ie.Index)
	assert.Equal(t, 2, ie.Groups)
	assert.Contains(t, err.Error(), "refers to group 99 of 2")
}

func TestAssembleEmpty(t *testing.T) {
	out, err := Assemble(nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Empty(t, out)

	out, err = Assemble([]ReadingRecord{{Index: 0}}, nil)
	require.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Empty(t, out)
}

func TestSensorTypeString(t *testing.T) {
	assert.Equal(t, "none", SensorTypeNone.String())
	assert.Equal(t, "temperature", SensorTypeTemperature.String())
	assert.Equal(t, "usage", SensorTypeUsage.String())
	assert.Equal(t, "other", SensorTypeOther.String())
	assert.Equal(t, "SensorType(9)", SensorType(9).String())
	assert.True(t, SensorTypeOther.Known())
	assert.False(t, SensorType(9).Known())
}

func TestSensorReadingLabels(t *testing.T) {
	r := SensorReading{LabelOrig: "CPU Package", GroupLabelOrig: "CPU [#0]"}
	assert.Equal(t, "CPU Package", r.Label())
	assert.Equal(t, "CPU [#0]", r.GroupLabel())

	r.LabelUser, r.GroupLabelUser = "Package", "CPU"
	assert.Equal(t, "Package", r.Label())
	assert.Equal(t, "CPU", r.GroupLabel())
}
