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

import "errors"

// Assemble joins every reading with groups[reading.Index].
//
// A reading whose index is outside groups is left out and reported as an
// *IndexError. All such errors are joined in the returned error; the
// readings that did resolve are returned alongside it, so a caller may use
// them or discard the batch.
func Assemble(readings []ReadingRecord, groups []GroupRecord) ([]SensorReading, error) {
	out := make([]SensorReading, 0, len(readings))
	var errs []error
	for i, rd := range readings {
		if uint64(rd.Index) >= uint64(len(groups)) {
			errs = append(errs, &IndexError{
				Position:  i,
				ReadingID: rd.ID,
				Index:     rd.Index,
				Groups:    len(groups),
			})
			continue
		}
		g := groups[rd.Index]
		out = append(out, SensorReading{
			ID:              rd.ID,
			Index:           rd.Index,
			Type:            rd.Type,
			LabelOrig:       rd.LabelOrig,
			LabelUser:       rd.LabelUser,
			Unit:            rd.Unit,
			Value:           rd.Value,
			ValueMin:        rd.ValueMin,
			ValueMax:        rd.ValueMax,
			ValueAvg:        rd.ValueAvg,
			GroupID:         g.ID,
			GroupInstanceID: g.Instance,
			GroupLabelUser:  g.LabelUser,
			GroupLabelOrig:  g.LabelOrig,
		})
	}
	return out, errors.Join(errs...)
}
