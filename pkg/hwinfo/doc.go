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

// Package hwinfo reads the sensor telemetry HWiNFO publishes in its "SM2"
// shared memory region.
//
// A Reader takes the producer's named mutex with a bounded wait, maps the
// region read-only, decodes the header and both record sections, and joins
// each reading to its sensor group:
//
//	r, err := hwinfo.NewReader(hwinfo.DefaultConfig())
//	if err != nil {
//	  return err
//	}
//	defer r.Close()
//	readings, err := r.ReadLocal(ctx)
//
// A region that does not exist yields an empty result and no error; the
// producer is simply not running. Malformed data yields an error whose Kind
// is KindDecode or KindIO.
//
// The mutex is advisory. When the wait times out the region is read anyway,
// so a snapshot can occasionally be torn by a concurrent producer update.
package hwinfo
