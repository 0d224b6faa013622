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
	cmap "github.com/orcaman/concurrent-map/v2"
)

// groupCache keeps the last group array read from each region. An entry is
// reused only while the header reports the same group count.
//
// The count is the only invalidation signal the producer offers: if groups
// are renamed or swapped without the count changing, cached labels go stale
// until the count moves again.
type groupCache struct {
	m cmap.ConcurrentMap[string, []GroupRecord]
}

func newGroupCache() *groupCache {
	return &groupCache{m: cmap.New[[]GroupRecord]()}
}

func (c *groupCache) lookup(name string, count uint32) ([]GroupRecord, bool) {
	groups, ok := c.m.Get(name)
	if !ok || uint64(len(groups)) != uint64(count) {
		return nil, false
	}
	return groups, true
}

func (c *groupCache) store(name string, groups []GroupRecord) {
	c.m.Set(name, groups)
}

func (c *groupCache) forget(name string) {
	c.m.Remove(name)
}

func (c *groupCache) len() int {
	return c.m.Count()
}
