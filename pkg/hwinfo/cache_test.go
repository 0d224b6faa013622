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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGroupCache(t *testing.T) {
	c := newGroupCache()
	groups := []GroupRecord{{ID: 1}, {ID: 2}}

	_, ok := c.lookup(DefaultLocalName, 2)
	assert.False(t, ok)

	c.store(DefaultLocalName, groups)
	got, ok := c.lookup(DefaultLocalName, 2)
	assert.True(t, ok)
	assert.Equal(t, groups, got)

	_, ok = c.lookup(DefaultLocalName, 3)
	assert.False(t, ok)
	_, ok = c.lookup(DefaultRemotePrefix+"0", 2)
	assert.False(t, ok)

	c.store(DefaultRemotePrefix+"0", nil)
	_, ok = c.lookup(DefaultRemotePrefix+"0", 0)
	assert.True(t, ok)
	assert.Equal(t, 2, c.len())

	c.forget(DefaultLocalName)
	_, ok = c.lookup(DefaultLocalName, 2)
	assert.False(t, ok)
	assert.Equal(t, 1, c.len())
}
