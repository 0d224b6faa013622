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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	var out bytes.Buffer
	SetLogOutput(&out)
	defer SetLogOutput(nil)
	defer SetLogLevel(LevelWarn)

	internalLogger.debugf("hidden %d", 1)
	assert.Zero(t, out.Len())

	internalLogger.warnf("skipped %d readings", 2)
	line := out.String()
	assert.Contains(t, line, "Warn")
	assert.Contains(t, line, "skipped 2 readings")
	assert.Contains(t, line, "debug_test.go:")
	assert.Contains(t, line, " hwinfo ")

	out.Reset()
	SetLogLevel(LevelTrace)
	internalLogger.tracef("trace")
	assert.Contains(t, out.String(), "Trace")

	out.Reset()
	SetLogLevel(LevelNoPrint)
	internalLogger.errorf("nothing")
	assert.Zero(t, out.Len())

	SetLogLevel(42)
	internalLogger.errorf("still nothing")
	assert.Zero(t, out.Len())
}
