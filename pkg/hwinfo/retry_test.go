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
	"context"
	"fmt"
	"io/fs"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantRetries(n uint64) backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Millisecond), n)
}

func TestRetryTornRead(t *testing.T) {
	calls := 0
	want := []SensorReading{{ID: 1, Value: 42}}
	readings, err := Retry(context.Background(), constantRetries(5), func(context.Context) ([]SensorReading, error) {
		calls++
		switch calls {
		case 1:
			return nil, dataError("read readings", DefaultLocalName, fmt.Errorf("%w: short", ErrIO))
		case 2:
			return nil, dataError("read header", DefaultLocalName, ErrDecode)
		}
		return want, nil
	})
	require.NoError(t, err)
	assert.Equal(t, want, readings)
	assert.Equal(t, 3, calls)
}

func TestRetryPermanent(t *testing.T) {
	calls := 0
	denied := regionError("open", DefaultLocalName, fs.ErrPermission)
	_, err := Retry(context.Background(), constantRetries(5), func(context.Context) ([]SensorReading, error) {
		calls++
		return nil, denied
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, KindAccessDenied, KindOf(err))
}

func TestRetryGivesUp(t *testing.T) {
	calls := 0
	_, err := Retry(context.Background(), constantRetries(2), func(context.Context) ([]SensorReading, error) {
		calls++
		return nil, dataError("read header", DefaultLocalName, ErrDecode)
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecode)
	assert.Equal(t, 3, calls)
}

func TestRetryCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Retry(ctx, backoff.NewConstantBackOff(time.Millisecond), func(context.Context) ([]SensorReading, error) {
		calls++
		cancel()
		return nil, dataError("read header", DefaultLocalName, ErrDecode)
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDefaultRetryBackOff(t *testing.T) {
	b := DefaultRetryBackOff()
	b.Reset()
	for i := 0; i < 3; i++ {
		d := b.NextBackOff()
		assert.NotEqual(t, backoff.Stop, d)
		assert.LessOrEqual(t, d, time.Second)
	}
	assert.Equal(t, backoff.Stop, b.NextBackOff())
}
