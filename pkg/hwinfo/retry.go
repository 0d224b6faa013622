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
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ReadFunc is a read call such as Reader.ReadLocal.
type ReadFunc func(ctx context.Context) ([]SensorReading, error)

// Retry calls read until it succeeds or b gives up. Only decode and short
// read failures are retried, since those are what a torn snapshot produces.
// Any other failure, and a done ctx, end the loop immediately.
//
// Reader never retries by itself; Retry is for callers that prefer another
// mutex cycle over surfacing a torn read.
func Retry(ctx context.Context, b backoff.BackOff, read ReadFunc) ([]SensorReading, error) {
	op := func() ([]SensorReading, error) {
		readings, err := read(ctx)
		if err == nil {
			return readings, nil
		}
		switch KindOf(err) {
		case KindDecode, KindIO, KindIndexOutOfRange:
			internalLogger.debugf("retrying read: %v", err)
			return nil, err
		default:
			return nil, backoff.Permanent(err)
		}
	}
	return backoff.RetryWithData(op, backoff.WithContext(b, ctx))
}

// DefaultRetryBackOff is a short policy suited to Retry: a few attempts a
// producer poll apart at most.
func DefaultRetryBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	return backoff.WithMaxRetries(b, 3)
}
