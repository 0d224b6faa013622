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
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReader struct {
	n    atomic.Int64
	fail atomic.Bool
}

func (c *countingReader) ReadSnapshot(_ context.Context, src Source) (Snapshot, error) {
	n := c.n.Add(1)
	if c.fail.Load() {
		return Snapshot{Source: src}, dataError("read header", DefaultLocalName, ErrDecode)
	}
	return Snapshot{
		Source:   src,
		Present:  true,
		Header:   Header{Signature: SignatureActive, PollTimeUnix: n},
		Readings: []SensorReading{{ID: uint32(n)}},
	}, nil
}

func TestPollerDeliversInOrder(t *testing.T) {
	SetLogLevel(LevelNoPrint)
	defer SetLogLevel(LevelWarn)

	r := &countingReader{}
	p := NewPoller(r, PollerConfig{Source: Remote(1), Interval: 5 * time.Millisecond, Capacity: 64})
	p.Start(context.Background())
	defer p.Stop()

	var last int64
	for i := 0; i < 3; i++ {
		snap, err := p.Next(time.Second)
		require.NoError(t, err)
		assert.Equal(t, Remote(1), snap.Source)
		assert.Greater(t, snap.Header.PollTimeUnix, last)
		last = snap.Header.PollTimeUnix
	}
	assert.NoError(t, p.LastError())
}

func TestPollerDropsOldest(t *testing.T) {
	r := &countingReader{}
	p := NewPoller(r, PollerConfig{Interval: time.Millisecond, Capacity: 2})
	p.Start(context.Background())
	defer p.Stop()

	require.Eventually(t, func() bool { return p.Dropped() > 0 }, time.Second, time.Millisecond)
	assert.LessOrEqual(t, p.Len(), uint64(2))

	snap, err := p.Next(time.Second)
	require.NoError(t, err)
	assert.Greater(t, snap.Header.PollTimeUnix, int64(1))
}

func TestPollerRemembersErrors(t *testing.T) {
	SetLogLevel(LevelNoPrint)
	defer SetLogLevel(LevelWarn)

	r := &countingReader{}
	r.fail.Store(true)
	p := NewPoller(r, PollerConfig{Interval: time.Millisecond})
	p.Start(context.Background())
	defer p.Stop()

	require.Eventually(t, func() bool { return p.LastError() != nil }, time.Second, time.Millisecond)
	assert.Equal(t, KindDecode, KindOf(p.LastError()))
	_, err := p.Next(10 * time.Millisecond)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	r.fail.Store(false)
	_, err = p.Next(time.Second)
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return p.LastError() == nil }, time.Second, time.Millisecond)
}

func TestPollerStop(t *testing.T) {
	p := NewPoller(&countingReader{}, PollerConfig{Interval: time.Hour})
	assert.Equal(t, time.Hour, p.config.Interval)
	p.Start(context.Background())

	_, err := p.Next(time.Second)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := p.Next(time.Minute)
		done <- err
	}()
	time.Sleep(10 * time.Millisecond)
	p.Stop()
	p.Stop()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, ErrPollerStopped))
	case <-time.After(time.Second):
		t.Fatal("Next did not return after Stop")
	}
}

func TestPollerContextEndsLoop(t *testing.T) {
	r := &countingReader{}
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(r, PollerConfig{Interval: time.Millisecond})
	p.Start(ctx)
	require.Eventually(t, func() bool { return r.n.Load() > 2 }, time.Second, time.Millisecond)
	cancel()
	p.wg.Wait()
	n := r.n.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, r.n.Load())
	p.Stop()
}

func TestNewPollerDefaults(t *testing.T) {
	p := NewPoller(&countingReader{}, PollerConfig{})
	assert.Equal(t, time.Second, p.config.Interval)
	assert.Equal(t, uint64(16), p.config.Capacity)
	assert.Equal(t, uint64(0), p.Len())
	p.Stop()
}
