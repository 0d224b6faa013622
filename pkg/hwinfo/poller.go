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
	"sync"
	"sync/atomic"
	"time"

	"github.com/Workiva/go-datastructures/queue"
)

var (
	// ErrPollerStopped is returned by Next once the poller is stopped.
	ErrPollerStopped = errors.New("poller stopped")
	// ErrNoSnapshot is returned by Next when no snapshot arrived in time.
	ErrNoSnapshot = errors.New("no snapshot available")
)

// PollerConfig configures a Poller.
type PollerConfig struct {
	Source   Source
	Interval time.Duration
	// Capacity is the number of snapshots kept for consumers. When it is
	// full the oldest snapshot is dropped. Rounded up to a power of two.
	Capacity uint64
}

// Poller reads one source on an interval and queues the snapshots. Failed
// reads are logged and remembered in LastError; they are not queued.
type Poller struct {
	r      SnapshotReader
	config PollerConfig
	rb     *queue.RingBuffer

	lastErr atomic.Pointer[error]
	dropped atomic.Uint64

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// SnapshotReader reads one snapshot. *Reader implements it.
type SnapshotReader interface {
	ReadSnapshot(ctx context.Context, src Source) (Snapshot, error)
}

// NewPoller returns a stopped poller. Call Start to begin polling.
func NewPoller(r SnapshotReader, config PollerConfig) *Poller {
	if config.Interval <= 0 {
		config.Interval = time.Second
	}
	if config.Capacity == 0 {
		config.Capacity = 16
	}
	return &Poller{
		r:      r,
		config: config,
		rb:     queue.NewRingBuffer(config.Capacity),
		stop:   make(chan struct{}),
	}
}

// Start polls until ctx is done or Stop is called. The first read happens
// immediately.
func (p *Poller) Start(ctx context.Context) {
	internalLogger.infof("polling %s every %v", p.config.Source, p.config.Interval)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.config.Interval)
		defer ticker.Stop()
		for {
			p.poll(ctx)
			select {
			case <-ctx.Done():
				return
			case <-p.stop:
				return
			case <-ticker.C:
			}
		}
	}()
}

func (p *Poller) poll(ctx context.Context) {
	snap, err := p.r.ReadSnapshot(ctx, p.config.Source)
	if err != nil {
		p.lastErr.Store(&err)
		internalLogger.warnf("poll %s: %v", p.config.Source, err)
		return
	}
	p.lastErr.Store(nil)
	p.offer(snap)
}

// offer queues snap, evicting the oldest snapshot while the ring is full.
func (p *Poller) offer(snap Snapshot) {
	for {
		ok, err := p.rb.Offer(snap)
		if err != nil || ok {
			return
		}
		if _, err := p.rb.Poll(time.Millisecond); err == nil {
			p.dropped.Add(1)
		}
	}
}

// Next waits up to timeout for the oldest queued snapshot.
func (p *Poller) Next(timeout time.Duration) (Snapshot, error) {
	if timeout <= 0 {
		timeout = time.Nanosecond
	}
	item, err := p.rb.Poll(timeout)
	switch {
	case errors.Is(err, queue.ErrDisposed):
		return Snapshot{}, ErrPollerStopped
	case errors.Is(err, queue.ErrTimeout):
		return Snapshot{}, ErrNoSnapshot
	case err != nil:
		return Snapshot{}, err
	}
	return item.(Snapshot), nil
}

// Len returns the number of queued snapshots.
func (p *Poller) Len() uint64 {
	return p.rb.Len()
}

// Dropped returns how many snapshots were evicted unread.
func (p *Poller) Dropped() uint64 {
	return p.dropped.Load()
}

// LastError returns the error of the latest poll, or nil if it succeeded.
func (p *Poller) LastError() error {
	if e := p.lastErr.Load(); e != nil {
		return *e
	}
	return nil
}

// Stop ends polling and wakes consumers blocked in Next.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
		p.wg.Wait()
		p.rb.Dispose()
	})
}
