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
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	internalshm "github.com/srediag/hwinfo-shm/internal/shm"
)

// Snapshot is the result of one read of one region.
type Snapshot struct {
	Source Source
	// Present is false when the region did not exist. Header is zero and
	// Readings empty in that case.
	Present  bool
	Header   Header
	Readings []SensorReading
}

// Reader reads HWiNFO shared memory regions. It is safe for concurrent use.
// Every read maps the region afresh and unmaps it before returning.
type Reader struct {
	config  Config
	guard   *guard
	cache   *groupCache
	metrics *metrics

	closeOnce sync.Once
	closeErr  error
}

// NewReader returns a Reader for config. A nil config means DefaultConfig.
// The producer need not be running.
func NewReader(config *Config) (*Reader, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := VerifyConfig(config); err != nil {
		return nil, err
	}
	m, err := newMetrics(config)
	if err != nil {
		return nil, err
	}
	r := &Reader{
		config:  *config,
		metrics: m,
		guard: newGuard(internalshm.MutexOptions{
			Name: config.MutexName,
			Dir:  config.ShmDir,
		}, config.MutexTimeout, m),
	}
	if config.CacheGroups {
		r.cache = newGroupCache()
	}
	if _, err := r.guard.handle(); err != nil {
		internalLogger.debugf("mutex %s not available yet: %v", config.MutexName, err)
	}
	return r, nil
}

// ReadLocal reads the local producer's readings. It returns an empty slice
// and no error when the producer is not sharing.
func (r *Reader) ReadLocal(ctx context.Context) ([]SensorReading, error) {
	return r.Read(ctx, Local())
}

// ReadRemote reads the readings of remote connection index.
func (r *Reader) ReadRemote(ctx context.Context, index uint) ([]SensorReading, error) {
	return r.Read(ctx, Remote(index))
}

// Read reads the readings of src.
func (r *Reader) Read(ctx context.Context, src Source) ([]SensorReading, error) {
	snap, err := r.ReadSnapshot(ctx, src)
	if err != nil {
		return nil, err
	}
	return snap.Readings, nil
}

// RegionName returns the region name src maps to.
func (r *Reader) RegionName(src Source) string {
	return r.config.RegionName(src)
}

// ReadSnapshot reads src and returns the readings with the header they were
// decoded from. ctx is checked once before starting and carries the trace
// span; an in-flight read is not interrupted.
func (r *Reader) ReadSnapshot(ctx context.Context, src Source) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{Source: src}, err
	}
	name := r.RegionName(src)
	ctx, span := r.metrics.tracer.Start(ctx, "hwinfo.Read", trace.WithAttributes(
		attribute.String("hwinfo.source", src.String()),
		attribute.String("hwinfo.region", name),
	))
	defer span.End()

	start := time.Now()
	snap, err := withLock(r.guard, func() (Snapshot, error) {
		return r.readRegion(ctx, src, name)
	})
	r.metrics.readDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		r.metrics.observeRead(ctx, src, outcomeOK, len(snap.Readings))
		span.SetAttributes(attribute.Int("hwinfo.readings", len(snap.Readings)))
		return snap, nil
	case errors.Is(err, ErrRegionNotFound):
		internalLogger.debugf("region %s not present: %v", name, err)
		r.metrics.observeRead(ctx, src, outcomeNotFound, 0)
		if r.cache != nil {
			r.cache.forget(name)
		}
		span.SetAttributes(attribute.Bool("hwinfo.present", false))
		return Snapshot{Source: src, Readings: []SensorReading{}}, nil
	default:
		internalLogger.debugf("read %s: %v", name, err)
		r.metrics.observeRead(ctx, src, outcomeError, 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, KindOf(err).String())
		return Snapshot{Source: src}, err
	}
}

// readRegion runs under the guard.
func (r *Reader) readRegion(ctx context.Context, src Source, name string) (Snapshot, error) {
	reg, err := openRegion(ctx, name, r.config.ShmDir)
	if err != nil {
		return Snapshot{}, err
	}
	defer reg.close(ctx)

	h, err := reg.readHeader()
	if err != nil {
		return Snapshot{}, err
	}
	internalLogger.tracef("%s: version %d.%d, %d groups, %d readings", name,
		h.Version, h.Revision, h.Groups.Count, h.Readings.Count)

	groups, err := r.readGroups(reg, h)
	if err != nil {
		return Snapshot{}, err
	}
	records, err := readArray[ReadingRecord](reg, "read readings", h.Readings)
	if err != nil {
		return Snapshot{}, err
	}

	readings, err := Assemble(records, groups)
	if err != nil {
		if r.config.StrictIndex {
			return Snapshot{}, dataError("assemble", name, err)
		}
		skipped := len(records) - len(readings)
		r.metrics.skipped.Add(float64(skipped))
		internalLogger.warnf("%s: skipped %d of %d readings: %v", name, skipped, len(records), err)
	}

	return Snapshot{
		Source:   src,
		Present:  true,
		Header:   h,
		Readings: readings,
	}, nil
}

func (r *Reader) readGroups(reg *region, h Header) ([]GroupRecord, error) {
	if r.cache != nil {
		if groups, ok := r.cache.lookup(reg.name, h.Groups.Count); ok {
			r.metrics.observeCache(true)
			return groups, nil
		}
		r.metrics.observeCache(false)
	}
	groups, err := readArray[GroupRecord](reg, "read groups", h.Groups)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		r.cache.store(reg.name, groups)
	}
	return groups, nil
}

// Exists reports whether the region of src is currently mapped by the
// producer. It does not take the mutex.
func (r *Reader) Exists(ctx context.Context, src Source) (bool, error) {
	reg, err := openRegion(ctx, r.RegionName(src), r.config.ShmDir)
	if err != nil {
		if errors.Is(err, ErrRegionNotFound) {
			return false, nil
		}
		return false, err
	}
	reg.close(ctx)
	return true, nil
}

// Close releases the mutex handle. Reads after Close reopen it.
func (r *Reader) Close() error {
	r.closeOnce.Do(func() {
		r.closeErr = r.guard.close()
	})
	return r.closeErr
}
