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
	"sync"

	"github.com/panjf2000/ants/v2"
)

// SourceReader reads one source. *Reader implements it.
type SourceReader interface {
	Read(ctx context.Context, src Source) ([]SensorReading, error)
}

// ScanResult is the outcome for one source of a Scan.
type ScanResult struct {
	Source   Source
	Readings []SensorReading
	Err      error
}

// Scan reads the local source and remote connections 0..remotes-1, at most
// workers at a time. Each source is an independent read call; results come
// back in source order. Absent sources have empty Readings and no error.
func Scan(ctx context.Context, r SourceReader, remotes uint, workers int) ([]ScanResult, error) {
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("scan pool: %w", err)
	}
	defer pool.Release()

	sources := make([]Source, 0, remotes+1)
	sources = append(sources, Local())
	for i := uint(0); i < remotes; i++ {
		sources = append(sources, Remote(i))
	}

	results := make([]ScanResult, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		i, src := i, src
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			readings, err := r.Read(ctx, src)
			results[i] = ScanResult{Source: src, Readings: readings, Err: err}
		}); err != nil {
			wg.Done()
			internalLogger.errorf("scan %s: %v", src, err)
			results[i] = ScanResult{Source: src, Err: fmt.Errorf("scan %s: %w", src, err)}
		}
	}
	wg.Wait()
	return results, nil
}
