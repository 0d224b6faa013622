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

//go:build linux

package shm

import (
	"context"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type PlatformTestSuite struct {
	suite.Suite
	dir string
}

func (s *PlatformTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *PlatformTestSuite) TestRegionPath() {
	s.Equal("/dev/shm/Global_HWiNFO_SENS_SM2", RegionPath("", `Global\HWiNFO_SENS_SM2`))
	s.Equal(s.dir+"/a_b_c", RegionPath(s.dir, "a/b:c"))
}

func (s *PlatformTestSuite) TestMapMissingRegion() {
	r, err := MapRegion(context.Background(), MapOptions{Name: `Global\missing`, Dir: s.dir})
	s.Require().Error(err)
	s.Nil(r)
	s.ErrorIs(err, fs.ErrNotExist)
}

func (s *PlatformTestSuite) TestMapEmptyRegion() {
	s.Require().NoError(os.WriteFile(RegionPath(s.dir, "empty"), nil, 0o644))
	_, err := MapRegion(context.Background(), MapOptions{Name: "empty", Dir: s.dir})
	s.ErrorIs(err, ErrEmptyRegion)
}

func (s *PlatformTestSuite) TestMapAndUnmap() {
	content := []byte("hello,hwinfo!")
	s.Require().NoError(os.WriteFile(RegionPath(s.dir, `Global\region`), content, 0o644))

	ctx := context.Background()
	r, err := MapRegion(ctx, MapOptions{Name: `Global\region`, Dir: s.dir})
	s.Require().NoError(err)
	s.Equal(len(content), r.Len())
	s.Equal(content, r.Addr)
	s.Equal(`Global\region`, r.Name)

	s.Require().NoError(UnmapRegion(ctx, r))
	s.Nil(r.Addr)
	// A second unmap is harmless.
	s.Require().NoError(UnmapRegion(ctx, r))
	s.Require().NoError(UnmapRegion(ctx, nil))
}

func (s *PlatformTestSuite) TestMutexExcludes() {
	m, err := OpenMutex(MutexOptions{Name: `Global\mutex`, Dir: s.dir})
	s.Require().NoError(err)
	defer m.Close() //nolint:errcheck // test cleanup

	held, err := m.Acquire(time.Second)
	s.Require().NoError(err)
	s.Equal(LockAcquired, held.State)

	start := time.Now()
	waiting, err := m.Acquire(30 * time.Millisecond)
	s.Require().NoError(err)
	s.Equal(LockTimeout, waiting.State)
	s.GreaterOrEqual(time.Since(start), 30*time.Millisecond)
	s.ErrorIs(waiting.Release(), ErrNotHeld)

	s.Require().NoError(held.Release())
	// Releasing twice does nothing.
	s.Require().NoError(held.Release())

	again, err := m.Acquire(0)
	s.Require().NoError(err)
	s.Equal(LockAcquired, again.State)
	s.Require().NoError(again.Release())
}

func (s *PlatformTestSuite) TestMutexOpenFailure() {
	_, err := OpenMutex(MutexOptions{})
	s.Error(err)

	m, err := OpenMutex(MutexOptions{Name: "lock", Dir: s.dir + "/does/not/exist"})
	s.Require().NoError(err)
	_, err = m.Acquire(time.Millisecond)
	s.ErrorIs(err, fs.ErrNotExist)
}

func (s *PlatformTestSuite) TestLockStateString() {
	s.Equal("acquired", LockAcquired.String())
	s.Equal("abandoned", LockAbandoned.String())
	s.Equal("timeout", LockTimeout.String())
	s.Equal("unknown", LockState(42).String())
}

func TestPlatformTestSuite(t *testing.T) {
	suite.Run(t, new(PlatformTestSuite))
}
