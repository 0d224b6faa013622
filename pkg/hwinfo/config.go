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
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	internalshm "github.com/srediag/hwinfo-shm/internal/shm"
)

const (
	// DefaultMutexName is the mutex HWiNFO holds while it updates the region.
	DefaultMutexName = `Global\HWiNFO_SM2_MUTEX`
	// DefaultLocalName is the region of the HWiNFO instance on this host.
	DefaultLocalName = `Global\HWiNFO_SENS_SM2`
	// DefaultRemotePrefix followed by a connection index names the region of
	// a remote HWiNFO instance forwarded to this host.
	DefaultRemotePrefix = `Global\HWiNFO_SENS_SM2_REMOTE_`

	DefaultMutexTimeout = 2 * time.Second

	// WaitForever as MutexTimeout waits for the mutex without bound.
	WaitForever = internalshm.WaitForever
)

// Config holds Reader parameters. Use DefaultConfig and adjust.
type Config struct {
	MutexName    string
	LocalName    string
	RemotePrefix string

	// MutexTimeout bounds the wait for the producer's mutex. When it expires
	// the region is read without the mutex. Zero tries once; WaitForever
	// blocks until the mutex is obtained.
	MutexTimeout time.Duration

	// ShmDir is the directory that backs named regions on Linux. Empty means
	// /dev/shm. Ignored on Windows.
	ShmDir string

	// CacheGroups reuses the group array of the previous read while the
	// group count does not change.
	CacheGroups bool

	// StrictIndex fails the whole read when any reading refers to a missing
	// group. Otherwise such readings are skipped and logged.
	StrictIndex bool

	// Registerer receives the Prometheus collectors. nil leaves them
	// unregistered.
	Registerer prometheus.Registerer

	// MeterProvider and TracerProvider default to no-op providers.
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

// DefaultConfig returns the names and timeout HWiNFO uses.
func DefaultConfig() *Config {
	return &Config{
		MutexName:    DefaultMutexName,
		LocalName:    DefaultLocalName,
		RemotePrefix: DefaultRemotePrefix,
		MutexTimeout: DefaultMutexTimeout,
	}
}

// VerifyConfig reports the first invalid field of config.
func VerifyConfig(config *Config) error {
	if config == nil {
		return errors.New("config is nil")
	}
	if config.MutexName == "" {
		return errors.New("MutexName must not be empty")
	}
	if config.LocalName == "" {
		return errors.New("LocalName must not be empty")
	}
	if config.RemotePrefix == "" {
		return errors.New("RemotePrefix must not be empty")
	}
	if config.RemotePrefix == config.LocalName {
		return fmt.Errorf("RemotePrefix %q must differ from LocalName", config.RemotePrefix)
	}
	if config.MutexTimeout < 0 && config.MutexTimeout != WaitForever {
		return fmt.Errorf("MutexTimeout %v: use WaitForever to wait without bound", config.MutexTimeout)
	}
	if strings.ContainsRune(config.LocalName, 0) || strings.ContainsRune(config.RemotePrefix, 0) || strings.ContainsRune(config.MutexName, 0) {
		return errors.New("object names must not contain NUL")
	}
	return nil
}

// Source selects a region: the local producer or a remote connection.
type Source struct {
	Remote bool
	Index  uint
}

// Local is the source of the producer running on this host.
func Local() Source { return Source{} }

// Remote is the source of remote connection index.
func Remote(index uint) Source { return Source{Remote: true, Index: index} }

func (s Source) String() string {
	if !s.Remote {
		return "local"
	}
	return "remote:" + strconv.FormatUint(uint64(s.Index), 10)
}

// RegionName returns the region name src maps to under config.
func (config *Config) RegionName(src Source) string {
	if !src.Remote {
		return config.LocalName
	}
	return config.RemotePrefix + strconv.FormatUint(uint64(src.Index), 10)
}
