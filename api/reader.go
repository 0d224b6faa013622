// Package api defines public API contracts for hwinfo-shm.
package api

import (
	"context"

	"github.com/srediag/hwinfo-shm/pkg/hwinfo"
)

// SensorReader reads sensor readings shared by HWiNFO.
type SensorReader interface {
	ReadLocal(ctx context.Context) ([]hwinfo.SensorReading, error)
	ReadRemote(ctx context.Context, index uint) ([]hwinfo.SensorReading, error)
	Close() error
}

// Prober reports whether a source is being shared without reading it.
type Prober interface {
	Exists(ctx context.Context, src hwinfo.Source) (bool, error)
	RegionName(src hwinfo.Source) string
}

var (
	_ SensorReader = (*hwinfo.Reader)(nil)
	_ Prober       = (*hwinfo.Reader)(nil)
)
