// Package adapter provides adapters for hwinfo-shm integration with external systems.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/heptiolabs/healthcheck"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/srediag/hwinfo-shm/api"
	"github.com/srediag/hwinfo-shm/pkg/hwinfo"
)

// DefaultCheckTimeout bounds a single producer check.
const DefaultCheckTimeout = 2 * time.Second

// ProducerProcesses are the executable names of the HWiNFO sensor producer.
var ProducerProcesses = []string{"hwinfo64.exe", "hwinfo32.exe", "hwinfo64", "hwinfo32"}

// ProcessLister returns the names of the running processes.
type ProcessLister func(ctx context.Context) ([]string, error)

// ErrProducerNotRunning is reported when no HWiNFO process could be found.
var ErrProducerNotRunning = errors.New("hwinfo is not running")

// HealthOptions configures NewHealthHandler.
type HealthOptions struct {
	// Sources are checked for readiness. Empty means the local source.
	Sources []hwinfo.Source
	Timeout time.Duration
	// Processes lists running processes. Nil means gopsutil.
	Processes ProcessLister
}

// NewHealthHandler returns a healthcheck handler serving /live and /ready.
// Liveness only checks that the prober answers; readiness requires every
// source to be shared.
func NewHealthHandler(p api.Prober, opts HealthOptions) healthcheck.Handler {
	if len(opts.Sources) == 0 {
		opts.Sources = []hwinfo.Source{hwinfo.Local()}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultCheckTimeout
	}
	if opts.Processes == nil {
		opts.Processes = RunningProcesses
	}

	h := healthcheck.NewHandler()
	h.AddLivenessCheck("hwinfo-probe", healthcheck.Timeout(func() error {
		_, err := p.Exists(context.Background(), hwinfo.Local())
		return err
	}, opts.Timeout))
	for _, src := range opts.Sources {
		h.AddReadinessCheck("hwinfo-"+src.String(),
			healthcheck.Timeout(ProducerCheck(p, src, opts.Processes), opts.Timeout))
	}
	return h
}

// ProducerCheck fails while the region of src is not shared. When the
// region is missing the error says whether an HWiNFO process is running.
func ProducerCheck(p api.Prober, src hwinfo.Source, list ProcessLister) healthcheck.Check {
	return func() error {
		ctx := context.Background()
		ok, err := p.Exists(ctx, src)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		name := p.RegionName(src)
		if list == nil {
			return fmt.Errorf("region %s not shared", name)
		}
		running, err := producerRunning(ctx, list)
		switch {
		case err != nil:
			return fmt.Errorf("region %s not shared (process list: %v)", name, err)
		case running:
			return fmt.Errorf("region %s not shared: hwinfo is running with shared memory support disabled", name)
		default:
			return fmt.Errorf("region %s not shared: %w", name, ErrProducerNotRunning)
		}
	}
}

func producerRunning(ctx context.Context, list ProcessLister) (bool, error) {
	names, err := list(ctx)
	if err != nil {
		return false, err
	}
	for _, n := range names {
		for _, want := range ProducerProcesses {
			if strings.EqualFold(n, want) {
				return true, nil
			}
		}
	}
	return false, nil
}

// RunningProcesses lists process names with gopsutil. Processes that exit
// or deny access while listing are skipped.
func RunningProcesses(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// Mount registers the handler's endpoints under prefix on mux.
func Mount(mux *http.ServeMux, prefix string, h healthcheck.Handler) {
	prefix = strings.TrimSuffix(prefix, "/")
	mux.Handle(prefix+"/live", http.StripPrefix(prefix, h))
	mux.Handle(prefix+"/ready", http.StripPrefix(prefix, h))
}
