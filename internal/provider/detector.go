package provider

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dshills/inkwell/internal/logging"
)

// Detector probes the configured backends in priority order and
// reports which one, if any, is active. Overlapping detection requests
// (the refresh timer, a pre-dispatch check, launch polling) collapse
// into a single in-flight cycle.
type Detector struct {
	backends     []Backend
	probeTimeout time.Duration
	interval     time.Duration
	log          *logging.Logger

	group singleflight.Group

	mu     sync.RWMutex
	status Status
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithProbeTimeout overrides the per-probe timeout.
func WithProbeTimeout(d time.Duration) DetectorOption {
	return func(det *Detector) {
		if d > 0 {
			det.probeTimeout = d
		}
	}
}

// WithDetectInterval overrides the periodic refresh interval.
func WithDetectInterval(d time.Duration) DetectorOption {
	return func(det *Detector) {
		if d > 0 {
			det.interval = d
		}
	}
}

// WithDetectorLogger sets the developer-facing logger.
func WithDetectorLogger(log *logging.Logger) DetectorOption {
	return func(det *Detector) {
		det.log = log.WithComponent("provider")
	}
}

// NewDetector creates a detector over backends in priority order: the
// first backend in the slice wins when several are reachable.
func NewDetector(backends []Backend, opts ...DetectorOption) *Detector {
	d := &Detector{
		backends:     backends,
		probeTimeout: DefaultProbeTimeout,
		interval:     DefaultDetectInterval,
		log:          logging.Discard(),
		status:       Status{Provider: "none"},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect runs one detection cycle and returns the fresh status.
// Concurrent callers share a single cycle.
func (d *Detector) Detect(ctx context.Context) Status {
	v, _, _ := d.group.Do("detect", func() (any, error) {
		return d.detect(ctx), nil
	})
	return v.(Status)
}

// detect probes each backend in order; the first success is the
// active provider for this cycle.
func (d *Detector) detect(ctx context.Context) Status {
	status := Status{Available: false, Provider: "none"}

	for _, backend := range d.backends {
		probeCtx, cancel := context.WithTimeout(ctx, d.probeTimeout)
		model, err := backend.Probe(probeCtx)
		cancel()

		if err != nil {
			d.log.Debug("probe %s: %v", backend.ID(), err)
			continue
		}

		status = Status{
			Available: true,
			Provider:  backend.ID(),
			Name:      backend.Name(),
			Model:     model,
		}
		break
	}

	d.mu.Lock()
	d.status = status
	d.mu.Unlock()

	return status
}

// Status returns the result of the most recent detection cycle without
// probing.
func (d *Detector) Status() Status {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.status
}

// Active returns the backend reported active by the last cycle, if any.
func (d *Detector) Active() (Backend, bool) {
	d.mu.RLock()
	id := d.status.Provider
	available := d.status.Available
	d.mu.RUnlock()

	if !available {
		return nil, false
	}
	for _, backend := range d.backends {
		if backend.ID() == id {
			return backend, true
		}
	}
	return nil, false
}

// Run detects immediately and then on a fixed interval until ctx is
// cancelled. Intended to run on its own goroutine.
func (d *Detector) Run(ctx context.Context) {
	d.Detect(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.Detect(ctx)
		}
	}
}
