// Package watch turns page changes into a stream of re-scan signals.
//
// A Source yields Signals until its context ends and a Runner feeds them,
// one at a time, to a scan function. Detection stays a pure function of the
// page; the source only decides when to look again.
package watch

import (
	"context"
	"time"

	"github.com/Marlvin12/perfit/internal/types"
)

// Reason tells why a re-scan was requested
type Reason string

const (
	// PageReady is emitted once when a page is first available
	PageReady Reason = "page-ready"
	// MarkerMissing is emitted when the injected try-on marker is gone
	MarkerMissing Reason = "marker-missing"
)

// Signal asks for one detection pass
type Signal struct {
	Reason Reason
	At     time.Time
}

// Source produces re-scan signals. Each call to Signals starts a fresh
// sequence; the channel is closed when ctx ends.
type Source interface {
	Signals(ctx context.Context) <-chan Signal
}

// ProbeFunc reports whether the injected marker is still on the page
type ProbeFunc func(ctx context.Context) (bool, error)

// PollingSource emits PageReady once and then MarkerMissing on every tick
// where Probe reports the marker is absent
type PollingSource struct {
	Probe    ProbeFunc
	Interval time.Duration
	Logger   types.Logger
}

// DefaultInterval is used when a PollingSource has no interval
const DefaultInterval = 500 * time.Millisecond

// Signals implements Source
func (p *PollingSource) Signals(ctx context.Context) <-chan Signal {
	signals := make(chan Signal)

	go func() {
		defer close(signals)

		if !send(ctx, signals, PageReady) {
			return
		}

		interval := p.Interval
		if interval <= 0 {
			interval = DefaultInterval
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			present, err := p.Probe(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				if p.Logger != nil {
					p.Logger.Debugf("Marker probe failed: %v", err)
				}
				continue
			}
			if present {
				continue
			}
			if !send(ctx, signals, MarkerMissing) {
				return
			}
		}
	}()

	return signals
}

func send(ctx context.Context, signals chan<- Signal, reason Reason) bool {
	select {
	case <-ctx.Done():
		return false
	case signals <- Signal{Reason: reason, At: time.Now()}:
		return true
	}
}

// ScanFunc runs one detection pass for a signal
type ScanFunc func(ctx context.Context, signal Signal) error

// Runner drives a scan function from a signal source
type Runner struct {
	logger types.Logger
}

// NewRunner creates a runner
func NewRunner(logger types.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run calls scan for each signal, sequentially, until the source is exhausted.
// Scan errors are logged and do not stop the loop. Returns the context error
// when the run ended because ctx was done.
func (r *Runner) Run(ctx context.Context, source Source, scan ScanFunc) error {
	scans := 0
	for signal := range source.Signals(ctx) {
		scans++
		if err := scan(ctx, signal); err != nil {
			r.logger.Warnf("Scan %d (%s) failed: %v", scans, signal.Reason, err)
		}
	}

	r.logger.Debugf("Watch stopped after %d scans", scans)
	return ctx.Err()
}
