package app

import (
	"context"
	"fmt"
	"net/url"

	"github.com/Marlvin12/perfit/internal/types"
	"github.com/Marlvin12/perfit/watch"
)

// PageSession is a live page that can be snapshotted and annotated
type PageSession interface {
	Snapshot(ctx context.Context) (location string, html string, err error)
	MarkerPresent(ctx context.Context) (bool, error)
	InjectMarker(ctx context.Context, anchorSelector string) (bool, error)
}

// PageWatcher re-runs detection on a live page whenever the try-on marker is
// missing, and puts the marker back after the site's anchor
type PageWatcher struct {
	app      *App
	session  PageSession
	onReport func(types.PageReport)
	lastID   string
}

// NewPageWatcher creates a watcher. onReport is called for each newly detected product.
func NewPageWatcher(a *App, session PageSession, onReport func(types.PageReport)) *PageWatcher {
	return &PageWatcher{app: a, session: session, onReport: onReport}
}

// Run watches the page until ctx ends
func (w *PageWatcher) Run(ctx context.Context) error {
	source := &watch.PollingSource{
		Probe:    w.session.MarkerPresent,
		Interval: w.app.Config.Watch.Interval,
		Logger:   w.app.Logger,
	}
	return watch.NewRunner(w.app.Logger).Run(ctx, source, w.Scan)
}

// Scan runs one detection pass on the current page state
func (w *PageWatcher) Scan(ctx context.Context, signal watch.Signal) error {
	location, html, err := w.session.Snapshot(ctx)
	if err != nil {
		return err
	}

	report, err := w.app.Adapter.DetectHTML(location, html)
	if err != nil {
		return err
	}
	if report.Product == nil {
		w.app.Logger.Debugf("No product on %s (%s, %s)", location, report.Outcome, signal.Reason)
		w.lastID = ""
		return nil
	}

	if report.Product.ID != w.lastID {
		w.lastID = report.Product.ID
		if w.onReport != nil {
			w.onReport(*report)
		}
	}

	if !report.HasAnchor {
		return nil
	}

	pageURL, err := url.Parse(location)
	if err != nil {
		return fmt.Errorf("invalid page location %q: %w", location, err)
	}
	site, ok := w.app.Registry.Lookup(pageURL.Hostname())
	if !ok {
		return nil
	}

	inserted, err := w.session.InjectMarker(ctx, site.TryOnButtonTarget)
	if err != nil {
		return err
	}
	if inserted {
		w.app.Logger.Debugf("Try-on marker placed on %s", location)
	}
	return nil
}
