package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/Marlvin12/perfit/internal/types"
	"github.com/chromedp/chromedp"
)

// MarkerID is the id of the element injected after a product's anchor
const MarkerID = "perfit-try-on-button"

// BrowserClient provides headless browser functionality
type BrowserClient struct {
	config *types.Config
	logger types.Logger
}

// NewBrowserClient creates a new browser client
func NewBrowserClient(config *types.Config, logger types.Logger) *BrowserClient {
	// Suppress chromedp debug logging
	log.SetOutput(io.Discard)

	return &BrowserClient{
		config: config,
		logger: logger,
	}
}

// allocatorOptions returns the Chrome flags used for every browser context
func (b *BrowserClient) allocatorOptions() []chromedp.ExecAllocatorOption {
	return append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(b.config.UserAgent),
		chromedp.WindowSize(1920, 1080),
	)
}

// GetPageContent retrieves the HTML content of a page using headless browser
func (b *BrowserClient) GetPageContent(ctx context.Context, url string) (string, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, b.allocatorOptions()...)
	defer cancel()

	// Create a new browser context
	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	// Set timeout
	browserCtx, cancel = context.WithTimeout(browserCtx, b.config.Timeout)
	defer cancel()

	var html string

	// Navigate to the page and wait for it to load
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Sleep(500*time.Millisecond), // Wait for dynamic content
		chromedp.OuterHTML("html", &html),
	)

	if err != nil {
		return "", fmt.Errorf("failed to get page content: %w", err)
	}

	b.logger.Debugf("Successfully retrieved page content from %s (%d bytes)", url, len(html))
	return html, nil
}

// Session is a live browser tab kept open across detection passes
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger types.Logger
}

// Open navigates a new tab to url and keeps it open until Close
func (b *BrowserClient) Open(ctx context.Context, url string) (*Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, b.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	cancel := func() {
		browserCancel()
		allocCancel()
	}

	loadCtx, loadCancel := context.WithTimeout(browserCtx, b.config.Timeout)
	defer loadCancel()

	if err := chromedp.Run(loadCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open %s: %w", url, err)
	}

	b.logger.Debugf("Opened browser session for %s", url)
	return &Session{ctx: browserCtx, cancel: cancel, logger: b.logger}, nil
}

// Snapshot returns the tab's current location and serialized DOM
func (s *Session) Snapshot(ctx context.Context) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	var location, html string
	if err := chromedp.Run(s.ctx,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html),
	); err != nil {
		return "", "", fmt.Errorf("failed to snapshot page: %w", err)
	}
	return location, html, nil
}

// MarkerPresent reports whether the injected marker element is still in the page
func (s *Session) MarkerPresent(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	var present bool
	script := fmt.Sprintf(`document.getElementById(%q) !== null`, MarkerID)
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &present)); err != nil {
		return false, fmt.Errorf("failed to probe marker: %w", err)
	}
	return present, nil
}

// InjectMarker removes any stale marker and inserts a fresh one right after the
// first element matching anchorSelector. It reports whether the anchor was found.
func (s *Session) InjectMarker(ctx context.Context, anchorSelector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	selector, err := json.Marshal(anchorSelector)
	if err != nil {
		return false, fmt.Errorf("failed to encode selector: %w", err)
	}

	script := fmt.Sprintf(`(() => {
		const stale = document.getElementById(%q);
		if (stale) stale.remove();
		const anchor = document.querySelector(%s);
		if (!anchor) return false;
		const marker = document.createElement("div");
		marker.id = %q;
		anchor.insertAdjacentElement("afterend", marker);
		return true;
	})()`, MarkerID, selector, MarkerID)

	var inserted bool
	if err := chromedp.Run(s.ctx, chromedp.Evaluate(script, &inserted)); err != nil {
		return false, fmt.Errorf("failed to inject marker: %w", err)
	}
	return inserted, nil
}

// Close closes the tab and the browser
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
	}
}
