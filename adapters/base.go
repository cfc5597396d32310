package adapters

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Marlvin12/perfit/detector"
	"github.com/Marlvin12/perfit/dom"
	"github.com/Marlvin12/perfit/internal/types"
	"github.com/Marlvin12/perfit/utils"
)

// BaseAdapter fetches store pages and runs product detection on them.
// Pages are fetched with the headless browser or the plain HTTP client
// depending on UseHeadlessBrowser.
type BaseAdapter struct {
	config        *types.Config        // Fetch settings (timeouts, browser, retries)
	logger        types.Logger         // Structured logging interface
	httpClient    *utils.HTTPClient    // HTTP client for static pages
	browserClient *utils.BrowserClient // Headless browser client for script-rendered pages
	detector      *detector.Detector
}

// NewBaseAdapter creates a new base adapter with initialized HTTP and browser clients
func NewBaseAdapter(config *types.Config, det *detector.Detector, logger types.Logger) *BaseAdapter {
	return &BaseAdapter{
		config:        config,
		logger:        logger,
		httpClient:    utils.NewHTTPClient(config, logger),
		browserClient: utils.NewBrowserClient(config, logger),
		detector:      det,
	}
}

// GetPageContent retrieves the HTML content of a page using either the HTTP client or the headless browser
func (b *BaseAdapter) GetPageContent(ctx context.Context, url string) (string, error) {
	// Most stores render product details client-side
	if b.config.UseHeadlessBrowser {
		return b.browserClient.GetPageContent(ctx, url)
	}

	// Use standard HTTP client for static content (faster and more efficient)
	body, err := b.httpClient.Get(ctx, url)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

// ParseHTML parses HTML content into a queryable document
func (b *BaseAdapter) ParseHTML(html string) (dom.Document, error) {
	return dom.NewDocumentFromString(html)
}

// Detect fetches a page and runs detection on it.
// Only fetch and parse failures are errors; a page without a product is a report.
// Pages outside the site registry are never fetched.
func (b *BaseAdapter) Detect(ctx context.Context, rawURL string) (*types.PageReport, error) {
	pageURL, err := parsePageURL(rawURL)
	if err != nil {
		return nil, err
	}

	registry := b.detector.Registry()
	site, ok := registry.Lookup(pageURL.Hostname())
	if !ok {
		b.logger.Debugf("Skipping %s: no site config for host", rawURL)
		return &types.PageReport{URL: rawURL, Outcome: detector.NoSiteMatch.String()}, nil
	}
	if !registry.MatchesPath(site, pageURL.Path) {
		b.logger.Debugf("Skipping %s: not a %s product page", rawURL, site.Name)
		return &types.PageReport{URL: rawURL, Outcome: detector.URLMismatch.String()}, nil
	}

	html, err := b.GetPageContent(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get page content: %w", err)
	}

	return b.DetectHTML(rawURL, html)
}

// DetectHTML runs detection on an already fetched page
func (b *BaseAdapter) DetectHTML(rawURL string, html string) (*types.PageReport, error) {
	pageURL, err := parsePageURL(rawURL)
	if err != nil {
		return nil, err
	}

	doc, err := b.ParseHTML(html)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	result, outcome := b.detector.Detect(detector.Page{URL: pageURL, Doc: doc})
	report := &types.PageReport{
		URL:     rawURL,
		Outcome: outcome.String(),
	}
	if result == nil {
		return report, nil
	}

	product := result.Product
	report.Product = &product
	report.HasAnchor = result.Anchor != nil

	if chart := result.Site.Selectors.SizeChart; chart != nil {
		sizeChart, err := b.ExtractSizeChart(doc, *chart)
		if err != nil {
			b.logger.Debugf("No size chart on %s: %v", rawURL, err)
		} else {
			report.SizeChart = sizeChart
		}
	}

	return report, nil
}

// Detector returns the detector used by the adapter
func (b *BaseAdapter) Detector() *detector.Detector {
	return b.detector
}

// Browser returns the headless browser client
func (b *BaseAdapter) Browser() *utils.BrowserClient {
	return b.browserClient
}

// Close cleans up resources
func (b *BaseAdapter) Close() {
	if b.httpClient != nil {
		b.httpClient.Close()
	}
}

// RemoveDuplicateURLs removes duplicate URLs from the slice, keeping the first occurrence
func (b *BaseAdapter) RemoveDuplicateURLs(urls []string) []string {
	seen := make(map[string]bool)
	var uniqueURLs []string

	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		uniqueURLs = append(uniqueURLs, u)
	}

	return uniqueURLs
}

// Config returns the config field of the BaseAdapter
func (b *BaseAdapter) Config() *types.Config {
	return b.config
}

func parsePageURL(rawURL string) (*url.URL, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %q: %w", rawURL, err)
	}
	if pageURL.Scheme != "http" && pageURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid page URL %q: scheme must be http or https", rawURL)
	}
	return pageURL, nil
}
