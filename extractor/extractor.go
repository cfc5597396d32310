package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Marlvin12/perfit/adapters"
	"github.com/Marlvin12/perfit/internal/types"
)

// Extractor runs product detection over a batch of store pages
type Extractor struct {
	adapter *adapters.BaseAdapter
	logger  types.Logger
}

// NewExtractor creates a new extractor over an adapter. The adapter stays owned by the caller.
func NewExtractor(adapter *adapters.BaseAdapter, logger types.Logger) *Extractor {
	return &Extractor{
		adapter: adapter,
		logger:  logger,
	}
}

// ExtractAll fetches every URL and runs detection on it. A page that fails to
// load is recorded on its report; only a cancelled context stops the batch.
func (e *Extractor) ExtractAll(ctx context.Context, urls []string) ([]types.PageReport, error) {
	startTime := time.Now()
	urls = e.adapter.RemoveDuplicateURLs(urls)
	e.logger.Infof("Starting detection of %d pages at %v", len(urls), startTime.Format("15:04:05.000"))

	reports := make([]types.PageReport, 0, len(urls))
	detected := 0

	for i, pageURL := range urls {
		if err := ctx.Err(); err != nil {
			return reports, fmt.Errorf("extraction cancelled after %d pages: %w", i, err)
		}

		pageStartTime := time.Now()
		e.logger.Debugf("Processing page %d/%d: %s", i+1, len(urls), pageURL)

		report, err := e.adapter.Detect(ctx, pageURL)
		if err != nil {
			e.logger.Warnf("Failed to detect product on %s: %v", pageURL, err)
			reports = append(reports, types.PageReport{URL: pageURL, Outcome: "error", Error: err.Error()})
			continue
		}

		if report.Product != nil {
			detected++
		}
		reports = append(reports, *report)

		e.logger.Debugf("Page %s processed in %v (%s)", pageURL, time.Since(pageStartTime), report.Outcome)
	}

	e.logger.Infof("Detection completed in %v", time.Since(startTime))
	e.logger.Infof("Detected products on %d/%d pages", detected, len(urls))

	return reports, nil
}

// ExtractHTML runs detection on a page that was saved to disk
func (e *Extractor) ExtractHTML(pageURL string, filename string) (*types.PageReport, error) {
	html, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	return e.adapter.DetectHTML(pageURL, string(html))
}

// ExtractToJSON runs ExtractAll and saves the reports to a JSON file
func (e *Extractor) ExtractToJSON(ctx context.Context, urls []string, filename string) error {
	reports, err := e.ExtractAll(ctx, urls)
	if err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results to JSON: %w", err)
	}

	if err := writeToFile(filename, jsonData); err != nil {
		return fmt.Errorf("failed to write results to file: %w", err)
	}

	e.logger.Infof("Results saved to %s", filename)
	return nil
}

// Adapter returns the page adapter used by the extractor
func (e *Extractor) Adapter() *adapters.BaseAdapter {
	return e.adapter
}

// writeToFile writes data to a file
func writeToFile(filename string, data []byte) error {
	return os.WriteFile(filename, data, 0644)
}
