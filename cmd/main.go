package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Marlvin12/perfit/extractor"
	"github.com/Marlvin12/perfit/internal/app"
	"github.com/Marlvin12/perfit/internal/config"
	"github.com/Marlvin12/perfit/internal/logging"
	"github.com/Marlvin12/perfit/internal/types"
	"github.com/Marlvin12/perfit/utils"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Parse command line flags
	var (
		urlFlag    = flag.String("url", "", "Single product page URL")
		urlsFlag   = flag.String("urls", "", "Comma-separated list of product page URLs")
		htmlFlag   = flag.String("html", "", "Saved HTML file to run detection on (requires --url)")
		outputFlag = flag.String("output", "", "Output file path (default: stdout)")
		configFlag = flag.String("config", "", "Config file path (default: ./config.yaml or ./config/config.yaml)")
		sitesFlag  = flag.String("sites", "", "YAML site table (overrides sites.file)")
		useBrowser = flag.Bool("browser", false, "Use headless browser for JavaScript-heavy sites")
		watchFlag  = flag.Bool("watch", false, "Keep the page open and re-detect when it changes (requires --url)")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	// Validate flags - either --url or --urls must be provided
	if *urlFlag == "" && *urlsFlag == "" {
		log.Fatal("Either --url or --urls flag is required")
	}
	if *urlFlag != "" && *urlsFlag != "" {
		log.Fatal("Cannot use both --url and --urls flags")
	}
	if (*htmlFlag != "" || *watchFlag) && *urlFlag == "" {
		log.Fatal("--html and --watch need a single --url")
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *useBrowser || *watchFlag {
		cfg.Fetch.Headless = true
	}
	if *sitesFlag != "" {
		cfg.Sites.File = *sitesFlag
	}

	// Setup logging
	logger, logCloser := logging.New(cfg.Log)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to start: %v", err)
	}
	defer application.Close()

	if *watchFlag {
		if err := watchPage(ctx, application, *urlFlag); err != nil && ctx.Err() == nil {
			logger.Fatalf("Watch failed: %v", err)
		}
		return
	}

	ext := extractor.NewExtractor(application.Adapter, logger)

	startTime := time.Now()
	var reports []types.PageReport

	if *htmlFlag != "" {
		report, err := ext.ExtractHTML(*urlFlag, *htmlFlag)
		if err != nil {
			logger.Fatalf("Failed to detect product: %v", err)
		}
		reports = append(reports, *report)
	} else {
		urls := []string{*urlFlag}
		if *urlsFlag != "" {
			urls = strings.Split(*urlsFlag, ",")
		}

		// Bound the whole batch
		batchCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
		defer cancel()

		reports, err = ext.ExtractAll(batchCtx, urls)
		if err != nil {
			logger.Warnf("Extraction stopped early: %v", err)
		}
	}

	logger.Infof("Detection completed in %v", time.Since(startTime))

	if err := writeReports(reports, *outputFlag); err != nil {
		logger.Fatalf("Failed to write results: %v", err)
	}
	if *outputFlag != "" {
		logger.Infof("Results written to: %s", *outputFlag)
	}

	// Print summary
	detected := 0
	for _, report := range reports {
		if report.Product != nil {
			detected++
		}
	}
	logger.Infof("Total pages processed: %d", len(reports))
	logger.Infof("Products detected: %d", detected)
}

// watchPage opens the page in the headless browser and keeps re-detecting
// until interrupted
func watchPage(ctx context.Context, application *app.App, pageURL string) error {
	browser := utils.NewBrowserClient(application.Config.FetchOptions(), application.Logger)
	session, err := browser.Open(ctx, pageURL)
	if err != nil {
		return err
	}
	defer session.Close()

	application.Logger.Infof("Watching %s (Ctrl+C to stop)", pageURL)
	watcher := app.NewPageWatcher(application, session, func(report types.PageReport) {
		if err := writeReports([]types.PageReport{report}, ""); err != nil {
			application.Logger.Errorf("Failed to print report: %v", err)
		}
	})
	return watcher.Run(ctx)
}

// writeReports writes the reports as indented JSON to a file, or stdout when path is empty
func writeReports(reports []types.PageReport, path string) error {
	jsonData, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if path == "" {
		fmt.Println(string(jsonData))
		return nil
	}
	return os.WriteFile(path, jsonData, 0644)
}
