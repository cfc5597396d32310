package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"

	"github.com/Marlvin12/perfit/detector"
	"github.com/Marlvin12/perfit/dom"
	"github.com/Marlvin12/perfit/internal/app"
	"github.com/Marlvin12/perfit/internal/types"
	"github.com/Marlvin12/perfit/utils"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// debug prints how each configured selector of a store matches a live page,
// which is the first thing to check when a store changes its markup
func main() {
	_ = godotenv.Load()

	var (
		pageURL    = flag.String("url", "", "Product page to inspect")
		sitesFile  = flag.String("sites", "", "Optional YAML site table")
		useBrowser = flag.Bool("browser", true, "Render the page with the headless browser")
	)
	flag.Parse()

	if *pageURL == "" {
		log.Fatal("--url is required")
	}

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	registry, err := app.LoadRegistry(*sitesFile)
	if err != nil {
		log.Fatal(err)
	}

	parsed, err := url.Parse(*pageURL)
	if err != nil {
		log.Fatalf("Invalid URL: %v", err)
	}

	site, ok := registry.Lookup(parsed.Hostname())
	if !ok {
		fmt.Printf("No site config matches %s\n", parsed.Hostname())
		os.Exit(1)
	}
	fmt.Printf("=== %s (%s) ===\n", site.Name, site.Domain)
	fmt.Printf("URL pattern %q matches path: %v\n", site.URLPattern, registry.MatchesPath(site, parsed.Path))

	config := types.DefaultConfig()
	config.UseHeadlessBrowser = *useBrowser

	html, err := fetch(context.Background(), config, logger, *pageURL)
	if err != nil {
		log.Fatalf("Failed to get page: %v", err)
	}

	doc, err := dom.NewDocumentFromString(html)
	if err != nil {
		log.Fatalf("Failed to parse HTML: %v", err)
	}

	selectors := site.Selectors
	report(doc, "product container", selectors.ProductContainer)
	report(doc, "product name", selectors.ProductName)
	report(doc, "product price", selectors.ProductPrice)
	report(doc, "product images", selectors.ProductImages)
	report(doc, "size selector", selectors.SizeSelector)
	report(doc, "try-on anchor", site.TryOnButtonTarget)
	if selectors.SizeChart != nil {
		report(doc, "size chart", *selectors.SizeChart)
	}

	fmt.Printf("JSON-LD blocks: %d\n", len(doc.QuerySelectorAll(`script[type="application/ld+json"]`)))
	det := detector.NewDetector(registry, logger)
	if schema, ok := det.ExtractSchemaProduct(doc); ok {
		fmt.Printf("Structured product: name=%q brand=%q images=%d price=%v %s\n",
			schema.Name, schema.Brand, len(schema.Images), schema.Price.Amount, schema.Price.Currency)
	} else {
		fmt.Println("Structured product: none")
	}

	result, outcome := det.Detect(detector.Page{URL: parsed, Doc: doc})
	fmt.Printf("Detection outcome: %s\n", outcome)
	if result != nil {
		fmt.Printf("Product %s: %q (%s), %d images, sizes %v\n",
			result.Product.ID, result.Product.Name, result.Product.Category, len(result.Product.Images), result.Product.Sizes)
	}
}

func fetch(ctx context.Context, config *types.Config, logger types.Logger, pageURL string) (string, error) {
	if config.UseHeadlessBrowser {
		return utils.NewBrowserClient(config, logger).GetPageContent(ctx, pageURL)
	}

	client := utils.NewHTTPClient(config, logger)
	defer client.Close()

	body, err := client.Get(ctx, pageURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// report prints the match count of a selector and a sample of the first match
func report(doc dom.Document, label, selector string) {
	matches := doc.QuerySelectorAll(selector)
	fmt.Printf("%-18s %-60q %d match(es)\n", label+":", selector, len(matches))
	if len(matches) == 0 {
		return
	}

	sample := strings.Join(strings.Fields(matches[0].Text()), " ")
	if len(sample) > 80 {
		sample = sample[:80] + "..."
	}
	if src, ok := matches[0].Attr("src"); ok {
		sample = "src=" + src
	}
	if sample != "" {
		fmt.Printf("  first: %s\n", sample)
	}
}
