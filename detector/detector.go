// Package detector finds the clothing product shown on a store page.
//
// Detection is a pure function of the page URL and its document: it consults
// the site registry, reads structured data first and CSS selectors second,
// then classifies and identifies the product. Every way of not finding a
// product is reported as an Outcome, never as an error, so callers can simply
// try again on the next page change.
package detector

import (
	"net/url"

	"github.com/Marlvin12/perfit/dom"
	"github.com/Marlvin12/perfit/internal/types"
	"github.com/Marlvin12/perfit/sites"
)

// Outcome is the terminal state of one detection pass
type Outcome int

const (
	// NoSiteMatch means the hostname belongs to no configured store
	NoSiteMatch Outcome = iota
	// URLMismatch means the store is known but the path is not a product page
	URLMismatch
	// NoContainer means the product container selector matched nothing
	NoContainer
	// NoName means no product name could be extracted
	NoName
	// NoImages means no product image could be extracted
	NoImages
	// Complete means a product was detected
	Complete
)

var outcomeNames = map[Outcome]string{
	NoSiteMatch: "no-site-match",
	URLMismatch: "url-mismatch",
	NoContainer: "no-container",
	NoName:      "no-name",
	NoImages:    "no-images",
	Complete:    "complete",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// Page is one snapshot of a store page
type Page struct {
	URL *url.URL
	Doc dom.Document
}

// Result is a detected product and the element after which a call to action
// can be inserted. Anchor is nil when the site's anchor selector matched nothing.
type Result struct {
	Product types.Product
	Anchor  dom.Element
	Site    types.SiteConfig
}

// Detector runs product detection against a site registry
type Detector struct {
	registry *sites.Registry
	logger   types.Logger
}

// NewDetector creates a detector over the given registry
func NewDetector(registry *sites.Registry, logger types.Logger) *Detector {
	return &Detector{
		registry: registry,
		logger:   logger,
	}
}

// Registry returns the site registry used by the detector
func (d *Detector) Registry() *sites.Registry {
	return d.registry
}

// Detect runs one detection pass. The result is non-nil only when the outcome is Complete.
func (d *Detector) Detect(page Page) (*Result, Outcome) {
	if page.URL == nil || page.Doc == nil {
		return nil, NoSiteMatch
	}

	site, ok := d.registry.Lookup(page.URL.Hostname())
	if !ok {
		d.logger.Debugf("No site config for host %s", page.URL.Hostname())
		return nil, NoSiteMatch
	}

	if !d.registry.MatchesPath(site, page.URL.Path) {
		d.logger.Debugf("Path %s is not a %s product page", page.URL.Path, site.Name)
		return nil, URLMismatch
	}

	selectors := site.Selectors
	if _, ok := page.Doc.QuerySelector(selectors.ProductContainer); !ok {
		d.logger.Debugf("Product container %q not found on %s", selectors.ProductContainer, page.URL)
		return nil, NoContainer
	}

	schema, hasSchema := d.ExtractSchemaProduct(page.Doc)

	var name string
	if hasSchema && schema.Name != "" {
		name = schema.Name
	} else {
		name = ExtractText(page.Doc, selectors.ProductName)
	}
	if name == "" {
		return nil, NoName
	}

	var images []string
	if hasSchema && len(schema.Images) > 0 {
		images = schema.Images
	} else {
		images = ExtractImages(page.Doc, selectors.ProductImages)
	}
	if len(images) == 0 {
		return nil, NoImages
	}

	brand := site.Name
	if hasSchema && schema.Brand != "" {
		brand = schema.Brand
	}

	var price types.Price
	if hasSchema {
		price = schema.Price
	} else {
		price = ExtractPrice(page.Doc, selectors.ProductPrice)
	}

	href := page.URL.String()
	product := types.Product{
		ID:           ProductID(href, name),
		Name:         name,
		Brand:        brand,
		Category:     InferCategory(name),
		Price:        price,
		Images:       images,
		Sizes:        ExtractSizes(page.Doc, selectors.SizeSelector),
		SelectedSize: nil,
		Color:        "",
		Material:     nil,
		URL:          href,
		SiteID:       site.Domain,
	}

	// the anchor is resolved on every pass; a previous pass's element may be stale
	var anchor dom.Element
	if el, ok := page.Doc.QuerySelector(site.TryOnButtonTarget); ok {
		anchor = el
	}

	d.logger.Debugf("Detected %q (%s) on %s with %d images and %d sizes", product.Name, product.ID, site.Name, len(images), len(product.Sizes))
	return &Result{Product: product, Anchor: anchor, Site: *site}, Complete
}
