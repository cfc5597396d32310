package detector

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/Marlvin12/perfit/dom"
	"github.com/Marlvin12/perfit/internal/types"
)

const structuredDataSelector = `script[type="application/ld+json"]`

// SchemaProduct is the subset of a schema.org Product the detector uses
type SchemaProduct struct {
	Name   string
	Brand  string
	Images []string
	Price  types.Price
}

// ExtractSchemaProduct scans the page's JSON-LD blocks and returns the first
// Product found. A block that fails to parse is skipped; the scan continues.
func (d *Detector) ExtractSchemaProduct(doc dom.Document) (*SchemaProduct, bool) {
	for i, script := range doc.QuerySelectorAll(structuredDataSelector) {
		var data interface{}
		if err := json.Unmarshal([]byte(script.Text()), &data); err != nil {
			d.logger.Debugf("Skipping malformed structured data block %d: %v", i, err)
			continue
		}

		if product := findProductNode(data); product != nil {
			return schemaProductFrom(product), true
		}
	}
	return nil, false
}

// findProductNode returns data itself if it is a Product, or the first Product
// entry when data is an array
func findProductNode(data interface{}) map[string]interface{} {
	switch v := data.(type) {
	case []interface{}:
		for _, item := range v {
			if node, ok := item.(map[string]interface{}); ok && isProduct(node) {
				return node
			}
		}
	case map[string]interface{}:
		if isProduct(v) {
			return v
		}
	}
	return nil
}

func isProduct(node map[string]interface{}) bool {
	typ, _ := node["@type"].(string)
	return typ == "Product"
}

func schemaProductFrom(node map[string]interface{}) *SchemaProduct {
	name, _ := node["name"].(string)
	return &SchemaProduct{
		Name:   strings.TrimSpace(name),
		Brand:  schemaBrand(node["brand"]),
		Images: schemaImages(node["image"]),
		Price:  schemaPrice(node["offers"]),
	}
}

// schemaBrand reads brand.name; a bare string brand is accepted as well
func schemaBrand(v interface{}) string {
	switch brand := v.(type) {
	case map[string]interface{}:
		name, _ := brand["name"].(string)
		return name
	case string:
		return brand
	}
	return ""
}

// schemaImages flattens image one level and keeps non-empty URLs.
// ImageObject entries contribute their url or contentUrl.
func schemaImages(v interface{}) []string {
	var items []interface{}
	if list, ok := v.([]interface{}); ok {
		items = list
	} else if v != nil {
		items = []interface{}{v}
	}

	var images []string
	for _, item := range items {
		switch img := item.(type) {
		case string:
			if img != "" {
				images = append(images, img)
			}
		case map[string]interface{}:
			for _, key := range []string{"url", "contentUrl"} {
				if u, ok := img[key].(string); ok && u != "" {
					images = append(images, u)
					break
				}
			}
		}
	}
	return images
}

// schemaPrice reads offers.price and offers.priceCurrency. When offers is a
// list the first offer is used; an AggregateOffer falls back to lowPrice.
func schemaPrice(v interface{}) types.Price {
	price := types.Price{Amount: 0, Currency: defaultCurrency}

	if list, ok := v.([]interface{}); ok {
		if len(list) == 0 {
			return price
		}
		v = list[0]
	}
	offer, ok := v.(map[string]interface{})
	if !ok {
		return price
	}

	raw, exists := offer["price"]
	if !exists || raw == nil {
		raw = offer["lowPrice"]
	}
	price.Amount = leadingFloat(raw)

	if currency, ok := offer["priceCurrency"].(string); ok && currency != "" {
		price.Currency = currency
	}
	return price
}

// leadingFloat converts a JSON number or numeric string to a float, reading
// the longest numeric prefix of a string. Anything else yields zero.
func leadingFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		s := strings.TrimSpace(n)
		for end := len(s); end > 0; end-- {
			if f, err := strconv.ParseFloat(s[:end], 64); err == nil {
				if math.IsNaN(f) || math.IsInf(f, 0) {
					return 0
				}
				return f
			}
		}
	}
	return 0
}
