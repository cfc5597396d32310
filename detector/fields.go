package detector

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Marlvin12/perfit/dom"
	"github.com/Marlvin12/perfit/internal/types"
)

// sizeItemSelector lists the elements inside a size container that may hold a size label
const sizeItemSelector = "button, li, span, label"

var (
	pricePattern = regexp.MustCompile(`([£$€¥])?(\d+[.,]?\d*)`)
	sizePattern  = regexp.MustCompile(`(?i)^(XXS|XS|S|M|L|XL|XXL|XXXL|\d{1,2})$`)

	currencySymbols = map[string]string{
		"$": "USD",
		"£": "GBP",
		"€": "EUR",
		"¥": "JPY",
	}
)

const defaultCurrency = "USD"

// ExtractText returns the trimmed text of the first element matching selector,
// or an empty string when nothing matches
func ExtractText(doc dom.Document, selector string) string {
	el, ok := doc.QuerySelector(selector)
	if !ok {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

// ExtractImages collects the src (or data-src) of every element matching selector.
// Protocol-relative URLs are upgraded to https. Duplicates are kept.
func ExtractImages(doc dom.Document, selector string) []string {
	var images []string
	for _, el := range doc.QuerySelectorAll(selector) {
		src, _ := el.Attr("src")
		if src == "" {
			src, _ = el.Attr("data-src")
		}
		if src == "" {
			continue
		}
		images = append(images, normalizeImageURL(src))
	}
	return images
}

func normalizeImageURL(src string) string {
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	return src
}

// ExtractPrice reads the price element text and parses the first amount in it
func ExtractPrice(doc dom.Document, selector string) types.Price {
	var text string
	if el, ok := doc.QuerySelector(selector); ok {
		text = el.Text()
	}
	return ParsePrice(text)
}

// ParsePrice finds the first currency-prefixed amount in text. A missing or
// unrecognized symbol defaults to USD; no amount yields zero.
func ParsePrice(text string) types.Price {
	match := pricePattern.FindStringSubmatch(text)
	if match == nil {
		return types.Price{Amount: 0, Currency: defaultCurrency}
	}

	currency := defaultCurrency
	if code, ok := currencySymbols[match[1]]; ok {
		currency = code
	}

	return types.Price{
		Amount:   parseAmount(strings.Replace(match[2], ",", ".", 1)),
		Currency: currency,
	}
}

// parseAmount parses a decimal number, accepting a trailing separator ("12.")
func parseAmount(s string) float64 {
	amount, err := strconv.ParseFloat(strings.TrimSuffix(s, "."), 64)
	if err != nil {
		return 0
	}
	return amount
}

// ExtractSizes collects size labels inside the first element matching selector.
// Labels are upper-cased and de-duplicated in first-seen order.
func ExtractSizes(doc dom.Document, selector string) []string {
	container, ok := doc.QuerySelector(selector)
	if !ok {
		return []string{}
	}

	sizes := []string{}
	seen := make(map[string]bool)
	for _, el := range container.QuerySelectorAll(sizeItemSelector) {
		text := strings.TrimSpace(el.Text())
		if text == "" || !sizePattern.MatchString(text) {
			continue
		}
		size := strings.ToUpper(text)
		if seen[size] {
			continue
		}
		seen[size] = true
		sizes = append(sizes, size)
	}
	return sizes
}
