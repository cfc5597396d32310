package sites

import "github.com/Marlvin12/perfit/internal/types"

func chart(selector string) *string {
	return &selector
}

// builtin is the table of supported stores. Lookup takes the first entry whose
// domain is contained in the hostname, so order matters.
var builtin = []types.SiteConfig{
	{
		Domain:            "amazon.",
		Name:              "Amazon",
		URLPattern:        `/(dp|gp/product)/[A-Z0-9]{10}`,
		TryOnButtonTarget: "#addToCart_feature_div, #add-to-cart-button",
		Selectors: types.SiteSelectors{
			ProductContainer: "#dp-container, #ppd",
			ProductName:      "#productTitle",
			ProductPrice:     "#corePrice_feature_div .a-offscreen, .a-price .a-offscreen",
			ProductImages:    "#altImages li.imageThumbnail img, #landingImage",
			SizeSelector:     "#variation_size_name, #inline-twister-row-size_name",
			SizeChart:        chart("#sizeChartV2Data"),
		},
	},
	{
		Domain:            "zara.com",
		Name:              "ZARA",
		URLPattern:        `-p\d+\.html`,
		TryOnButtonTarget: ".product-detail-cart-buttons, .product-detail-actions",
		Selectors: types.SiteSelectors{
			ProductContainer: ".product-detail-view__main, .product-detail-view",
			ProductName:      ".product-detail-info__header-name",
			ProductPrice:     ".price-current__amount, .money-amount__main",
			ProductImages:    ".media-image__image, .product-detail-images img",
			SizeSelector:     ".size-selector-list, .size-selector-sizes",
			SizeChart:        chart(".size-guide"),
		},
	},
	{
		Domain:            "hm.com",
		Name:              "H&M",
		URLPattern:        `/productpage\.\d+\.html`,
		TryOnButtonTarget: "[data-testid='add-to-cart-button'], .product-button-wrapper",
		Selectors: types.SiteSelectors{
			ProductContainer: ".product-detail-main, main.product-page",
			ProductName:      "h1",
			ProductPrice:     "[data-testid='price'], .price-value",
			ProductImages:    ".product-detail-main-image-container img, [data-testid='grid-gallery'] img",
			SizeSelector:     "[data-testid='size-selector'], .picker-list",
			SizeChart:        nil,
		},
	},
	{
		Domain:            "asos.com",
		Name:              "ASOS",
		URLPattern:        `/prd/\d+`,
		TryOnButtonTarget: "[data-testid='add-button'], #product-add",
		Selectors: types.SiteSelectors{
			ProductContainer: "#core-product, [data-testid='core-product']",
			ProductName:      "h1",
			ProductPrice:     "[data-testid='current-price'], .current-price",
			ProductImages:    ".gallery-image, [data-testid='gallery'] img",
			SizeSelector:     "[data-testid='variant-selector'], #variantSelector",
			SizeChart:        chart("[data-testid='size-guide']"),
		},
	},
	{
		Domain:            "uniqlo.com",
		Name:              "UNIQLO",
		URLPattern:        `/products/[A-Za-z0-9-]+`,
		TryOnButtonTarget: ".fr-ec-cta-button, [data-test='add-to-cart-button']",
		Selectors: types.SiteSelectors{
			ProductContainer: ".fr-ec-product-detail, #productDetail",
			ProductName:      ".fr-ec-display, h1",
			ProductPrice:     ".fr-ec-price-text, .price",
			ProductImages:    ".fr-ec-media-gallery img, .product-image img",
			SizeSelector:     ".fr-ec-chip-group--size, .size-chip-wrapper",
			SizeChart:        chart(".fr-ec-size-chart"),
		},
	},
	{
		Domain:            "nordstrom.com",
		Name:              "Nordstrom",
		URLPattern:        `/s/[\w-]+/\d+`,
		TryOnButtonTarget: "[data-element='add-to-bag'], #add-to-bag",
		Selectors: types.SiteSelectors{
			ProductContainer: "[data-element='product-details'], #product-page",
			ProductName:      "h1",
			ProductPrice:     "[data-element='price'], .price",
			ProductImages:    "[data-element='gallery'] img, .gallery img",
			SizeSelector:     "[data-element='size-selector'], #size-filter-product-page",
			SizeChart:        chart("[data-element='size-chart']"),
		},
	},
	{
		Domain:            "gap.com",
		Name:              "GAP",
		URLPattern:        `/browse/product\.do`,
		TryOnButtonTarget: ".add-to-bag, #AddToBag",
		Selectors: types.SiteSelectors{
			ProductContainer: ".pdp-mfe-container, #product",
			ProductName:      ".product-title__text, h1",
			ProductPrice:     ".pdp-pricing .current-sale-price, .product-price",
			ProductImages:    ".brick__product-image img, .product-photo img",
			SizeSelector:     ".pdp-dimension--size, .swatch-size",
			SizeChart:        nil,
		},
	},
	{
		Domain:            "mango.com",
		Name:              "Mango",
		URLPattern:        `(/p/.+_\d+|_\d+\.html)`,
		TryOnButtonTarget: "#addToCartButton, .add-to-cart",
		Selectors: types.SiteSelectors{
			ProductContainer: "#product-detail, .product-detail",
			ProductName:      ".product-name, h1",
			ProductPrice:     ".product-sale, .price",
			ProductImages:    ".image-grid img, .product-images img",
			SizeSelector:     ".sizes-list, .selector-list",
			SizeChart:        chart(".size-guide-link"),
		},
	},
}

// Builtin returns a copy of the built-in site table
func Builtin() []types.SiteConfig {
	out := make([]types.SiteConfig, len(builtin))
	copy(out, builtin)
	return out
}
