package detector

import (
	"testing"

	"github.com/Marlvin12/perfit/dom"
	"github.com/Marlvin12/perfit/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, markup string) dom.Document {
	t.Helper()
	doc, err := dom.NewDocumentFromString(markup)
	require.NoError(t, err)
	return doc
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		text string
		want types.Price
	}{
		{"€49,99", types.Price{Amount: 49.99, Currency: "EUR"}},
		{"$120.50", types.Price{Amount: 120.50, Currency: "USD"}},
		{"£35", types.Price{Amount: 35, Currency: "GBP"}},
		{"¥5000", types.Price{Amount: 5000, Currency: "JPY"}},
		{"Now only 19.99", types.Price{Amount: 19.99, Currency: "USD"}},
		{"12.", types.Price{Amount: 12, Currency: "USD"}},
		{"Sold out", types.Price{Amount: 0, Currency: "USD"}},
		{"", types.Price{Amount: 0, Currency: "USD"}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ParsePrice(tt.text)
			assert.Equal(t, tt.want.Currency, got.Currency)
			assert.InDelta(t, tt.want.Amount, got.Amount, 0.0001)
		})
	}
}

func TestExtractPrice_MissingElement(t *testing.T) {
	doc := mustDoc(t, `<div class="other">$10</div>`)
	assert.Equal(t, types.Price{Amount: 0, Currency: "USD"}, ExtractPrice(doc, ".price"))
}

func TestExtractText(t *testing.T) {
	doc := mustDoc(t, `<h1 class="name">
		Relaxed Linen Shirt
	</h1><h1 class="name">Second</h1>`)

	assert.Equal(t, "Relaxed Linen Shirt", ExtractText(doc, ".name"))
	assert.Equal(t, "", ExtractText(doc, ".missing"))
}

func TestExtractImages(t *testing.T) {
	doc := mustDoc(t, `<div class="gallery">
		<img src="//cdn.example.com/a.jpg">
		<img data-src="https://cdn.example.com/b.jpg">
		<img src="" data-src="/c.jpg">
		<img alt="no source">
		<img src="//cdn.example.com/a.jpg">
	</div>`)

	images := ExtractImages(doc, ".gallery img")
	assert.Equal(t, []string{
		"https://cdn.example.com/a.jpg",
		"https://cdn.example.com/b.jpg",
		"/c.jpg",
		"https://cdn.example.com/a.jpg",
	}, images)
}

func TestExtractImages_NoMatch(t *testing.T) {
	doc := mustDoc(t, `<p>nothing</p>`)
	assert.Empty(t, ExtractImages(doc, "img"))
}

func TestExtractSizes_DeduplicatesAndUppercases(t *testing.T) {
	doc := mustDoc(t, `<div class="sizes">
		<button>m</button>
		<button>M</button>
		<button>L</button>
	</div>`)

	assert.Equal(t, []string{"M", "L"}, ExtractSizes(doc, ".sizes"))
}

func TestExtractSizes_FiltersNonSizeLabels(t *testing.T) {
	doc := mustDoc(t, `<ul class="sizes">
		<li><span>xs</span></li>
		<li>Select size</li>
		<li><label> 38 </label></li>
		<li>100</li>
		<li>XXXL</li>
		<div>XL</div>
	</ul>`)

	assert.Equal(t, []string{"XS", "38", "XXXL"}, ExtractSizes(doc, ".sizes"))
}

func TestExtractSizes_MissingContainer(t *testing.T) {
	doc := mustDoc(t, `<button>M</button>`)

	sizes := ExtractSizes(doc, ".sizes")
	assert.NotNil(t, sizes)
	assert.Empty(t, sizes)
}
