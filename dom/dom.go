// Package dom exposes the read-only document queries the detector needs.
//
// Detection never touches a browser directly: it works against a Document,
// which can be backed by a parsed HTML snapshot or by a synthetic fixture in
// tests. Elements handed out by a Document belong to that snapshot only and
// must not be kept across detection passes.
package dom

// Element is a node of a queried document
type Element interface {
	// Text returns the concatenated text of the element and its descendants
	Text() string

	// Attr returns the value of an attribute and whether it is present
	Attr(name string) (string, bool)

	// QuerySelector returns the first descendant matching the selector
	QuerySelector(selector string) (Element, bool)

	// QuerySelectorAll returns every descendant matching the selector in document order
	QuerySelectorAll(selector string) []Element
}

// Document is a queryable page
type Document interface {
	QuerySelector(selector string) (Element, bool)
	QuerySelectorAll(selector string) []Element
}
