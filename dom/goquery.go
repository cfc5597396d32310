package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// goqueryDocument adapts a goquery document to Document
type goqueryDocument struct {
	doc *goquery.Document
}

// goqueryElement adapts a single-node goquery selection to Element
type goqueryElement struct {
	sel *goquery.Selection
}

// NewDocument parses HTML from r
func NewDocument(r io.Reader) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return FromGoquery(doc), nil
}

// NewDocumentFromString parses an HTML string
func NewDocumentFromString(markup string) (Document, error) {
	return NewDocument(strings.NewReader(markup))
}

// FromGoquery wraps an already parsed goquery document
func FromGoquery(doc *goquery.Document) Document {
	return &goqueryDocument{doc: doc}
}

func (d *goqueryDocument) QuerySelector(selector string) (Element, bool) {
	return first(d.doc.Find(selector))
}

func (d *goqueryDocument) QuerySelectorAll(selector string) []Element {
	return all(d.doc.Find(selector))
}

func (e *goqueryElement) Text() string {
	return e.sel.Text()
}

func (e *goqueryElement) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e *goqueryElement) QuerySelector(selector string) (Element, bool) {
	return first(e.sel.Find(selector))
}

func (e *goqueryElement) QuerySelectorAll(selector string) []Element {
	return all(e.sel.Find(selector))
}

// goquery matches nothing on an invalid selector, so a bad site table entry
// degrades to "not found" instead of panicking.
func first(sel *goquery.Selection) (Element, bool) {
	if sel.Length() == 0 {
		return nil, false
	}
	return &goqueryElement{sel: sel.First()}, true
}

func all(sel *goquery.Selection) []Element {
	elements := make([]Element, 0, sel.Length())
	sel.Each(func(i int, s *goquery.Selection) {
		elements = append(elements, &goqueryElement{sel: s})
	})
	return elements
}
