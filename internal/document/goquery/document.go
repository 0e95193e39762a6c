// Package goquerydoc implements logo.Parser and logo.Document on top of
// PuerkitoBio/goquery.
package goquerydoc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/logo-discovery/internal/logo"
)

// Parser builds goquery-backed documents.
type Parser struct{}

// NewParser returns a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse parses an HTML body.
func (Parser) Parse(body []byte) (logo.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("goquery parse: %w", err)
	}
	return &Document{doc: doc}, nil
}

// Document wraps a goquery document.
type Document struct {
	doc *goquery.Document
}

// Find returns every element matching selector in document order. An
// invalid selector matches nothing.
func (d *Document) Find(selector string) []logo.Element {
	sel := d.doc.Find(selector)
	out := make([]logo.Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, element{sel: s})
	})
	return out
}

type element struct {
	sel *goquery.Selection
}

func (e element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

func (e element) Text() string {
	return strings.Join(strings.Fields(e.sel.Text()), " ")
}

func (e element) HasAncestor(selector string) bool {
	return e.sel.ParentsFiltered(selector).Length() > 0
}
