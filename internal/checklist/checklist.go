// Package checklist pulls the pending-link checklist out of a parsed
// document: the links listed under the "Things to check" heading.
package checklist

import (
	"fmt"
	"io"

	"github.com/dgallion1/tocheck/internal/doctree"
	"github.com/dgallion1/tocheck/internal/parser"
)

// DefaultTitle is the heading text that marks the checklist section.
const DefaultTitle = "Things to check"

// Item is one extracted checklist entry.
type Item struct {
	Label string `json:"label"`
	Link  string `json:"link"`
}

func (i Item) String() string {
	return i.Label + " - " + i.Link
}

// Locate scans the document's top-level blocks for a heading titled title and
// returns the last list that follows it, or nil.
//
// A later heading with a different title does not end the section: every
// list after the match is a candidate and the last one wins.
func Locate(doc *doctree.Document, title string) *doctree.List {
	if doc == nil {
		return nil
	}

	found := false
	var active *doctree.List
	for _, block := range doc.Blocks {
		switch b := block.(type) {
		case *doctree.Heading:
			if HeadingTitle(b) == title {
				found = true
			}
		case *doctree.List:
			if found {
				active = b
			}
		}
	}
	return active
}

// HeadingTitle returns the value of the heading's first direct Text child,
// or "" when it has none.
func HeadingTitle(h *doctree.Heading) string {
	for _, c := range h.Inline {
		if t, ok := c.(*doctree.Text); ok {
			return t.Value
		}
	}
	return ""
}

// HeadingTitles lists the titles of every heading in doc, nested ones
// included, in document order.
func HeadingTitles(doc *doctree.Document) []string {
	if doc == nil {
		return nil
	}
	var titles []string
	for _, block := range doc.Blocks {
		doctree.Walk(block, func(n doctree.Node) bool {
			h, ok := n.(*doctree.Heading)
			if !ok {
				return true
			}
			titles = append(titles, HeadingTitle(h))
			return false
		})
	}
	return titles
}

// Extract returns one Item per Text inside a Link inside a Paragraph inside a
// ListItem of list, in document order. Entries of any other shape are skipped.
func Extract(list *doctree.List) []Item {
	items := []Item{}
	if list == nil {
		return items
	}

	for _, li := range list.Items {
		item, ok := li.(*doctree.ListItem)
		if !ok {
			continue
		}
		for _, block := range item.Blocks {
			para, ok := block.(*doctree.Paragraph)
			if !ok {
				continue
			}
			for _, inline := range para.Inline {
				link, ok := inline.(*doctree.Link)
				if !ok {
					continue
				}
				for _, c := range link.Inline {
					if t, ok := c.(*doctree.Text); ok {
						items = append(items, Item{Label: t.Value, Link: link.URL})
					}
				}
			}
		}
	}
	return items
}

// FromDocument locates the titled section in doc and extracts its items.
func FromDocument(doc *doctree.Document, title string) []Item {
	return Extract(Locate(doc, title))
}

// Run parses r with p and extracts the checklist under title. A parse failure
// is returned; a missing section or list is not an error and yields no items.
func Run(p parser.Parser, r io.Reader, filename, title string) ([]Item, error) {
	doc, err := p.Parse(r, filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return FromDocument(doc, title), nil
}
