package doctree

// Node is any node in a parsed document. The set of implementations is closed:
// Heading, List, ListItem, Paragraph, Link, Text and Other.
type Node interface {
	// Kind names the node variant, e.g. "heading" or "list".
	Kind() string
	// Children returns the node's ordered children. Leaves return nil.
	Children() []Node

	node()
}

// Document is the root of a parsed document.
type Document struct {
	Title  string // Document title (from metadata or filename)
	Blocks []Node // Top-level blocks in source order
}

// Heading is a section marker with a level (1-6) and inline content.
type Heading struct {
	Level  int
	Inline []Node
}

// List is an ordered or bulleted collection of ListItems.
type List struct {
	Ordered bool
	Items   []Node
}

// ListItem is one entry of a List. Its children are blocks, typically Paragraphs.
type ListItem struct {
	Blocks []Node
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Inline []Node
}

// Link is an inline node with a target URL and its visible label content.
type Link struct {
	URL    string
	Inline []Node
}

// Text is a literal string leaf.
type Text struct {
	Value string
}

// Other covers every node kind the extraction does not care about
// (block quotes, code, emphasis, images, tables...).
type Other struct {
	Name  string
	Nodes []Node
}

func (*Heading) Kind() string   { return "heading" }
func (*List) Kind() string      { return "list" }
func (*ListItem) Kind() string  { return "list_item" }
func (*Paragraph) Kind() string { return "paragraph" }
func (*Link) Kind() string      { return "link" }
func (*Text) Kind() string      { return "text" }
func (o *Other) Kind() string   { return o.Name }

func (h *Heading) Children() []Node   { return h.Inline }
func (l *List) Children() []Node      { return l.Items }
func (li *ListItem) Children() []Node { return li.Blocks }
func (p *Paragraph) Children() []Node { return p.Inline }
func (l *Link) Children() []Node      { return l.Inline }
func (*Text) Children() []Node        { return nil }
func (o *Other) Children() []Node     { return o.Nodes }

func (*Heading) node()   {}
func (*List) node()      {}
func (*ListItem) node()  {}
func (*Paragraph) node() {}
func (*Link) node()      {}
func (*Text) node()      {}
func (*Other) node()     {}

// Walk visits n and its descendants depth-first in document order. If fn
// returns false the node's children are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, fn)
	}
}
