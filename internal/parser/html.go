package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/tocheck/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files, typically a rendered README.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &doctree.Document{
		Title: trimExt(filename, ".html", ".htm"),
	}

	// Extract title from <title> tag if present.
	if title := findTitle(root); title != "" {
		doc.Title = title
	}

	// Find <body> or use whole document.
	if body := findBody(root); body != nil {
		doc.Blocks = htmlBlocks(body)
	} else {
		doc.Blocks = htmlBlocks(root)
	}
	return doc, nil
}

// Elements that only group content; their children are lifted into the
// surrounding block sequence.
var htmlWrappers = map[string]bool{
	"html": true, "body": true, "div": true, "section": true,
	"article": true, "main": true, "header": true, "footer": true,
}

var htmlSkipped = map[string]bool{
	"head": true, "script": true, "style": true, "nav": true,
	"template": true, "noscript": true,
}

var htmlBlockTags = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"ul": true, "ol": true, "li": true, "blockquote": true, "pre": true,
	"table": true, "hr": true, "figure": true, "dl": true, "form": true,
	"aside": true, "details": true,
}

// htmlBlocks converts the children of n into block nodes. Runs of inline
// content between blocks become implicit paragraphs, which is how a tight
// list item (<li><a href=...>x</a></li>) reads.
func htmlBlocks(n *html.Node) []doctree.Node {
	var out []doctree.Node
	var pending []*html.Node

	flushInline := func() {
		if len(pending) == 0 {
			return
		}
		var inline []doctree.Node
		for _, c := range pending {
			inline = appendInline(inline, htmlInlineNode(c)...)
		}
		pending = pending[:0]
		inline = trimInline(inline)
		if len(inline) > 0 {
			out = append(out, &doctree.Paragraph{Inline: inline})
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			if htmlSkipped[c.Data] {
				continue
			}
			if htmlWrappers[c.Data] {
				flushInline()
				out = append(out, htmlBlocks(c)...)
				continue
			}
			if htmlBlockTags[c.Data] {
				flushInline()
				out = append(out, htmlBlock(c))
				continue
			}
			pending = append(pending, c)
		case html.TextNode:
			pending = append(pending, c)
		}
	}
	flushInline()
	return out
}

func htmlBlock(n *html.Node) doctree.Node {
	if level := headingLevel(n.Data); level > 0 {
		return &doctree.Heading{Level: level, Inline: htmlInline(n)}
	}
	switch n.Data {
	case "ul", "ol":
		list := &doctree.List{Ordered: n.Data == "ol"}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == "li" {
				list.Items = append(list.Items, &doctree.ListItem{Blocks: htmlBlocks(c)})
			}
		}
		return list
	case "li":
		// A stray <li> outside a list.
		return &doctree.ListItem{Blocks: htmlBlocks(n)}
	case "p":
		return &doctree.Paragraph{Inline: htmlInline(n)}
	default:
		return &doctree.Other{Name: n.Data, Nodes: htmlBlocks(n)}
	}
}

// htmlInline converts the children of n into trimmed inline nodes.
func htmlInline(n *html.Node) []doctree.Node {
	var out []doctree.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = appendInline(out, htmlInlineNode(c)...)
	}
	return trimInline(out)
}

func htmlInlineNode(n *html.Node) []doctree.Node {
	switch n.Type {
	case html.TextNode:
		return []doctree.Node{&doctree.Text{Value: collapseSpace(n.Data)}}
	case html.ElementNode:
	default:
		return nil
	}

	switch n.Data {
	case "a":
		if href, ok := attr(n, "href"); ok {
			return []doctree.Node{&doctree.Link{URL: href, Inline: htmlInline(n)}}
		}
	case "br":
		return []doctree.Node{&doctree.Other{Name: "break"}}
	case "script", "style", "template":
		return nil
	}

	var children []doctree.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		children = appendInline(children, htmlInlineNode(c)...)
	}
	return []doctree.Node{&doctree.Other{Name: n.Data, Nodes: children}}
}

// appendInline appends nodes to out, merging adjacent Text nodes.
func appendInline(out []doctree.Node, nodes ...doctree.Node) []doctree.Node {
	for _, n := range nodes {
		if t, ok := n.(*doctree.Text); ok {
			if last, ok := lastText(out); ok {
				last.Value += t.Value
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

// trimInline strips whitespace at the edges of an inline sequence and drops
// text nodes left empty.
func trimInline(nodes []doctree.Node) []doctree.Node {
	if len(nodes) == 0 {
		return nodes
	}
	if t, ok := nodes[0].(*doctree.Text); ok {
		t.Value = strings.TrimLeft(t.Value, " ")
	}
	if t, ok := nodes[len(nodes)-1].(*doctree.Text); ok {
		t.Value = strings.TrimRight(t.Value, " ")
	}
	out := nodes[:0]
	for _, n := range nodes {
		if t, ok := n.(*doctree.Text); ok && t.Value == "" {
			continue
		}
		out = append(out, n)
	}
	return out
}

// collapseSpace folds runs of HTML whitespace into a single space.
func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				b.WriteByte(' ')
			}
			space = true
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

func lastText(nodes []doctree.Node) (*doctree.Text, bool) {
	if len(nodes) == 0 {
		return nil, false
	}
	t, ok := nodes[len(nodes)-1].(*doctree.Text)
	return t, ok
}
