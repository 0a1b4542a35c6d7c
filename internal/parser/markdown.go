package parser

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/tocheck/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(src) {
		return nil, fmt.Errorf("parse markdown: input is not valid UTF-8")
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	root := md.Parser().Parse(reader)

	return &doctree.Document{
		Title:  trimExt(filename, ".md", ".markdown", ".txt"),
		Blocks: markdownChildren(root, src),
	}, nil
}

// markdownChildren converts the children of a goldmark node. Adjacent text
// segments belong to one run in the source, so they are merged into a single
// Text node; goldmark splits them at line ends and escapes.
func markdownChildren(n ast.Node, src []byte) []doctree.Node {
	var out []doctree.Node
	var raw []byte
	pending := false

	flushText := func() {
		if pending {
			out = append(out, &doctree.Text{Value: markdownUnescape(raw)})
		}
		raw = raw[:0]
		pending = false
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		t, ok := c.(*ast.Text)
		if !ok {
			flushText()
			out = append(out, markdownNode(c, src))
			continue
		}
		raw = append(raw, t.Value(src)...)
		pending = true
		if t.SoftLineBreak() {
			raw = append(raw, '\n')
		}
		if t.HardLineBreak() {
			flushText()
			out = append(out, &doctree.Other{Name: "break"})
		}
	}
	flushText()
	return out
}

// markdownUnescape resolves backslash escapes and character references, which
// goldmark leaves in text segments and link destinations for the renderer.
func markdownUnescape(raw []byte) string {
	v := util.UnescapePunctuations(raw)
	v = util.ResolveNumericReferences(v)
	v = util.ResolveEntityNames(v)
	return string(v)
}

func markdownNode(n ast.Node, src []byte) doctree.Node {
	switch node := n.(type) {
	case *ast.Heading:
		return &doctree.Heading{Level: node.Level, Inline: markdownChildren(node, src)}
	case *ast.List:
		return &doctree.List{Ordered: node.IsOrdered(), Items: markdownChildren(node, src)}
	case *ast.ListItem:
		return &doctree.ListItem{Blocks: markdownChildren(node, src)}
	case *ast.Paragraph:
		return &doctree.Paragraph{Inline: markdownChildren(node, src)}
	case *ast.TextBlock:
		// Tight list items hold their content in a TextBlock rather than a
		// Paragraph. Both are the same thing to a reader.
		return &doctree.Paragraph{Inline: markdownChildren(node, src)}
	case *ast.Link:
		return &doctree.Link{URL: markdownUnescape(node.Destination), Inline: markdownChildren(node, src)}
	case *ast.AutoLink:
		return &doctree.Link{
			URL:    string(node.URL(src)),
			Inline: []doctree.Node{&doctree.Text{Value: string(node.Label(src))}},
		}
	case *ast.String:
		return &doctree.Text{Value: string(node.Value)}
	default:
		return &doctree.Other{
			Name:  strings.ToLower(n.Kind().String()),
			Nodes: markdownChildren(n, src),
		}
	}
}
