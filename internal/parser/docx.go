package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/tocheck/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Word has no list container, so consecutive
// list-styled paragraphs are grouped into one List.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	f, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	doc := &doctree.Document{
		Title: trimExt(filename, ".docx"),
	}

	var list *doctree.List
	flushList := func() {
		if list != nil {
			doc.Blocks = append(doc.Blocks, list)
			list = nil
		}
	}

	for _, item := range f.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			flushList()
			doc.Blocks = append(doc.Blocks, &doctree.Other{Name: "table"})
			continue
		}

		style := docxStyle(para)
		inline := docxInline(f, para)

		if level := docxHeadingLevel(style); level > 0 {
			flushList()
			doc.Blocks = append(doc.Blocks, &doctree.Heading{Level: level, Inline: inline})
			continue
		}
		if docxIsListStyle(style) {
			if list == nil {
				list = &doctree.List{Ordered: strings.Contains(strings.ToLower(style), "number")}
			}
			list.Items = append(list.Items, &doctree.ListItem{
				Blocks: []doctree.Node{&doctree.Paragraph{Inline: inline}},
			})
			continue
		}
		flushList()
		if len(inline) > 0 {
			doc.Blocks = append(doc.Blocks, &doctree.Paragraph{Inline: inline})
		}
	}
	flushList()

	return doc, nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

func docxHeadingLevel(style string) int {
	switch {
	case strings.EqualFold(style, "Heading1") || strings.EqualFold(style, "heading 1"):
		return 1
	case strings.EqualFold(style, "Heading2") || strings.EqualFold(style, "heading 2"):
		return 2
	case strings.EqualFold(style, "Heading3") || strings.EqualFold(style, "heading 3"):
		return 3
	case strings.EqualFold(style, "Heading4") || strings.EqualFold(style, "heading 4"):
		return 4
	case strings.EqualFold(style, "Heading5") || strings.EqualFold(style, "heading 5"):
		return 5
	case strings.EqualFold(style, "Heading6") || strings.EqualFold(style, "heading 6"):
		return 6
	}
	return 0
}

func docxIsListStyle(style string) bool {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	return strings.HasPrefix(s, "listparagraph") ||
		strings.HasPrefix(s, "listbullet") ||
		strings.HasPrefix(s, "listnumber")
}

// docxInline converts a paragraph's runs and hyperlinks into inline nodes.
func docxInline(f *docx.Docx, para *docx.Paragraph) []doctree.Node {
	var out []doctree.Node
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			if t := docxRunText(c); t != "" {
				out = appendInline(out, &doctree.Text{Value: t})
			}
		case *docx.Hyperlink:
			var label []doctree.Node
			t := docxRunText(&c.Run)
			if t == "" {
				// go-docx writes hyperlink labels as instrText.
				t = c.Run.InstrText
			}
			if t != "" {
				label = append(label, &doctree.Text{Value: t})
			}
			target, err := f.ReferTarget(c.ID)
			if err != nil || target == "" {
				out = append(out, &doctree.Other{Name: "hyperlink", Nodes: label})
				continue
			}
			out = append(out, &doctree.Link{URL: target, Inline: label})
		}
	}
	return out
}

func docxRunText(run *docx.Run) string {
	var buf strings.Builder
	for _, rc := range run.Children {
		if t, ok := rc.(*docx.Text); ok {
			buf.WriteString(t.Text)
		}
	}
	return buf.String()
}
