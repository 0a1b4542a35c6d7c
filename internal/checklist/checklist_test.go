package checklist

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/tocheck/internal/doctree"
	"github.com/dgallion1/tocheck/internal/parser"
)

func heading(title string) *doctree.Heading {
	return &doctree.Heading{Level: 2, Inline: []doctree.Node{&doctree.Text{Value: title}}}
}

func link(url string, labels ...string) *doctree.Link {
	l := &doctree.Link{URL: url}
	for _, s := range labels {
		l.Inline = append(l.Inline, &doctree.Text{Value: s})
	}
	return l
}

func linkItem(url, label string) *doctree.ListItem {
	return &doctree.ListItem{Blocks: []doctree.Node{
		&doctree.Paragraph{Inline: []doctree.Node{link(url, label)}},
	}}
}

func list(items ...doctree.Node) *doctree.List {
	return &doctree.List{Items: items}
}

func TestLocate(t *testing.T) {
	first := list(linkItem("http://a.com", "a"))
	second := list(linkItem("http://b.com", "b"))

	tests := []struct {
		name   string
		blocks []doctree.Node
		want   *doctree.List
	}{
		{
			name:   "empty document",
			blocks: nil,
			want:   nil,
		},
		{
			name:   "list before heading is ignored",
			blocks: []doctree.Node{first, heading(DefaultTitle)},
			want:   nil,
		},
		{
			name:   "list after heading",
			blocks: []doctree.Node{heading(DefaultTitle), first},
			want:   first,
		},
		{
			name: "block quote between heading and list",
			blocks: []doctree.Node{
				heading(DefaultTitle),
				&doctree.Other{Name: "blockquote"},
				first,
			},
			want: first,
		},
		{
			name:   "last list wins",
			blocks: []doctree.Node{heading(DefaultTitle), first, second},
			want:   second,
		},
		{
			name:   "later heading does not close the section",
			blocks: []doctree.Node{heading(DefaultTitle), first, heading("Other"), second},
			want:   second,
		},
		{
			name:   "title must match exactly",
			blocks: []doctree.Node{heading("things to check"), first, heading("Things to check "), second},
			want:   nil,
		},
		{
			name:   "nested lists are not top-level blocks",
			blocks: []doctree.Node{heading(DefaultTitle), &doctree.Other{Name: "blockquote", Nodes: []doctree.Node{first}}},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Locate(&doctree.Document{Blocks: tt.blocks}, DefaultTitle)
			assert.Same(t, tt.want, got)
		})
	}
}

func TestLocate_NilDocument(t *testing.T) {
	assert.Nil(t, Locate(nil, DefaultTitle))
}

func TestHeadingTitle(t *testing.T) {
	tests := []struct {
		name string
		h    *doctree.Heading
		want string
	}{
		{"plain", heading("Things to check"), "Things to check"},
		{"empty", &doctree.Heading{Level: 1}, ""},
		{
			name: "first direct text only",
			h: &doctree.Heading{Inline: []doctree.Node{
				&doctree.Other{Name: "emphasis", Nodes: []doctree.Node{&doctree.Text{Value: "Things"}}},
				&doctree.Text{Value: " to check"},
				&doctree.Text{Value: "ignored"},
			}},
			want: " to check",
		},
		{
			name: "no direct text",
			h: &doctree.Heading{Inline: []doctree.Node{
				&doctree.Other{Name: "code_span", Nodes: []doctree.Node{&doctree.Text{Value: "x"}}},
			}},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HeadingTitle(tt.h))
		})
	}
}

func TestHeadingTitles(t *testing.T) {
	doc := &doctree.Document{Blocks: []doctree.Node{
		heading("Intro"),
		list(linkItem("http://a.com", "a")),
		&doctree.Other{Name: "blockquote", Nodes: []doctree.Node{heading("Quoted")}},
		heading(DefaultTitle),
	}}
	assert.Equal(t, []string{"Intro", "Quoted", DefaultTitle}, HeadingTitles(doc))
	assert.Nil(t, HeadingTitles(nil))
	assert.Empty(t, HeadingTitles(&doctree.Document{}))
}

func TestExtract_NilList(t *testing.T) {
	items := Extract(nil)
	require.NotNil(t, items)
	assert.Empty(t, items)
}

func TestExtract_SkipsMalformedEntries(t *testing.T) {
	l := list(
		linkItem("http://one.com", "one"),
		// Plain text item, no link.
		&doctree.ListItem{Blocks: []doctree.Node{
			&doctree.Paragraph{Inline: []doctree.Node{&doctree.Text{Value: "just text"}}},
		}},
		// Link with no text label.
		&doctree.ListItem{Blocks: []doctree.Node{
			&doctree.Paragraph{Inline: []doctree.Node{
				&doctree.Link{URL: "http://image.com", Inline: []doctree.Node{&doctree.Other{Name: "image"}}},
			}},
		}},
		// Item with a nested list instead of a paragraph.
		&doctree.ListItem{Blocks: []doctree.Node{list(linkItem("http://nested.com", "nested"))}},
		// Link wrapped in emphasis.
		&doctree.ListItem{Blocks: []doctree.Node{
			&doctree.Paragraph{Inline: []doctree.Node{
				&doctree.Other{Name: "emphasis", Nodes: []doctree.Node{link("http://em.com", "em")}},
			}},
		}},
		// Not a list item at all.
		&doctree.Paragraph{Inline: []doctree.Node{link("http://stray.com", "stray")}},
		linkItem("http://two.com", "two"),
	)

	want := []Item{
		{Label: "one", Link: "http://one.com"},
		{Label: "two", Link: "http://two.com"},
	}
	assert.Equal(t, want, Extract(l))
}

func TestExtract_FansOut(t *testing.T) {
	l := list(&doctree.ListItem{Blocks: []doctree.Node{
		&doctree.Paragraph{Inline: []doctree.Node{
			link("http://a.com", "a"),
			&doctree.Text{Value: " and "},
			link("http://b.com", "b1", "b2"),
		}},
		&doctree.Paragraph{Inline: []doctree.Node{link("http://c.com", "c")}},
	}})

	want := []Item{
		{Label: "a", Link: "http://a.com"},
		{Label: "b1", Link: "http://b.com"},
		{Label: "b2", Link: "http://b.com"},
		{Label: "c", Link: "http://c.com"},
	}
	assert.Equal(t, want, Extract(l))
}

func TestFromDocument_Markdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Item
	}{
		{
			name: "scenario with block quote",
			input: `## Things to check

> Move to a correct place after review.

- [Link text](http://link.com)
- [Link2 text](http://link2.com)`,
			want: []Item{
				{Label: "Link text", Link: "http://link.com"},
				{Label: "Link2 text", Link: "http://link2.com"},
			},
		},
		{
			name:  "no matching heading",
			input: "# Notes\n\n- [a](http://a.com)\n\n## Other\n\n- [b](http://b.com)\n",
			want:  []Item{},
		},
		{
			name:  "heading without list",
			input: "- [a](http://a.com)\n\n## Things to check\n\nNothing yet.\n",
			want:  []Item{},
		},
		{
			name:  "second list wins",
			input: "## Things to check\n\n- [a](http://a.com)\n\nBreak.\n\n- [b](http://b.com)\n",
			want:  []Item{{Label: "b", Link: "http://b.com"}},
		},
		{
			name:  "list under a later heading still counts",
			input: "## Things to check\n\n- [a](http://a.com)\n\n## Done\n\n- [b](http://b.com)\n",
			want:  []Item{{Label: "b", Link: "http://b.com"}},
		},
		{
			name:  "two links in one item keep order",
			input: "## Things to check\n\n- [first](http://1.com) then [second](http://2.com)\n",
			want: []Item{
				{Label: "first", Link: "http://1.com"},
				{Label: "second", Link: "http://2.com"},
			},
		},
		{
			name:  "malformed items are skipped",
			input: "## Things to check\n\n- plain text\n- [](http://empty.com)\n- ![img](http://img.com/x.png)\n- [**bold**](http://bold.com)\n- [ok](http://ok.com)\n",
			want:  []Item{{Label: "ok", Link: "http://ok.com"}},
		},
		{
			name:  "loose list",
			input: "## Things to check\n\n- [a](http://a.com)\n\n- [b](http://b.com)\n",
			want: []Item{
				{Label: "a", Link: "http://a.com"},
				{Label: "b", Link: "http://b.com"},
			},
		},
		{
			name:  "ordered list and autolink",
			input: "### Things to check\n\n1. <https://auto.example.com>\n2. [named](https://named.example.com)\n",
			want: []Item{
				{Label: "https://auto.example.com", Link: "https://auto.example.com"},
				{Label: "named", Link: "https://named.example.com"},
			},
		},
		{
			name:  "escapes in link destination",
			input: "## Things to check\n\n- [a](http://x.com/a\\_b)\n- [b](http://x.com/?a=1&amp;b=2)\n",
			want: []Item{
				{Label: "a", Link: "http://x.com/a_b"},
				{Label: "b", Link: "http://x.com/?a=1&b=2"},
			},
		},
		{
			name:  "reference link resolves to its definition",
			input: "## Things to check\n\n- [ref][r]\n\n[r]: http://ref.com\n",
			want:  []Item{{Label: "ref", Link: "http://ref.com"}},
		},
	}

	p := &parser.MarkdownParser{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := p.Parse(strings.NewReader(tt.input), "notes.md")
			require.NoError(t, err)
			assert.Equal(t, tt.want, FromDocument(doc, DefaultTitle))
		})
	}
}

func TestFromDocument_CustomTitle(t *testing.T) {
	doc, err := (&parser.MarkdownParser{}).Parse(strings.NewReader("## Reading list\n\n- [a](http://a.com)\n"), "r.md")
	require.NoError(t, err)

	assert.Empty(t, FromDocument(doc, DefaultTitle))
	assert.Equal(t, []Item{{Label: "a", Link: "http://a.com"}}, FromDocument(doc, "Reading list"))
}

func TestFromDocument_RepeatedCallsAreIndependent(t *testing.T) {
	doc, err := (&parser.MarkdownParser{}).Parse(strings.NewReader("## Things to check\n\n- [a](http://a.com)\n"), "r.md")
	require.NoError(t, err)

	first := FromDocument(doc, DefaultTitle)
	second := FromDocument(doc, DefaultTitle)
	assert.Equal(t, first, second)
	assert.Len(t, second, 1)
}

type failingParser struct{}

func (failingParser) Parse(io.Reader, string) (*doctree.Document, error) {
	return nil, errors.New("boom")
}

func TestRun(t *testing.T) {
	items, err := Run(&parser.MarkdownParser{}, strings.NewReader("## Things to check\n\n- [a](http://a.com)\n"), "a.md", DefaultTitle)
	require.NoError(t, err)
	assert.Equal(t, []Item{{Label: "a", Link: "http://a.com"}}, items)

	_, err = Run(failingParser{}, strings.NewReader(""), "bad.md", DefaultTitle)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse bad.md")
	assert.Contains(t, err.Error(), "boom")
}

func TestItemString(t *testing.T) {
	assert.Equal(t, "Link text - http://link.com", Item{Label: "Link text", Link: "http://link.com"}.String())
}
