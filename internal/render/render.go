// Package render writes extracted checklist items in the supported output
// formats.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/tocheck/internal/checklist"
)

// Format selects an output representation.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatMarkdown:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or markdown)", s)
	}
}

// Labels may span lines and hold brackets; each item must stay one list entry.
var (
	mdLabel = strings.NewReplacer("\r\n", " ", "\n", " ", `\`, `\\`, "[", `\[`, "]", `\]`)
	mdDest  = strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`, " ", "%20", "\n", "%0A")
)

// Write renders items to w in the given format.
func Write(w io.Writer, f Format, items []checklist.Item) error {
	switch f {
	case FormatText, "":
		for _, it := range items {
			if _, err := fmt.Fprintln(w, it.String()); err != nil {
				return err
			}
		}
		return nil
	case FormatMarkdown:
		for _, it := range items {
			if _, err := fmt.Fprintf(w, "- [%s](%s)\n", mdLabel.Replace(it.Label), mdDest.Replace(it.Link)); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		if items == nil {
			items = []checklist.Item{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"items": items})
	default:
		return fmt.Errorf("unknown output format %q", f)
	}
}
