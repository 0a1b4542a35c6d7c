// Command tocheck prints the links listed under a document's
// "Things to check" heading, one "<label> - <link>" line each.
package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dgallion1/tocheck/internal/checklist"
	"github.com/dgallion1/tocheck/internal/config"
	"github.com/dgallion1/tocheck/internal/parser"
	"github.com/dgallion1/tocheck/internal/render"
)

// version is set at build time via ldflags.
var version = "dev"

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cfg := config.Load()

	var (
		title   string
		format  string
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "tocheck <file>",
		Short: "List the links under the \"Things to check\" heading of a document",
		Long: `tocheck finds the heading titled "Things to check" (or --title) in a
Markdown, HTML or DOCX document and prints every link in the list that
follows it. Files with an unknown extension are read as Markdown.`,
		Version: version,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Argument errors above print usage; failures from here on do not.
			cmd.SilenceUsage = true

			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

			items, err := extractFile(log, args[0], title)
			if err != nil {
				return err
			}
			return render.Write(stdout, f, items)
		},
	}

	cmd.SetErr(stderr)
	cmd.Flags().StringVarP(&title, "title", "t", cfg.Title, "heading text that marks the checklist section (env TOCHECK_TITLE)")
	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatText), "output format: text, json or markdown")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log debug details to stderr")

	return cmd
}

func extractFile(log *slog.Logger, path, title string) ([]checklist.Item, error) {
	p, err := parser.ForFile(path)
	if err != nil {
		log.Debug("reading as markdown", "path", path, "reason", err)
		p = &parser.MarkdownParser{}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	name := filepath.Base(path)
	doc, err := p.Parse(bytes.NewReader(data), name)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	items := checklist.FromDocument(doc, title)
	if len(items) == 0 {
		log.Debug("no checklist items found", "path", path, "title", title, "headings", checklist.HeadingTitles(doc))
		return items, nil
	}
	log.Debug("extracted checklist", "path", path, "title", title, "items", len(items))
	return items, nil
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
