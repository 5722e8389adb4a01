package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dgallion1/specgest/internal/directive"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// FileResult is the parse output for one input document.
type FileResult struct {
	File        string                      `json:"file" yaml:"file"`
	Directives  []directive.ParsedDirective `json:"directives" yaml:"directives"`
	Diagnostics []directive.Diagnostic      `json:"diagnostics" yaml:"diagnostics"`
}

// render writes v as JSON or YAML.
func render(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// renderResults writes parse results in the configured format.
func renderResults(w io.Writer, format string, results []FileResult) error {
	if format == "table" {
		renderTables(w, results)
		return nil
	}
	return render(w, format, results)
}

// renderTables prints one table per directive, headers in document order.
func renderTables(w io.Writer, results []FileResult) {
	for _, res := range results {
		if len(res.Directives) == 0 {
			_, _ = fmt.Fprintf(w, "%s: no directive tables\n", res.File)
			continue
		}
		for _, d := range res.Directives {
			t := table.NewWriter()
			t.SetOutputMirror(w)
			t.SetStyle(table.StyleLight)
			t.SetTitle(fmt.Sprintf("%s %s (line %d)", res.File, d.Directive, d.Line))

			header := make(table.Row, len(d.Headers))
			for i, h := range d.Headers {
				header[i] = h
			}
			t.AppendHeader(header)
			for _, row := range d.Rows {
				r := make(table.Row, len(d.Headers))
				for i, h := range d.Headers {
					r[i] = row[h]
				}
				t.AppendRow(r)
			}
			t.Render()
		}
		for _, diag := range res.Diagnostics {
			_, _ = fmt.Fprintf(w, "warning: %s: %s\n", res.File, diag)
		}
	}
}
