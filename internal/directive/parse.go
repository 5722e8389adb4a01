package directive

import (
	"io"
	"log/slog"

	"github.com/dgallion1/specgest/internal/doctree"
	"github.com/dgallion1/specgest/internal/parser"
)

// Extractor walks document trees and collects directive tables.
type Extractor struct {
	registry *Registry
	reporter Reporter
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRegistry sets the schema registry. The default is DefaultRegistry.
func WithRegistry(r *Registry) Option {
	return func(e *Extractor) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithReporter sets where diagnostics go. The default logs them as
// warnings on slog.Default().
func WithReporter(r Reporter) Option {
	return func(e *Extractor) {
		if r != nil {
			e.reporter = r
		}
	}
}

func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		registry: DefaultRegistry(),
		reporter: LogReporter(slog.Default()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns one ParsedDirective per directive paragraph that is
// immediately followed by a table, in document order.
func (e *Extractor) Extract(root *doctree.Node) []ParsedDirective {
	results := []ParsedDirective{}
	doctree.Walk(root, func(n *doctree.Node, index int, parent *doctree.Node) {
		p, ok := Pair(n, parent, index)
		if !ok {
			return
		}
		results = append(results, e.process(p))
	})
	return results
}

func (e *Extractor) process(p Pairing) ParsedDirective {
	headers := Headers(p.Table)
	line := p.Table.Line

	for _, d := range e.registry.Validate(p.Directive, headers, line) {
		e.reporter.Report(d)
	}

	return ParsedDirective{
		Directive: p.Directive,
		Line:      line,
		Headers:   headers,
		Rows:      Rows(p.Table, headers),
	}
}

// Parse extracts directive tables from Markdown text.
func (e *Extractor) Parse(markdown string) []ParsedDirective {
	return e.Extract(parser.ParseMarkdown([]byte(markdown)))
}

// ParseFile picks a parser from the filename's extension and extracts
// directive tables from r. Only parser failures are returned as errors.
func (e *Extractor) ParseFile(r io.Reader, filename string) ([]ParsedDirective, error) {
	p, err := parser.ForFile(filename)
	if err != nil {
		return nil, err
	}
	root, err := p.Parse(r, filename)
	if err != nil {
		return nil, err
	}
	return e.Extract(root), nil
}

// Parse extracts directive tables from Markdown text using the default
// registry, logging diagnostics on slog.Default().
func Parse(markdown string) []ParsedDirective {
	return NewExtractor().Parse(markdown)
}
