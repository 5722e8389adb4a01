package directive

import (
	"log/slog"
	"slices"
	"sync"
)

// Reporter receives diagnostics as they are found.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(d Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// LogReporter emits each diagnostic as a slog warning.
func LogReporter(log *slog.Logger) Reporter {
	return ReporterFunc(func(d Diagnostic) {
		log.Warn(d.String(),
			"directive", d.Directive,
			"check", string(d.Check),
			"headers", d.Headers,
			"line", d.Line,
		)
	})
}

// MultiReporter fans each diagnostic out to every non-nil reporter.
func MultiReporter(reporters ...Reporter) Reporter {
	return ReporterFunc(func(d Diagnostic) {
		for _, r := range reporters {
			if r != nil {
				r.Report(d)
			}
		}
	})
}

// Collector records diagnostics in the order they are reported.
type Collector struct {
	mu    sync.Mutex
	diags []Diagnostic
}

func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = append(c.diags, d)
}

// Diagnostics returns a copy of everything reported so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.diags)
}

// Len returns the number of diagnostics reported so far.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.diags)
}
