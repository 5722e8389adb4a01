package pipeline

import (
	"bytes"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/specgest/internal/directive"
	"github.com/dgallion1/specgest/internal/parser"
)

// Worker turns uploaded documents into directive tables.
type Worker struct {
	registry *directive.Registry
	stats    *ParseStats
	log      *slog.Logger
}

func NewWorker(registry *directive.Registry, stats *ParseStats, log *slog.Logger) *Worker {
	if registry == nil {
		registry = directive.DefaultRegistry()
	}
	return &Worker{registry: registry, stats: stats, log: log}
}

// Run parses one document synchronously. Diagnostics are logged and
// returned; only an unsupported or unreadable document is an error.
func (w *Worker) Run(filename string, data []byte) (Result, error) {
	return w.run(w.log.With("filename", filename), filename, data, nil)
}

// Process runs a queued job to completion, recording the outcome on it.
func (w *Worker) Process(job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "filename", job.Filename)

	res, err := w.run(log, job.Filename, job.FileData(), job)
	if err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.SetResult(res)
	job.SetStatus(StatusCompleted, "done")
}

func (w *Worker) run(log *slog.Logger, filename string, data []byte, job *Job) (Result, error) {
	start := time.Now()
	if job != nil {
		job.SetStatus(StatusParsing, "parsing")
	}

	p, err := parser.ForFile(filename)
	if err != nil {
		log.Error("unsupported format", "error", err)
		return Result{}, err
	}
	tree, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		log.Error("parse failed", "error", err)
		return Result{}, fmt.Errorf("parse: %w", err)
	}

	if job != nil {
		job.SetStatus(StatusExtracting, "extracting")
	}
	collector := &directive.Collector{}
	ex := directive.NewExtractor(
		directive.WithRegistry(w.registry),
		directive.WithReporter(directive.MultiReporter(collector, directive.LogReporter(log))),
	)
	directives := ex.Extract(tree)

	diags := collector.Diagnostics()
	if diags == nil {
		diags = []directive.Diagnostic{}
	}
	if w.stats != nil {
		w.stats.Record(time.Since(start), len(directives))
	}
	log.Info("document parsed", "directives", len(directives), "diagnostics", len(diags),
		"duration_ms", time.Since(start).Milliseconds())

	return Result{Directives: directives, Diagnostics: diags}, nil
}
