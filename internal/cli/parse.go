package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/dgallion1/specgest/internal/directive"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// stdinName stands for standard input in results.
const stdinName = "-"

// DiagnosticsError is returned by parse --strict when any table failed
// its schema check.
type DiagnosticsError struct {
	Count int
}

func (e *DiagnosticsError) Error() string {
	return fmt.Sprintf("%d schema diagnostic(s) reported", e.Count)
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	var stdinFilename string

	cmd := &cobra.Command{
		Use:   "parse [files...]",
		Short: "Extract directive tables from documents",
		Long: `Parse each file and print its directive tables. The parser is chosen by
file extension (.md, .markdown, .txt, .html, .htm, .docx). With no files,
or "-", the document is read from standard input and parsed according to
--stdin-filename.`,
		Example: `  specgest parse screens/*.md
  specgest parse -o table design.docx
  cat screen.md | specgest parse --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := getConfig(ctx)
			log := getLogger(ctx)

			if len(args) == 0 {
				args = []string{stdinName}
			}

			// Stdin is read once so repeated "-" arguments share the same bytes.
			var stdin []byte
			if slices.Contains(args, stdinName) {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				stdin = data
			}

			results := make([]FileResult, len(args))
			g := new(errgroup.Group)
			g.SetLimit(cfg.Concurrency)
			for i, name := range args {
				g.Go(func() error {
					src, filename, err := openInput(name, stdin, stdinFilename)
					if err != nil {
						return err
					}
					defer src.Close()

					collector := &directive.Collector{}
					ex := directive.NewExtractor(directive.WithReporter(
						directive.MultiReporter(collector, directive.LogReporter(log.With("file", name))),
					))
					dirs, err := ex.ParseFile(src, filename)
					if err != nil {
						return fmt.Errorf("%s: %w", name, err)
					}

					diags := collector.Diagnostics()
					if diags == nil {
						diags = []directive.Diagnostic{}
					}
					results[i] = FileResult{File: name, Directives: dirs, Diagnostics: diags}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			if err := renderResults(cmd.OutOrStdout(), cfg.Output, results); err != nil {
				return err
			}

			if cfg.Strict {
				total := 0
				for _, r := range results {
					total += len(r.Diagnostics)
				}
				if total > 0 {
					return &DiagnosticsError{Count: total}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "output format (json|yaml|table)")
	cmd.Flags().Bool("strict", false, "exit non-zero when any schema diagnostic is reported")
	cmd.Flags().IntP("concurrency", "j", 0, "number of files parsed in parallel")
	cmd.Flags().StringVar(&stdinFilename, "stdin-filename", "stdin.md", "name used to pick the parser for standard input")

	_ = cmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"json", "yaml", "table"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// openInput opens a named file, or the buffered stdin for "-". It returns
// the filename the parser should be chosen by.
func openInput(name string, stdin []byte, stdinFilename string) (io.ReadCloser, string, error) {
	if name == stdinName {
		return io.NopCloser(bytes.NewReader(stdin)), stdinFilename, nil
	}
	f, err := os.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("%s: file not found", name)
		}
		return nil, "", fmt.Errorf("open %s: %w", name, err)
	}
	return f, name, nil
}
