package cli

import (
	"strings"

	"github.com/dgallion1/specgest/internal/directive"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewSchemasCommand creates the schemas command.
func NewSchemasCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "List known directives and their required headers",
		Long: `Print every directive that has a header schema. Each table following
such a directive must carry these headers and no others, in any order
(blank columns are ignored); other directives are extracted without checks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := getConfig(cmd.Context())
			reg := directive.DefaultRegistry()

			if cfg.Output != "table" {
				schemas := make(map[string][]string)
				for _, name := range reg.Directives() {
					schemas[name], _ = reg.Allowed(name)
				}
				return render(cmd.OutOrStdout(), cfg.Output, map[string]any{
					"global":     reg.Global(),
					"directives": schemas,
				})
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Directive", "Required headers"})
			for _, name := range reg.Directives() {
				allowed, _ := reg.Allowed(name)
				t.AppendRow(table.Row{name, strings.Join(allowed, ", ")})
			}
			t.Render()
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "output format (json|yaml|table)")
	return cmd
}
