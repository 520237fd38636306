package export

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/menumaker/menumaker/internal/app"
	"github.com/menumaker/menumaker/internal/render"
)

// Command creates the command that exports a saved menu.
func Command(ctx *app.Context) *cobra.Command {
	var (
		id     string
		in     string
		format string
		out    string
	)

	names := make([]string, 0, len(render.Formats()))
	for _, f := range render.Formats() {
		names = append(names, string(f))
	}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a saved menu",
		Long: fmt.Sprintf(`Export a history entry (--id), a menu file (--in) or the newest history entry.
Formats: %s. Without --format the --out extension decides.`, strings.Join(names, ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.LoadMenu(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			if err := a.WriteExport(cmd.OutOrStdout(), out, format, r); err != nil {
				return err
			}
			if out != "" && out != "-" {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "History entry id")
	cmd.Flags().StringVar(&in, "in", "", "Menu file (json or yaml)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (stdout when empty)")
	cmd.MarkFlagsMutuallyExclusive("id", "in")

	return cmd
}
