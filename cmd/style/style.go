package style

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/menumaker/menumaker/internal/app"
	menustyle "github.com/menumaker/menumaker/internal/style"
)

// Command creates the command that prints the detected style of a menu.
func Command(ctx *app.Context) *cobra.Command {
	var (
		id   string
		in   string
		dark bool
	)

	cmd := &cobra.Command{
		Use:   "style",
		Short: "Detect the presentational style of a menu",
		Long:  "Classify a history entry (--id), a menu file (--in) or the newest history entry and print its palette.",
		Args:  cobra.NoArgs,
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

			s := menustyle.Detect(r)
			p := menustyle.ThemeFor(s).Palette(dark)
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: %s\n", r.Name, s)
			fmt.Fprintf(w, "  primary    %s\n", p.Primary)
			fmt.Fprintf(w, "  accent     %s\n", p.Accent)
			fmt.Fprintf(w, "  background %s\n", p.Background)
			fmt.Fprintf(w, "  header     %s\n", p.Header)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "History entry id")
	cmd.Flags().StringVar(&in, "in", "", "Menu file (json or yaml)")
	cmd.Flags().BoolVar(&dark, "dark", false, "Print the dark palette")
	cmd.MarkFlagsMutuallyExclusive("id", "in")

	return cmd
}
