package images

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/menumaker/menumaker/internal/app"
	"github.com/menumaker/menumaker/internal/generation"
	"github.com/menumaker/menumaker/internal/imageprovider"
)

// Command creates the command that fetches images for a saved menu.
func Command(ctx *app.Context) *cobra.Command {
	var (
		req    generation.ImageRequest
		id     string
		in     string
		out    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "images",
		Short: "Fetch an image for every item of a menu",
		Long: `Fetch images for a history entry (--id), a menu file (--in) or, by default, the newest history entry.
The illustrated menu is saved as a new history entry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			a, err := ctx.Open(cmd.Context(), app.WithNotifications(),
				app.WithGenerationOptions(app.PrintProgress(w)))
			if err != nil {
				return err
			}
			defer a.Close()

			if in != "" {
				r, err := app.ReadMenuFile(in)
				if err != nil {
					return err
				}
				if err := a.Generation.SetCurrent(r); err != nil {
					return err
				}
			} else {
				if id == "" {
					entries := a.History.List(cmd.Context())
					if len(entries) == 0 {
						return fmt.Errorf("history is empty, generate a menu first or pass --in")
					}
					id = entries[0].ID
				}
				if _, err := a.Generation.LoadFromHistory(cmd.Context(), id); err != nil {
					return err
				}
			}

			result, err := a.Generation.GenerateImages(cmd.Context(), req)
			if err != nil {
				return err
			}

			app.PrintImageBatch(w, &result.ImageBatch)
			if result.HistoryID != "" {
				fmt.Fprintf(w, "Saved to history as %s\n", result.HistoryID)
			}

			if out == "" {
				return nil
			}
			return a.WriteExport(w, out, format, result.Restaurant)
		},
	}

	cmd.Flags().StringVarP(&req.Source, "source", "s", "", "Image source ("+strings.Join(imageprovider.SourceNames(), ", ")+"); defaults to images.default_source")
	cmd.Flags().StringVar(&req.Style, "style", "", "Image style for openai ("+strings.Join(imageprovider.StyleNames(), ", ")+")")
	cmd.Flags().StringVar(&req.CustomStyle, "custom-style", "", "Style description when --style custom")
	cmd.Flags().StringVar(&req.Background, "background", "", "Image background description for openai")
	cmd.Flags().StringVar(&req.APIKey, "api-key", "", "API key for the image source")
	cmd.Flags().BoolVar(&req.NoInline, "no-inline", false, "Keep remote image URLs instead of embedding them")
	cmd.Flags().StringVar(&id, "id", "", "History entry id")
	cmd.Flags().StringVar(&in, "in", "", "Menu file (json or yaml)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the illustrated menu to this file (- for stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format (json, yaml, text, xlsx); defaults to the --out extension")
	cmd.MarkFlagsMutuallyExclusive("id", "in")

	return cmd
}
