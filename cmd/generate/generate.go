package generate

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/menumaker/menumaker/internal/app"
	"github.com/menumaker/menumaker/internal/generation"
	"github.com/menumaker/menumaker/internal/imageprovider"
)

// Command creates the command that generates a menu from a description.
func Command(ctx *app.Context) *cobra.Command {
	var (
		req     generation.MenuRequest
		images  generation.ImageRequest
		withImg string
		out     string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a menu from a restaurant description",
		Long: `Generate a menu with the configured language model and optionally fetch an image for every item.

Examples:
  menumaker generate --prompt "A cozy Italian trattoria with homemade pasta"
  menumaker generate --prompt "Street tacos" --images pexels --out tacos.xlsx
  menumaker generate --prompt "Tea house" --images openai --style custom --custom-style "ink wash painting"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			a, err := ctx.Open(cmd.Context(), app.WithNotifications(),
				app.WithGenerationOptions(app.PrintProgress(w)))
			if err != nil {
				return err
			}
			defer a.Close()

			if withImg != "" {
				images.Source = withImg
				req.Images = &images
			}

			result, err := a.Generation.GenerateMenu(cmd.Context(), req)
			if err != nil {
				return err
			}

			r := result.Restaurant
			fmt.Fprintf(w, "%s: %d items in %d sections\n", r.Name, r.ItemCount(), len(r.Sections))
			app.PrintImageBatch(w, result.Images)
			if result.HistoryID != "" {
				fmt.Fprintf(w, "Saved to history as %s\n", result.HistoryID)
			}

			if out == "" {
				return nil
			}
			return a.WriteExport(w, out, format, r)
		},
	}

	cmd.Flags().StringVarP(&req.Prompt, "prompt", "p", "", "Restaurant description")
	cmd.Flags().StringVar(&req.APIKey, "api-key", "", "OpenAI API key (defaults to the stored or configured key)")
	cmd.Flags().StringVar(&withImg, "images", "", "Fetch item images from this source ("+strings.Join(imageprovider.SourceNames(), ", ")+")")
	cmd.Flags().StringVar(&images.Style, "style", "", "Image style for openai ("+strings.Join(imageprovider.StyleNames(), ", ")+")")
	cmd.Flags().StringVar(&images.CustomStyle, "custom-style", "", "Style description when --style custom")
	cmd.Flags().StringVar(&images.Background, "background", "", "Image background description for openai")
	cmd.Flags().StringVar(&images.APIKey, "image-api-key", "", "API key for the image source")
	cmd.Flags().BoolVar(&images.NoInline, "no-inline", false, "Keep remote image URLs instead of embedding them")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the menu to this file (- for stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format (json, yaml, text, xlsx); defaults to the --out extension")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}
