package cmd

import (
	"github.com/spf13/cobra"

	"github.com/menumaker/menumaker/cmd/darkmode"
	"github.com/menumaker/menumaker/cmd/export"
	"github.com/menumaker/menumaker/cmd/generate"
	"github.com/menumaker/menumaker/cmd/history"
	"github.com/menumaker/menumaker/cmd/images"
	"github.com/menumaker/menumaker/cmd/keys"
	"github.com/menumaker/menumaker/cmd/prompts"
	"github.com/menumaker/menumaker/cmd/serve"
	"github.com/menumaker/menumaker/cmd/style"
	"github.com/menumaker/menumaker/internal/app"
)

// RootCommand creates and returns the root command. The caller closes ctx
// after Execute returns, whether or not the command failed.
func RootCommand(ctx *app.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "menumaker",
		Short:         "AI restaurant menu generator",
		Long:          "Generate restaurant menus from a short description, illustrate every dish and print or export the result.",
		Version:       ctx.Build.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.ConfigFile, "config", "c", "", "Path to the config file")
	rootCmd.PersistentFlags().BoolVarP(&ctx.Debug, "debug", "d", false, "Enable debug output")

	promptsCmd := prompts.Command()

	rootCmd.AddCommand(
		serve.Command(ctx),
		generate.Command(ctx),
		images.Command(ctx),
		history.Command(ctx),
		keys.Command(ctx),
		darkmode.Command(ctx),
		style.Command(ctx),
		export.Command(ctx),
		promptsCmd,
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// prompts and help need no settings or storage
		if cmd.Name() == promptsCmd.Name() || cmd.Name() == "help" {
			return nil
		}
		return ctx.Load()
	}

	return rootCmd
}
