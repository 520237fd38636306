package darkmode

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/menumaker/menumaker/internal/app"
)

// Command creates the command that shows or sets the dark mode preference.
func Command(ctx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:       "darkmode [on|off]",
		Short:     "Show or set the dark mode preference for printable views",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), onOff(a.Prefs.DarkMode(cmd.Context())))
				return nil
			}

			var enabled bool
			switch strings.ToLower(args[0]) {
			case "on", "true", "1":
				enabled = true
			case "off", "false", "0":
				enabled = false
			default:
				return fmt.Errorf("invalid value %q, use on or off", args[0])
			}
			if err := a.Prefs.SetDarkMode(cmd.Context(), enabled); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dark mode %s\n", onOff(enabled))
			return nil
		},
	}
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
