package keys

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/menumaker/menumaker/internal/app"
	"github.com/menumaker/menumaker/internal/credentials"
)

// Command creates the keys command and its subcommands.
func Command(ctx *app.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage stored API keys (openai, flickr, pexels)",
	}

	cmd.AddCommand(setCommand(ctx), getCommand(ctx), clearCommand(ctx))
	return cmd
}

func setCommand(ctx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "set PROVIDER VALUE",
		Short: "Store the API key for a provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := credentials.ParseProvider(args[0])
			if err != nil {
				return err
			}
			value := strings.TrimSpace(args[1])
			if value == "" {
				return fmt.Errorf("key must not be empty")
			}

			a, err := ctx.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Credentials.Save(cmd.Context(), p, value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s key\n", p)
			return nil
		},
	}
}

func getCommand(ctx *app.Context) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "get PROVIDER",
		Short: "Show the key used for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := credentials.ParseProvider(args[0])
			if err != nil {
				return err
			}

			a, err := ctx.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			key, err := a.Credentials.Resolve(cmd.Context(), p, "")
			if err != nil {
				return err
			}
			if key == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "No %s key stored or configured\n", p)
				return nil
			}
			if !reveal {
				key = mask(key)
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the full key")
	return cmd
}

func clearCommand(ctx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "clear PROVIDER",
		Short: "Remove the stored key for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := credentials.ParseProvider(args[0])
			if err != nil {
				return err
			}

			a, err := ctx.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Credentials.Clear(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s key\n", p)
			return nil
		},
	}
}

// mask keeps the last four characters of long keys.
func mask(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
