package prompts

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/menumaker/menumaker/internal/menu"
)

// Command creates the command that prints example restaurant descriptions.
func Command() *cobra.Command {
	var (
		random bool
		count  int
	)

	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Print example restaurant descriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := menu.ExamplePrompts()
			if random {
				if count < 1 {
					return fmt.Errorf("count must be positive")
				}
				list = menu.RandomPrompts(count)
			}
			for _, p := range list {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&random, "random", "r", false, "Print a random selection")
	cmd.Flags().IntVarP(&count, "count", "n", 3, "Number of prompts with --random")

	return cmd
}
