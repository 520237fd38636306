package history

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/menumaker/menumaker/internal/app"
	"github.com/menumaker/menumaker/internal/style"
)

// Command creates the history command and its subcommands.
func Command(ctx *app.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, show and delete saved menus",
	}

	cmd.AddCommand(listCommand(ctx), showCommand(ctx), deleteCommand(ctx), clearCommand(ctx))
	return cmd
}

func listCommand(ctx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved menus, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			entries := a.History.List(cmd.Context())
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved menus")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSAVED\tRESTAURANT\tSTYLE\tITEMS\tIMAGES")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\n",
					e.ID,
					e.Time().Format(time.DateTime),
					e.Restaurant.Name,
					style.Detect(e.Restaurant),
					e.Restaurant.ItemCount(),
					e.Restaurant.ImageCount(),
				)
			}
			return tw.Flush()
		},
	}
}

func showCommand(ctx *app.Context) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print a saved menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			entry, err := a.History.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if entry.Prompt != "" && format == "text" {
				fmt.Fprintf(cmd.OutOrStdout(), "Prompt: %s\n\n", entry.Prompt)
			}
			return a.WriteExport(cmd.OutOrStdout(), "-", format, entry.Restaurant)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format (json, yaml, text)")
	return cmd
}

func deleteCommand(ctx *app.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a saved menu",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.History.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func clearCommand(ctx *app.Context) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all saved menus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear history without --yes")
			}
			a, err := ctx.Open(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.History.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "History cleared")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm deleting every saved menu")
	return cmd
}
