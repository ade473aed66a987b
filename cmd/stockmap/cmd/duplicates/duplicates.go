// Package duplicates implements the duplicates command. A listed
// (product code, description, extended description) triple is removed from
// the canonical inventory on every run.
package duplicates

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/stockmap/internal/cmd/application"
	"github.com/agentstation/stockmap/internal/cmd/output"
	"github.com/agentstation/stockmap/pkg/inventory"
)

// NewCommand creates the duplicates command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "duplicates",
		GroupID: "management",
		Short:   "Manage rows suppressed from the canonical inventory",
		Example: `  stockmap duplicates list
  stockmap duplicates add 812345678901 "Braid 1B" "Jumbo braid, color 1B"
  stockmap duplicates remove 812345678901 "Braid 1B" "Jumbo braid, color 1B"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(NewListCommand(app))
	cmd.AddCommand(NewAddCommand(app))
	cmd.AddCommand(NewRemoveCommand(app))

	return cmd
}

// entry builds a triple from positional args; missing descriptions are
// empty.
func entry(args []string) inventory.DuplicateEntry {
	e := inventory.DuplicateEntry{ProductCode: args[0]}
	if len(args) > 1 {
		e.Description = args[1]
	}
	if len(args) > 2 {
		e.ExtendedDescription = args[2]
	}
	return e
}

// NewListCommand creates the duplicates list subcommand.
func NewListCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List suppressed rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := app.Store()
			if err != nil {
				return err
			}
			entries, err := st.Duplicates(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{e.ProductCode, e.Description, e.ExtendedDescription}
			}
			return output.Write(cmd.OutOrStdout(), app.OutputFormat(), output.Data{
				Headers: []string{"Product Code", "Description", "Extended Description"},
				Rows:    rows,
				Source:  entries,
			})
		},
	}
}

// NewAddCommand creates the duplicates add subcommand.
func NewAddCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "add <code> [description] [extended-description]",
		Short: "Suppress a row from future runs",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.Store()
			if err != nil {
				return err
			}
			n, err := st.AddDuplicates(cmd.Context(), entry(args))
			if err != nil {
				return err
			}
			if !app.Settings().Quiet {
				if n == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Already listed")
				} else {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Added")
				}
			}
			return nil
		},
	}
}

// NewRemoveCommand creates the duplicates remove subcommand.
func NewRemoveCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <code> [description] [extended-description]",
		Aliases: []string{"rm"},
		Short:   "Stop suppressing a row",
		Args:    cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.Store()
			if err != nil {
				return err
			}
			e := entry(args)
			ok, err := st.RemoveDuplicate(cmd.Context(), e)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no duplicate entry for %q", e.ProductCode)
			}
			if !app.Settings().Quiet {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Removed")
			}
			return nil
		},
	}
}
