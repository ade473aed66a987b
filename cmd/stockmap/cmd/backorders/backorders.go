// Package backorders implements the backorders command. Codes on the
// backorder list always reconcile to zero on hand.
package backorders

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/stockmap/internal/cmd/application"
	"github.com/agentstation/stockmap/internal/cmd/output"
)

// NewCommand creates the backorders command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backorders",
		GroupID: "management",
		Short:   "Manage product codes forced to zero inventory",
		Example: `  stockmap backorders list
  stockmap backorders add 812345678901 812345678902
  stockmap backorders remove 812345678901`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(NewListCommand(app))
	cmd.AddCommand(NewAddCommand(app))
	cmd.AddCommand(NewRemoveCommand(app))

	return cmd
}

// NewListCommand creates the backorders list subcommand.
func NewListCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backordered product codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := app.Store()
			if err != nil {
				return err
			}
			codes, err := st.Backorders(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, len(codes))
			for i, c := range codes {
				rows[i] = []string{c}
			}
			return output.Write(cmd.OutOrStdout(), app.OutputFormat(), output.Data{
				Headers: []string{"Product Code"},
				Rows:    rows,
				Source:  codes,
			})
		},
	}
}

// NewAddCommand creates the backorders add subcommand.
func NewAddCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "add <code>...",
		Short: "Add product codes to the backorder list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.Store()
			if err != nil {
				return err
			}
			n, err := st.AddBackorders(cmd.Context(), args...)
			if err != nil {
				return err
			}
			report(cmd, app, "Added %d backorders (%d already listed)\n", n, len(args)-n)
			return nil
		},
	}
}

// NewRemoveCommand creates the backorders remove subcommand.
func NewRemoveCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <code>...",
		Aliases: []string{"rm"},
		Short:   "Remove product codes from the backorder list",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.Store()
			if err != nil {
				return err
			}
			n, err := st.RemoveBackorders(cmd.Context(), args...)
			if err != nil {
				return err
			}
			report(cmd, app, "Removed %d backorders (%d not listed)\n", n, len(args)-n)
			return nil
		},
	}
}

func report(cmd *cobra.Command, app application.Application, format string, args ...any) {
	if app.Settings().Quiet {
		return
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
