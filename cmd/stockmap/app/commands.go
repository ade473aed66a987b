package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/stockmap/cmd/stockmap/cmd/backorders"
	"github.com/agentstation/stockmap/cmd/stockmap/cmd/duplicates"
	"github.com/agentstation/stockmap/cmd/stockmap/cmd/ledger"
	"github.com/agentstation/stockmap/cmd/stockmap/cmd/orders"
	"github.com/agentstation/stockmap/cmd/stockmap/cmd/run"
	"github.com/agentstation/stockmap/cmd/stockmap/cmd/sales"
	"github.com/agentstation/stockmap/cmd/stockmap/cmd/schedule"
	"github.com/agentstation/stockmap/cmd/stockmap/cmd/storesync"
	"github.com/agentstation/stockmap/cmd/stockmap/cmd/suppliers"
	"github.com/agentstation/stockmap/cmd/stockmap/cmd/version"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(run.NewCommand(a))
	rootCmd.AddCommand(schedule.NewCommand(a))
	rootCmd.AddCommand(orders.NewCommand(a))
	rootCmd.AddCommand(storesync.NewCommand(a))
	rootCmd.AddCommand(sales.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(suppliers.NewCommand(a))
	rootCmd.AddCommand(ledger.NewCommand(a))
	rootCmd.AddCommand(backorders.NewCommand(a))
	rootCmd.AddCommand(duplicates.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(version.NewCommand(a))
}
