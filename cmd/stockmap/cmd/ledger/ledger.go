// Package ledger implements the ledger command, which reports when each
// supplier was last updated.
package ledger

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/stockmap/internal/cmd/application"
	"github.com/agentstation/stockmap/internal/cmd/output"
	"github.com/agentstation/stockmap/internal/feeds"
	"github.com/agentstation/stockmap/pkg/ledger"
)

// Now is the clock used for staleness; tests replace it.
var Now = time.Now

// Row is one printable ledger line.
type Row struct {
	Supplier   string `json:"supplier" yaml:"supplier"`
	Date       string `json:"date" yaml:"date"`
	LastUpdate string `json:"last_update" yaml:"last_update"`
	Stale      bool   `json:"stale" yaml:"stale"`
}

// NewCommand creates the ledger command.
func NewCommand(app application.Application) *cobra.Command {
	var staleAfter time.Duration

	cmd := &cobra.Command{
		Use:     "ledger",
		GroupID: "management",
		Short:   "Show the per-supplier update ledger",
		Long: `Ledger lists every supplier in the registry with the date it was last
updated. Suppliers not updated within --stale-after are marked stale; a
zero duration disables the check.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("stale-after") {
				staleAfter = app.Settings().StaleAfter
			}
			reg, err := app.Registry()
			if err != nil {
				return err
			}
			st, err := app.Store()
			if err != nil {
				return err
			}
			l, err := st.Ledger(cmd.Context())
			if err != nil {
				return err
			}

			stale := map[string]bool{}
			if staleAfter > 0 {
				for _, s := range l.Stale(Now(), staleAfter, reg.Codes()) {
					stale[string(s.Supplier)] = true
				}
			}

			var rows []Row
			for _, code := range reg.Codes() {
				r := Row{Supplier: string(code), Stale: stale[string(code)]}
				if e, ok := l.Get(code); ok {
					r.Date = e.Date
					if !e.UpdatedAt.IsZero() {
						r.LastUpdate = e.UpdatedAt.Format(time.RFC3339)
					}
				}
				rows = append(rows, r)
			}
			return output.Write(cmd.OutOrStdout(), app.OutputFormat(), rows)
		},
	}
	cmd.Flags().DurationVar(&staleAfter, "stale-after", 0, "age after which a supplier is stale")

	cmd.AddCommand(NewImportCommand(app))
	return cmd
}

// NewImportCommand creates the ledger import subcommand, which seeds the
// store from an Initial/Date sheet exported by an earlier system.
func NewImportCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import an Initial/Date ledger sheet into the store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := feeds.ReadExtract(args[0])
			if err != nil {
				return err
			}
			imported, err := ledger.FromTable(raw, Now())
			if err != nil {
				return err
			}
			st, err := app.Store()
			if err != nil {
				return err
			}
			existing, err := st.Ledger(cmd.Context())
			if err != nil {
				return err
			}
			for _, e := range imported.Entries() {
				if _, ok := existing.Get(e.Supplier); !ok {
					existing.Record(e.Supplier, e.UpdatedAt)
				}
			}
			if err := st.SaveLedger(cmd.Context(), existing); err != nil {
				return err
			}
			if !app.Settings().Quiet {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d ledger entries\n", imported.Len())
			}
			return nil
		},
	}
}
