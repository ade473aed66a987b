// Package storesync implements the storesync command, which plans
// storefront physical-count updates from the POS floor.
package storesync

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/stockmap/internal/cmd/application"
	"github.com/agentstation/stockmap/internal/feeds"
	"github.com/agentstation/stockmap/pkg/constants"
	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/floor"
	"github.com/agentstation/stockmap/pkg/storesync"
)

// NewCommand creates the storesync command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "storesync",
		GroupID: "core",
		Short:   "Plan storefront inventory updates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(NewPlanCommand(app))
	return cmd
}

// NewPlanCommand creates the storesync plan subcommand.
func NewPlanCommand(app application.Application) *cobra.Command {
	var variations, pos, out string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print physical-count batches as JSON",
		Long: `Plan joins the storefront variation export to the POS floor on UPC
and prints one batch-change request body per batch of at most 100 physical
counts. Variations without a floor row are left out.`,
		Example: `  stockmap storesync plan --variations variations.csv --pos inv_data/POS.xlsx
  stockmap storesync plan --variations variations.csv --pos inv_data/POS.xlsx --out batches.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pos == "" {
				pos = app.Settings().POSFile
			}
			if variations == "" || pos == "" {
				return errors.NewValidationError("storesync", nil, "--variations and --pos are required")
			}

			rawVariations, err := feeds.ReadExtract(variations)
			if err != nil {
				return err
			}
			vs, err := storesync.VariationsFromTable(rawVariations)
			if err != nil {
				return err
			}
			rawFloor, err := feeds.ReadExtract(pos)
			if err != nil {
				return err
			}
			st, err := app.Store()
			if err != nil {
				return err
			}
			canon, err := st.Inventory(cmd.Context())
			if err != nil {
				return err
			}
			fl, err := floor.Reconcile(rawFloor, canon)
			if err != nil {
				return err
			}

			batches, stats, err := storesync.Plan(vs, fl.Rows, storesync.WithLocationID(app.Settings().LocationID))
			if err != nil {
				return err
			}
			app.Logger().Info().
				Int("matched", stats.Matched).
				Int("unmatched", stats.Unmatched).
				Int("batches", stats.Batches).
				Msg("Physical counts planned")

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, constants.FilePermissions)
				if err != nil {
					return errors.WrapIO("create", out, err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			if err := writeBatches(w, batches); err != nil {
				return err
			}
			if out != "" && !app.Settings().Quiet {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d batches to %s\n", len(batches), out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&variations, "variations", "", "storefront variation export (object_id, upc)")
	cmd.Flags().StringVar(&pos, "pos", "", "POS extract")
	cmd.Flags().StringVar(&out, "out", "", "write the batches to this file instead of stdout")

	return cmd
}

func writeBatches(w io.Writer, batches []storesync.Batch) error {
	if batches == nil {
		batches = []storesync.Batch{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(batches)
}
