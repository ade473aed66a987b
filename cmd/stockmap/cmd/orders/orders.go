// Package orders implements the orders command for building pick forms
// from the unshipped order report.
package orders

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/stockmap/internal/cmd/application"
	"github.com/agentstation/stockmap/internal/cmd/output"
	"github.com/agentstation/stockmap/internal/feeds"
	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/floor"
	"github.com/agentstation/stockmap/pkg/marketplace"
)

// Now is the clock used to date order history; tests replace it.
var Now = time.Now

// PickOptions select the inputs of a pick form.
type PickOptions struct {
	OrdersFile   string
	ListingsFile string
	POSFile      string
	SKUs         []string
	NoRecord     bool
}

// NewCommand creates the orders command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "orders",
		GroupID: "core",
		Short:   "Work with marketplace orders",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(NewPickCommand(app))
	return cmd
}

// NewPickCommand creates the orders pick subcommand.
func NewPickCommand(app application.Application) *cobra.Command {
	var opts PickOptions

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Build a pick form for the given SKUs",
		Long: `Pick selects the unshipped order lines for each --sku, removes exact
duplicates and prints them sorted by SKU. The picked SKUs are recorded in
the order history, which feeds the "Last Order" column of later runs,
unless --no-record is given.`,
		Example: `  stockmap orders pick --orders inv_data/orders.txt --sku SKU-1 --sku SKU-2`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := app.Settings()
			if opts.OrdersFile == "" {
				opts.OrdersFile = s.OrdersFile
			}
			if opts.ListingsFile == "" {
				opts.ListingsFile = s.ListingsFile
			}
			if opts.POSFile == "" {
				opts.POSFile = s.POSFile
			}
			lines, err := Pick(cmd.Context(), app, opts)
			if err != nil {
				return err
			}

			rows := make([][]string, len(lines))
			for i, l := range lines {
				rows[i] = []string{l.SKU, strconv.Itoa(l.ORD), l.Description}
			}
			return output.Write(cmd.OutOrStdout(), app.OutputFormat(), output.Data{
				Headers:         []string{"SKU", "ORD", "Description"},
				Rows:            rows,
				ColumnAlignment: []output.Align{output.AlignLeft, output.AlignRight, output.AlignLeft},
				Source:          lines,
			})
		},
	}

	cmd.Flags().StringVar(&opts.OrdersFile, "orders", "", "unshipped order report (tab-separated)")
	cmd.Flags().StringVar(&opts.ListingsFile, "listings", "", "listing report, for company and store counts")
	cmd.Flags().StringVar(&opts.POSFile, "pos", "", "POS extract, for bin locations")
	cmd.Flags().StringSliceVar(&opts.SKUs, "sku", nil, "SKUs to pick")
	cmd.Flags().BoolVar(&opts.NoRecord, "no-record", false, "do not record the picked SKUs in the order history")

	return cmd
}

// Pick enriches the order report against the stored inventory and returns
// the pick lines for opts.SKUs.
func Pick(ctx context.Context, app application.Application, opts PickOptions) ([]marketplace.PickLine, error) {
	if opts.OrdersFile == "" {
		return nil, errors.NewValidationError("orders", nil, "an order report is required (--orders)")
	}
	if len(opts.SKUs) == 0 {
		return nil, errors.NewValidationError("sku", nil, "at least one --sku is required")
	}

	st, err := app.Store()
	if err != nil {
		return nil, err
	}
	canon, err := st.Inventory(ctx)
	if err != nil {
		return nil, err
	}
	history, err := st.OrderHistory(ctx)
	if err != nil {
		return nil, err
	}

	// Step 1: Optional joins
	var fl *floor.Result
	if pos, err := feeds.ReadOptional(opts.POSFile); err != nil {
		return nil, err
	} else if pos != nil {
		if fl, err = floor.Reconcile(pos, canon); err != nil {
			return nil, err
		}
	}
	var listings *marketplace.ListingResult
	if raw, err := feeds.ReadOptional(opts.ListingsFile); err != nil {
		return nil, err
	} else if raw != nil {
		if listings, err = marketplace.EnrichListings(raw, canon, fl); err != nil {
			return nil, err
		}
	}

	// Step 2: Orders
	raw, err := feeds.ReadExtract(opts.OrdersFile)
	if err != nil {
		return nil, err
	}
	orders, err := marketplace.EnrichOrders(raw, listings, fl, canon, history)
	if err != nil {
		return nil, err
	}
	lines := marketplace.PickForm(orders.Lines, opts.SKUs)

	// Step 3: History
	if !opts.NoRecord && len(lines) > 0 {
		if err := st.AppendOrderHistory(ctx, marketplace.HistoryEntries(lines, Now())...); err != nil {
			return nil, err
		}
	}
	return lines, nil
}
