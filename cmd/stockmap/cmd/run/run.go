// Package run implements the run command: one full reconciliation against
// the files in the data directory and the state in the store.
package run

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/stockmap/internal/cmd/alerts"
	"github.com/agentstation/stockmap/internal/cmd/application"
	"github.com/agentstation/stockmap/internal/cmd/output"
	"github.com/agentstation/stockmap/internal/export"
	"github.com/agentstation/stockmap/internal/feeds"
	"github.com/agentstation/stockmap/internal/metrics"
	"github.com/agentstation/stockmap/internal/store"
	"github.com/agentstation/stockmap/pkg/inventory"
	"github.com/agentstation/stockmap/pkg/logging"
	"github.com/agentstation/stockmap/pkg/reconciler"
	"github.com/agentstation/stockmap/pkg/storesync"
)

// maxAlerts caps the findings printed after a run.
const maxAlerts = 25

// Options select what one run reads and writes. Empty fields fall back to
// the application settings.
type Options struct {
	Suppliers    []string
	DataDir      string
	POSFile      string
	ListingsFile string
	OrdersFile   string
	Variations   string
	OutputDir    string
	MetricsFile  string
	DryRun       bool
}

// Report is the printable outcome of a run.
type Report struct {
	RunID     string                       `json:"run_id" yaml:"run_id"`
	Summary   string                       `json:"summary" yaml:"summary"`
	Suppliers []reconciler.SupplierOutcome `json:"suppliers" yaml:"suppliers"`
	Stats     reconciler.Stats             `json:"stats" yaml:"stats"`
	Files     []string                     `json:"files,omitempty" yaml:"files,omitempty"`
	Errors    []string                     `json:"errors,omitempty" yaml:"errors,omitempty"`
	Warnings  []string                     `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// NewCommand creates the run command.
func NewCommand(app application.Application) *cobra.Command {
	var opts Options

	cmd := &cobra.Command{
		Use:     "run",
		GroupID: "core",
		Short:   "Reconcile supplier feeds and store extracts",
		Long: `Run loads every selected supplier feed from the data directory,
merges it into the canonical inventory and derives the floor, listing and
order views. Results are saved to the store and exported unless --dry-run
is given.`,
		Example: `  stockmap run
  stockmap run --supplier VF --supplier OUTRE --dry-run
  stockmap run --pos inv_data/POS.xlsx --listings inv_data/listings.txt --orders inv_data/orders.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, files, err := Execute(cmd.Context(), app, opts)
			if res == nil {
				return err
			}

			printer := alerts.NewPrinter(cmd.ErrOrStderr(), app.Settings().NoColor, app.Settings().Quiet)
			printer.Errors(res.Errors, maxAlerts)
			printer.Errors(res.Warnings, maxAlerts)

			if werr := output.Write(cmd.OutOrStdout(), app.OutputFormat(), ToData(res, files)); werr != nil {
				return werr
			}
			if err != nil {
				return err
			}
			if !res.IsSuccess() {
				return fmt.Errorf("reconciliation finished with %d errors", len(res.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&opts.Suppliers, "supplier", nil, "supplier codes to update (default all)")
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "directory holding supplier feeds")
	cmd.Flags().StringVar(&opts.POSFile, "pos", "", "POS extract")
	cmd.Flags().StringVar(&opts.ListingsFile, "listings", "", "marketplace listing report (tab-separated)")
	cmd.Flags().StringVar(&opts.OrdersFile, "orders", "", "marketplace unshipped order report (tab-separated)")
	cmd.Flags().StringVar(&opts.Variations, "variations", "", "storefront variation export for physical-count planning")
	cmd.Flags().StringVar(&opts.OutputDir, "out", "", "directory for exported files")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus textfile metrics here")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "reconcile without saving or exporting")

	return cmd
}

// resolve fills empty options from settings.
func resolve(s application.Settings, opts Options) Options {
	if opts.DataDir == "" {
		opts.DataDir = s.DataDir
	}
	if opts.POSFile == "" {
		opts.POSFile = s.POSFile
	}
	if opts.ListingsFile == "" {
		opts.ListingsFile = s.ListingsFile
	}
	if opts.OrdersFile == "" {
		opts.OrdersFile = s.OrdersFile
	}
	if opts.OutputDir == "" {
		opts.OutputDir = s.OutputDir
	}
	if opts.MetricsFile == "" {
		opts.MetricsFile = s.MetricsFile
	}
	return opts
}

// Execute performs one run and, unless opts.DryRun, persists and exports
// it. A canceled run returns its partial result without saving it.
func Execute(ctx context.Context, app application.Application, opts Options) (*reconciler.Result, []string, error) {
	settings := app.Settings()
	opts = resolve(settings, opts)
	ctx = logging.WithLogger(ctx, app.Logger())
	logger := logging.FromContext(ctx)

	// Step 1: Registry and store
	registry, err := app.Registry()
	if err != nil {
		return nil, nil, err
	}
	st, err := app.Store()
	if err != nil {
		return nil, nil, err
	}

	// Step 2: State from the previous run
	in, err := loadState(ctx, st)
	if err != nil {
		return nil, nil, err
	}
	in.Source = feeds.NewLoader(opts.DataDir)

	// Step 3: Store extracts
	if in.Floor, err = feeds.ReadOptional(opts.POSFile); err != nil {
		return nil, nil, err
	}
	if in.Listings, err = feeds.ReadOptional(opts.ListingsFile); err != nil {
		return nil, nil, err
	}
	if in.Orders, err = feeds.ReadOptional(opts.OrdersFile); err != nil {
		return nil, nil, err
	}
	if opts.Variations != "" {
		raw, err := feeds.ReadExtract(opts.Variations)
		if err != nil {
			return nil, nil, err
		}
		if in.Variations, err = storesync.VariationsFromTable(raw); err != nil {
			return nil, nil, err
		}
	}

	// Step 4: Reconcile
	codes := make([]inventory.SupplierCode, len(opts.Suppliers))
	for i, c := range opts.Suppliers {
		codes[i] = inventory.SupplierCode(c)
	}
	r, err := reconciler.New(
		reconciler.WithRegistry(registry),
		reconciler.WithSuppliers(codes...),
		reconciler.WithConcurrency(max(settings.Concurrency, 1)),
		reconciler.WithStaleAfter(settings.StaleAfter),
		reconciler.WithLocationID(settings.LocationID),
	)
	if err != nil {
		return nil, nil, err
	}
	res, err := r.Run(ctx, in)
	if err != nil {
		return res, nil, err
	}

	if opts.MetricsFile != "" {
		m := metrics.New()
		m.Observe(res)
		if err := m.WriteTextfile(opts.MetricsFile); err != nil {
			logger.Warn().Err(err).Str("file", opts.MetricsFile).Msg("Failed to write metrics")
		}
	}

	if opts.DryRun {
		logger.Info().Msg("Dry run; nothing saved")
		return res, nil, nil
	}

	// Step 5: Persist and export
	if err := st.SaveInventory(ctx, res.Inventory); err != nil {
		return res, nil, err
	}
	if err := st.SaveLedger(ctx, res.Ledger); err != nil {
		return res, nil, err
	}
	files, err := export.Run(ctx, opts.OutputDir, res)
	if err != nil {
		return res, files, err
	}
	logger.Info().Int("files", len(files)).Str("dir", opts.OutputDir).Msg("Exported results")
	return res, files, nil
}

func loadState(ctx context.Context, st *store.Store) (reconciler.Inputs, error) {
	var in reconciler.Inputs
	var err error
	if in.Base, err = st.Inventory(ctx); err != nil {
		return in, err
	}
	if in.Ledger, err = st.Ledger(ctx); err != nil {
		return in, err
	}
	if in.Backorders, err = st.Backorders(ctx); err != nil {
		return in, err
	}
	if in.Duplicates, err = st.Duplicates(ctx); err != nil {
		return in, err
	}
	if in.History, err = st.OrderHistory(ctx); err != nil {
		return in, err
	}
	return in, nil
}

// ToData renders a result as a supplier outcome table; structured formats
// get the full Report.
func ToData(res *reconciler.Result, files []string) output.Data {
	rows := make([][]string, 0, len(res.Suppliers))
	for _, o := range res.Suppliers {
		rows = append(rows, []string{
			string(o.Code),
			o.Name,
			string(o.Status),
			strconv.Itoa(o.Rows),
			strconv.Itoa(o.Stats.Dropped()),
			o.Reason,
		})
	}
	return output.Data{
		Headers: []string{"Supplier", "Name", "Status", "Rows", "Dropped", "Reason"},
		Rows:    rows,
		ColumnAlignment: []output.Align{
			output.AlignLeft, output.AlignLeft, output.AlignLeft,
			output.AlignRight, output.AlignRight, output.AlignLeft,
		},
		Source: NewReport(res, files),
	}
}

// NewReport builds the printable report of res.
func NewReport(res *reconciler.Result, files []string) Report {
	return Report{
		RunID:     res.RunID,
		Summary:   res.Summary(),
		Suppliers: res.Suppliers,
		Stats:     res.Stats,
		Files:     files,
		Errors:    messages(res.Errors),
		Warnings:  messages(res.Warnings),
	}
}

func messages(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
