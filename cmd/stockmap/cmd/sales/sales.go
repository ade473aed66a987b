// Package sales implements the sales command for the store sales report.
package sales

import (
	"context"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/stockmap/internal/cmd/application"
	"github.com/agentstation/stockmap/internal/cmd/output"
	"github.com/agentstation/stockmap/internal/export"
	"github.com/agentstation/stockmap/internal/feeds"
	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/floor"
	"github.com/agentstation/stockmap/pkg/sales"
)

// Now is the clock used to date the report; tests replace it.
var Now = time.Now

const dateLayout = "2006-01-02"

// Options select the inputs of a sales report.
type Options struct {
	HistoryFile string
	POSFile     string
	From        string
	To          string
	Departments []string
	OutputDir   string
	NoWrite     bool
}

// NewCommand creates the sales command.
func NewCommand(app application.Application) *cobra.Command {
	var opts Options

	cmd := &cobra.Command{
		Use:     "sales",
		GroupID: "core",
		Short:   "Build the store sales report",
		Long: `Sales joins the POS sales history to the reconciled floor view. Each
sale carries its item group, the group's sellable total, the store on-hand
count and the company inventory behind it. The report and the floor view
are written to a dated "STORE Sales" workbook, and units sold per item
group are printed.`,
		Example: `  stockmap sales --history inv_data/sales.csv --pos inv_data/POS.xlsx --from 2026-01-01
  stockmap sales --history sales.csv --pos POS.xlsx --department Wigs --department Braids -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := app.Settings()
			if opts.POSFile == "" {
				opts.POSFile = s.POSFile
			}
			if opts.OutputDir == "" {
				opts.OutputDir = s.OutputDir
			}

			res, path, err := Build(cmd.Context(), app, opts)
			if err != nil {
				return err
			}
			logger := app.Logger()
			for _, w := range res.Warnings {
				logger.Warn().Err(w).Msg("Sales report")
			}
			if path != "" {
				logger.Info().Str("file", path).Int("lines", res.Stats.Lines).Msg("Sales report written")
			}

			totals := res.ByItem()
			rows := make([][]string, len(totals))
			for i, t := range totals {
				rows[i] = []string{t.Item, strconv.Itoa(t.UnitsSold), strconv.Itoa(t.ItemTotal)}
			}
			return output.Write(cmd.OutOrStdout(), app.OutputFormat(), output.Data{
				Headers:         []string{"Item", "Sold", "On Floor"},
				Rows:            rows,
				ColumnAlignment: []output.Align{output.AlignLeft, output.AlignRight, output.AlignRight},
				Source:          totals,
			})
		},
	}

	cmd.Flags().StringVar(&opts.HistoryFile, "history", "", "POS sales history extract")
	cmd.Flags().StringVar(&opts.POSFile, "pos", "", "POS extract for the floor view")
	cmd.Flags().StringVar(&opts.From, "from", "", "first sale date to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.To, "to", "", "last sale date to include (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&opts.Departments, "department", nil, "departments to include (default all)")
	cmd.Flags().StringVar(&opts.OutputDir, "out", "", "directory for the sales workbook")
	cmd.Flags().BoolVar(&opts.NoWrite, "no-write", false, "print the totals without writing the workbook")

	return cmd
}

// Build reconciles the floor against the stored inventory, joins the sales
// history to it and writes the workbook unless opts.NoWrite is set. The
// returned path is empty when nothing was written.
func Build(ctx context.Context, app application.Application, opts Options) (*sales.Result, string, error) {
	if opts.HistoryFile == "" {
		return nil, "", errors.NewValidationError("history", nil, "a sales history extract is required (--history)")
	}
	if opts.POSFile == "" {
		return nil, "", errors.NewValidationError("pos", nil, "a POS extract is required (--pos)")
	}
	from, err := parseDay("from", opts.From)
	if err != nil {
		return nil, "", err
	}
	to, err := parseDay("to", opts.To)
	if err != nil {
		return nil, "", err
	}

	// Step 1: Floor view
	st, err := app.Store()
	if err != nil {
		return nil, "", err
	}
	canon, err := st.Inventory(ctx)
	if err != nil {
		return nil, "", err
	}
	pos, err := feeds.ReadExtract(opts.POSFile)
	if err != nil {
		return nil, "", err
	}
	fl, err := floor.Reconcile(pos, canon)
	if err != nil {
		return nil, "", err
	}

	// Step 2: Sales history
	history, err := feeds.ReadExtract(opts.HistoryFile)
	if err != nil {
		return nil, "", err
	}
	res, err := sales.Report(history, fl, sales.WithDateRange(from, to), sales.WithDepartments(opts.Departments...))
	if err != nil {
		return nil, "", err
	}

	// Step 3: Workbook
	if opts.NoWrite {
		return res, "", nil
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	path, err := export.WriteSales(opts.OutputDir, res, fl, Now())
	if err != nil {
		return res, "", err
	}
	return res, path, nil
}

func parseDay(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, errors.NewValidationError(field, s, "dates use the YYYY-MM-DD form")
	}
	return t, nil
}
