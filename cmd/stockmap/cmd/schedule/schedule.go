// Package schedule implements the schedule command, which repeats the run
// command on a cron schedule until interrupted.
package schedule

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/stockmap/cmd/stockmap/cmd/run"
	"github.com/agentstation/stockmap/internal/cmd/application"
	"github.com/agentstation/stockmap/internal/schedule"
	"github.com/agentstation/stockmap/pkg/constants"
	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/logging"
)

// NewCommand creates the schedule command.
func NewCommand(app application.Application) *cobra.Command {
	var (
		spec string
		opts run.Options
	)

	cmd := &cobra.Command{
		Use:     "schedule",
		GroupID: "core",
		Short:   "Run reconciliations on a cron schedule",
		Long: `Schedule runs a reconciliation every time the cron expression fires.
A run that is still going when the next one is due is skipped. The
expression defaults to the schedule setting.`,
		Example: `  stockmap schedule --cron "0 6 * * *"
  stockmap schedule --cron "@every 30m" --supplier OUTRE`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if spec == "" {
				spec = app.Settings().Schedule
			}
			if spec == "" {
				return errors.NewValidationError("cron", spec, "a cron expression is required (--cron or schedule setting)")
			}

			s := schedule.New(app.Logger())
			if err := s.Add(spec, "reconcile", Job(app, opts)); err != nil {
				return err
			}
			app.Logger().Debug().Str("cron", spec).Msg("Scheduling reconciliation")
			return s.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "", "cron expression (standard five fields or @every)")
	cmd.Flags().StringSliceVar(&opts.Suppliers, "supplier", nil, "supplier codes to update (default all)")
	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "directory holding supplier feeds")
	cmd.Flags().StringVar(&opts.OutputDir, "out", "", "directory for exported files")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus textfile metrics here")

	return cmd
}

// Job adapts one run to a scheduled job bounded by constants.CommandTimeout.
// Supplier-level failures are logged; only faults that stop a run are
// returned.
func Job(app application.Application, opts run.Options) schedule.Job {
	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, constants.CommandTimeout)
		defer cancel()

		res, _, err := run.Execute(ctx, app, opts)
		if err != nil {
			return err
		}
		logger := logging.FromContext(logging.WithLogger(ctx, app.Logger()))
		for _, e := range res.Errors {
			logger.Error().Err(e).Str("run_id", res.RunID).Msg("Run error")
		}
		logger.Info().Str("run_id", res.RunID).Msg(res.Summary())
		return nil
	}
}
