// Package suppliers implements the suppliers command and its subcommands
// for inspecting the supplier registry.
package suppliers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/stockmap/internal/cmd/application"
	"github.com/agentstation/stockmap/internal/cmd/output"
	"github.com/agentstation/stockmap/internal/feeds"
	"github.com/agentstation/stockmap/pkg/inventory"
	"github.com/agentstation/stockmap/pkg/suppliers"
)

// NewCommand creates the suppliers command.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "suppliers",
		Aliases: []string{"supplier"},
		GroupID: "management",
		Short:   "Inspect the supplier registry",
		Example: `  stockmap suppliers list
  stockmap suppliers files --data-dir inv_data
  stockmap suppliers validate registry.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(NewListCommand(app))
	cmd.AddCommand(NewFilesCommand(app))
	cmd.AddCommand(NewValidateCommand(app))

	return cmd
}

// NewListCommand creates the suppliers list subcommand.
func NewListCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered suppliers in merge order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := app.Registry()
			if err != nil {
				return err
			}
			return output.Write(cmd.OutOrStdout(), app.OutputFormat(), listData(reg))
		},
	}
}

func listData(reg *suppliers.Registry) output.Data {
	list := reg.List()
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{
			string(s.Code),
			s.Name,
			string(s.CodeKind),
			string(s.Format.Kind),
			strings.Join(s.Files, " "),
			strconv.Itoa(s.MinThreshold),
		})
	}
	return output.Data{
		Headers: []string{"Code", "Name", "Codes", "Format", "Files", "Threshold"},
		Rows:    rows,
		Source:  list,
	}
}

// NewFilesCommand creates the suppliers files subcommand.
func NewFilesCommand(app application.Application) *cobra.Command {
	var dataDir string

	cmd := &cobra.Command{
		Use:   "files [code...]",
		Short: "Show which files the next run would read",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := app.Registry()
			if err != nil {
				return err
			}
			codes := make([]inventory.SupplierCode, len(args))
			for i, a := range args {
				codes[i] = inventory.SupplierCode(strings.ToUpper(a))
			}
			selected, err := reg.Select(codes...)
			if err != nil {
				return err
			}
			if dataDir == "" {
				dataDir = app.Settings().DataDir
			}

			loader := feeds.NewLoader(dataDir)
			var rows [][]string
			for _, s := range selected {
				files, err := loader.Resolve(s)
				if err != nil {
					rows = append(rows, []string{string(s.Code), "", "", err.Error()})
					continue
				}
				for _, f := range files {
					rows = append(rows, []string{string(s.Code), f.Path, f.ModTime.Format("2006-01-02 15:04"), ""})
				}
			}
			return output.Write(cmd.OutOrStdout(), app.OutputFormat(), output.Data{
				Headers: []string{"Supplier", "File", "Modified", "Problem"},
				Rows:    rows,
			})
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "directory holding supplier feeds")

	return cmd
}

// NewValidateCommand creates the suppliers validate subcommand.
func NewValidateCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a registry file, or the configured registry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				reg  *suppliers.Registry
				err  error
				name = "configured registry"
			)
			if len(args) == 1 {
				name = args[0]
				reg, err = suppliers.LoadFile(args[0])
			} else {
				reg, err = app.Registry()
			}
			if err != nil {
				return fmt.Errorf("%s is invalid: %w", name, err)
			}
			if !app.Settings().Quiet {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is valid (%d suppliers)\n", name, reg.Len())
			}
			return nil
		},
	}
}
