// Package version implements the version command.
package version

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/stockmap/internal/cmd/application"
	"github.com/agentstation/stockmap/internal/cmd/output"
)

// Info is the build information of the binary.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	Date      string `json:"date" yaml:"date"`
	BuiltBy   string `json:"built_by" yaml:"built_by"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// NewCommand creates the version command.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := Info{
				Version:   app.Version(),
				Commit:    app.Commit(),
				Date:      app.Date(),
				BuiltBy:   app.BuiltBy(),
				GoVersion: runtime.Version(),
				Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
			}
			if f := app.OutputFormat(); f == "json" || f == "yaml" {
				return output.Write(cmd.OutOrStdout(), f, info)
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "stockmap version %s\n", info.Version)
			_, _ = fmt.Fprintf(w, "commit: %s\n", info.Commit)
			_, _ = fmt.Fprintf(w, "built: %s\n", info.Date)
			_, _ = fmt.Fprintf(w, "built by: %s\n", info.BuiltBy)
			_, _ = fmt.Fprintf(w, "go version: %s\n", info.GoVersion)
			_, _ = fmt.Fprintf(w, "platform: %s\n", info.Platform)
			return nil
		},
	}
}
