package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/blobrelay/internal/record"
)

// versionInfo is the structured output of version.
type versionInfo struct {
	Version       string `json:"version" yaml:"version"`
	Database      string `json:"database" yaml:"database"`
	Store         string `json:"store" yaml:"store"`
	SchemaVersion int    `json:"schema_version" yaml:"schema_version"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version information",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			if f.structured() {
				return f.Success(versionInfo{
					Version:       record.Version,
					Database:      record.DatabaseName,
					Store:         record.StoreName,
					SchemaVersion: record.SchemaVersion,
				})
			}
			return f.Success(fmt.Sprintf("blobrelay %s (%s/%s schema v%d)",
				record.Version, record.DatabaseName, record.StoreName, record.SchemaVersion))
		},
	}
}
