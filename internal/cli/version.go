package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gymlog/internal/db"
)

func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and schema version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gymlog %s (schema v%d)\n", opts.version, db.LatestVersion())
		},
	}
}
