// Package cli wires configuration, storage and services into the cobra
// commands behind cmd/server.
package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	port    string
	dbURL   string
	version string
	logger  *zap.Logger
}

// NewRootCmd builds the command tree. Running it without a subcommand
// starts the HTTP server.
func NewRootCmd(version string, logger *zap.Logger) *cobra.Command {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := &options{version: version, logger: logger}

	root := &cobra.Command{
		Use:           "gymlog",
		Short:         "gymlog serves the workout and diet tracker API",
		Long:          "gymlog is the backend for a workout plan and diet tracker: meal analysis, plan screenshots, daily logs and profiles.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	root.PersistentFlags().StringVar(&opts.dbURL, "db", "", "Database URL or SQLite path (overrides DATABASE_URL)")
	root.Flags().StringVar(&opts.port, "port", "", "HTTP port (overrides PORT)")

	root.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newAnalyzeMealCmd(opts),
		newParsePlanCmd(opts),
		newMCPCmd(opts),
		newVersionCmd(opts),
	)
	return root
}
