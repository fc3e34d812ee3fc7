package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gymlog/internal/db"
)

func newMigrateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			conn, err := openDB(cfg, opts.logger)
			if err != nil {
				return err
			}
			defer conn.Close()
			v, err := db.CurrentVersion(conn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d\n", v)
			return nil
		},
	}
}
