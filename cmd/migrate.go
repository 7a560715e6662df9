package cmd

import (
	"fmt"

	intconfig "busmanager/internal/config"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := openStore(cmd.Context()); err != nil {
			return err
		}
		defer intconfig.CloseDB()
		fmt.Fprintf(cmd.OutOrStdout(), "schema is up to date (%s)\n", env.DBDriver)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
