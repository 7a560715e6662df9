package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	intconfig "busmanager/internal/config"
	"busmanager/internal/db"

	"github.com/spf13/cobra"
)

const defaultTUILog = "busmanager.log"

var (
	env         intconfig.Env
	flushLogger = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "busmanager",
	Short: "Bus fleet records: buses, drivers, routes and stops",
	Long: `busmanager keeps the records of a small municipal bus fleet.
It runs an HTTP server, a terminal UI over the same data and a few
maintenance commands. Configuration comes from the environment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if env, err = intconfig.LoadEnv(); err != nil {
			return err
		}
		// the terminal belongs to the UI
		if cmd.Name() == tuiCmd.Name() && env.LogFile == "" {
			env.LogFile = defaultTUILog
		}
		_, flush, err := intconfig.NewLogger(env)
		if err != nil {
			return err
		}
		flushLogger = flush
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		flushLogger()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openStore connects the shared pool and brings the schema up to date.
func openStore(ctx context.Context) (*sql.DB, error) {
	conn, err := intconfig.ConnectDB(env)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx, conn, env.DBDriver); err != nil {
		intconfig.CloseDB()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return conn, nil
}
