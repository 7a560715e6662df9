package cmd

import (
	"busmanager/internal/client"
	intconfig "busmanager/internal/config"
	"busmanager/internal/gateway"
	"busmanager/internal/services"
	"busmanager/internal/tui"

	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal editor",
	Long: `Open the terminal editor. Without --remote the database is opened
in-process; with it every call goes to a running "busmanager serve".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if remote, _ := cmd.Flags().GetString("remote"); remote != "" {
			env.GatewayURL = remote
		}

		theme, err := intconfig.LoadTheme(env.ThemeFile)
		if err != nil {
			return err
		}

		var transport client.Transport
		if env.GatewayURL != "" {
			transport = client.NewHTTP(env.GatewayURL, env.GatewayTimeout)
		} else {
			conn, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer intconfig.CloseDB()
			fleet := services.NewFleet(conn, env.DBDriver).WithReportFont(env.ReportFont)
			transport = gateway.New(fleet)
		}

		return tui.Run(cmd.Context(), theme, transport)
	},
}

func init() {
	tuiCmd.Flags().String("remote", "", "base URL of a running server (overrides GATEWAY_URL)")
	rootCmd.AddCommand(tuiCmd)
}
