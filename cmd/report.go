package cmd

import (
	"fmt"
	"os"

	intconfig "busmanager/internal/config"
	"busmanager/internal/services"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write the fleet overview PDF",
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer intconfig.CloseDB()

		font, _ := cmd.Flags().GetString("font")
		if font == "" {
			font = env.ReportFont
		}
		pdf, name, err := services.NewFleet(conn, env.DBDriver).WithReportFont(font).Reports.FleetPDF(cmd.Context())
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = name
		}
		if err := os.WriteFile(out, pdf, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(pdf))
		return nil
	},
}

func init() {
	reportCmd.Flags().StringP("out", "o", "", "output file (default FLEET_YYYYMMDD.pdf)")
	reportCmd.Flags().String("font", "", "TTF font with Cyrillic glyphs (overrides REPORT_FONT)")
	rootCmd.AddCommand(reportCmd)
}
