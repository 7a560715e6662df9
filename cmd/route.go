package cmd

import (
	"fmt"
	"text/tabwriter"

	intconfig "busmanager/internal/config"
	"busmanager/internal/services"
	"busmanager/internal/utils"

	"github.com/spf13/cobra"
)

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Manage route associations",
}

var linkKinds = []string{services.LinkDriver, services.LinkStop, services.LinkBus}

func linkCommand(use, short string, assign bool) *cobra.Command {
	return &cobra.Command{
		Use:       use + " <driver|stop|bus> <route-number> <id>",
		Short:     short,
		Args:      cobra.ExactArgs(3),
		ValidArgs: linkKinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer intconfig.CloseDB()

			routes := services.NewFleet(conn, env.DBDriver).Routes
			route, err := routes.GetByNumber(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			if assign {
				err = routes.Assign(cmd.Context(), args[0], route.ID, args[2])
			} else {
				err = routes.Unassign(cmd.Context(), args[0], route.ID, args[2])
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s on route %s\n", use, args[0], args[2], route.Number)
			return nil
		},
	}
}

var routeShowCmd = &cobra.Command{
	Use:   "show <route-number>",
	Short: "Print a route with its drivers, stops and buses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer intconfig.CloseDB()

		routes := services.NewFleet(conn, env.DBDriver).Routes
		route, err := routes.GetByNumber(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		d, err := routes.Details(cmd.Context(), route.ID)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Route %s\t%s\n", d.Route.Number, d.Route.ID)
		for _, dr := range d.Drivers {
			fmt.Fprintf(w, "driver\t%s\t%s\n", dr.FullName(), dr.ID)
		}
		for i, s := range d.Stops {
			fmt.Fprintf(w, "stop %d\t%s (%.5f, %.5f)\t%s\n", i+1, s.Name, s.Lat, s.Long, s.ID)
		}
		for _, b := range d.Buses {
			fmt.Fprintf(w, "bus\t%s %s, repaired %s\t%s\n", b.RegisterNumber, b.Brand, utils.FormatDisplayDate(b.LastRepairDate), b.ID)
		}
		return w.Flush()
	},
}

func init() {
	routeCmd.AddCommand(
		linkCommand("assign", "Attach a driver, stop or bus to a route", true),
		linkCommand("unassign", "Detach a driver, stop or bus from a route", false),
		routeShowCmd,
	)
	rootCmd.AddCommand(routeCmd)
}
