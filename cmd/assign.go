package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/shiftplan/app"
	"github.com/kilianp07/shiftplan/core/model"
	"github.com/kilianp07/shiftplan/infra/store"
	"github.com/kilianp07/shiftplan/pkg/export"
)

var assignOpts struct {
	out      string
	roster   string
	contract string
	save     bool
}

var assignCmd = &cobra.Command{
	Use:   "assign [doc.txt]...",
	Short: "Assign trips to drivers minimizing total scheduled hours",
	RunE:  runAssign,
}

func init() {
	assignCmd.Flags().StringVarP(&assignOpts.out, "out", "o", "json", "output format: json or csv")
	assignCmd.Flags().StringVar(&assignOpts.roster, "roster", "", "driver roster file (csv or yaml); defaults to the stored roster")
	assignCmd.Flags().StringVar(&assignOpts.contract, "contract", "", "assign the stored trips of this contract")
	assignCmd.Flags().BoolVar(&assignOpts.save, "save", false, "persist the driver shifts")
	rootCmd.AddCommand(assignCmd)
}

func runAssign(cmd *cobra.Command, args []string) error {
	if err := checkFormat(assignOpts.out); err != nil {
		return err
	}
	return withService(cmd, func(ctx context.Context, svc *app.Service) error {
		trips, err := collectTrips(ctx, svc, assignOpts.contract, args)
		if err != nil {
			return err
		}
		drivers, err := roster(ctx, svc)
		if err != nil {
			return err
		}
		res, err := svc.Assign(ctx, trips, drivers, assignOpts.save)
		if err != nil {
			return err
		}
		if !res.Status.OK() {
			return fmt.Errorf("no assignment: %s after %d nodes", res.Status, res.Nodes)
		}
		w := cmd.OutOrStdout()
		if assignOpts.out == "csv" {
			return export.WriteDriverShiftsCSV(w, res.Shifts)
		}
		return export.WriteJSON(w, res)
	})
}

func roster(ctx context.Context, svc *app.Service) ([]model.Driver, error) {
	if assignOpts.roster != "" {
		return store.ReadRoster(assignOpts.roster)
	}
	drivers, err := svc.Drivers(ctx)
	if err != nil {
		return nil, err
	}
	if len(drivers) == 0 {
		return nil, fmt.Errorf("no stored drivers: pass --roster or run roster import")
	}
	return drivers, nil
}
