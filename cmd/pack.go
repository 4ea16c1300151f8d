package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/kilianp07/shiftplan/app"
)

var packOpts struct {
	out      string
	contract string
	save     bool
}

var packCmd = &cobra.Command{
	Use:   "pack [doc.txt]...",
	Short: "Pack trips into hour-bounded shifts per contract",
	RunE:  runPack,
}

func init() {
	packCmd.Flags().StringVarP(&packOpts.out, "out", "o", "json", "output format: json or csv")
	packCmd.Flags().StringVar(&packOpts.contract, "contract", "", "pack the stored trips of this contract")
	packCmd.Flags().BoolVar(&packOpts.save, "save", false, "persist the packed shifts")
	rootCmd.AddCommand(packCmd)
}

func runPack(cmd *cobra.Command, args []string) error {
	if err := checkFormat(packOpts.out); err != nil {
		return err
	}
	return withService(cmd, func(ctx context.Context, svc *app.Service) error {
		trips, err := collectTrips(ctx, svc, packOpts.contract, args)
		if err != nil {
			return err
		}
		shifts, err := svc.Pack(ctx, trips, packOpts.save)
		if err != nil {
			return err
		}
		return writeShifts(cmd.OutOrStdout(), packOpts.out, shifts)
	})
}
