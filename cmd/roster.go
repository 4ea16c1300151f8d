package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/shiftplan/app"
	"github.com/kilianp07/shiftplan/pkg/export"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Driver roster commands",
}

var rosterImportCmd = &cobra.Command{
	Use:   "import <drivers.csv|drivers.yaml>",
	Short: "Validate a roster file and store its drivers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *app.Service) error {
			drivers, err := svc.ImportRoster(ctx, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d drivers\n", len(drivers))
			return err
		})
	},
}

var rosterLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored drivers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *app.Service) error {
			drivers, err := svc.Drivers(ctx)
			if err != nil {
				return err
			}
			return export.WriteJSON(cmd.OutOrStdout(), drivers)
		})
	},
}

func init() {
	rosterCmd.AddCommand(rosterImportCmd, rosterLsCmd)
	rootCmd.AddCommand(rosterCmd)
}
