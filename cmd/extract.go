package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/shiftplan/app"
	"github.com/kilianp07/shiftplan/core/extract"
	"github.com/kilianp07/shiftplan/core/model"
	"github.com/kilianp07/shiftplan/pkg/export"
)

var extractOpts struct {
	out   string
	stops bool
	save  bool
}

var extractCmd = &cobra.Command{
	Use:   "extract <doc.txt>...",
	Short: "Extract trips and stops from schedule page text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractOpts.out, "out", "o", "json", "output format: json or csv")
	extractCmd.Flags().BoolVar(&extractOpts.stops, "stops", false, "write stop rows instead of trip rows (csv)")
	extractCmd.Flags().BoolVar(&extractOpts.save, "save", false, "persist extracted trips in the store")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if err := checkFormat(extractOpts.out); err != nil {
		return err
	}
	sources, err := readSources(args)
	if err != nil {
		return err
	}
	return withService(cmd, func(ctx context.Context, svc *app.Service) error {
		var (
			docs   []*extract.Document
			failed []error
		)
		for _, r := range svc.Extract(ctx, sources) {
			if r.Err != nil {
				failed = append(failed, r.Err)
				continue
			}
			if extractOpts.save {
				if err := svc.SaveDocument(ctx, r.Document); err != nil {
					failed = append(failed, fmt.Errorf("%s: %w", r.Name, err))
					continue
				}
			}
			docs = append(docs, r.Document)
		}
		if err := writeDocuments(cmd, docs); err != nil {
			return err
		}
		if len(failed) > 0 {
			return fmt.Errorf("%d of %d documents failed: %w", len(failed), len(sources), errors.Join(failed...))
		}
		return nil
	})
}

func writeDocuments(cmd *cobra.Command, docs []*extract.Document) error {
	w := cmd.OutOrStdout()
	if extractOpts.out == "json" {
		return export.WriteJSON(w, docs)
	}
	if extractOpts.stops {
		var stops []extract.StopRecord
		for _, d := range docs {
			stops = append(stops, d.Stops()...)
		}
		return export.WriteStopsCSV(w, stops)
	}
	var trips []model.Trip
	for _, d := range docs {
		trips = append(trips, d.Trips...)
	}
	return export.WriteTripsCSV(w, trips)
}
