package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/shiftplan/app"
	"github.com/kilianp07/shiftplan/core/journal"
)

var journalOpts struct {
	kind     string
	contract string
	since    time.Duration
	limit    int
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List recent extraction, packing and assignment runs",
	RunE:  runJournal,
}

func init() {
	journalCmd.Flags().StringVar(&journalOpts.kind, "kind", "", "filter by run kind: extract, pack or assign")
	journalCmd.Flags().StringVar(&journalOpts.contract, "contract", "", "filter by contract id")
	journalCmd.Flags().DurationVar(&journalOpts.since, "since", 0, "only runs started within this duration")
	journalCmd.Flags().IntVarP(&journalOpts.limit, "limit", "n", 20, "maximum number of runs")
	rootCmd.AddCommand(journalCmd)
}

func runJournal(cmd *cobra.Command, args []string) error {
	q := journal.Query{Kind: journal.Kind(journalOpts.kind), Contract: journalOpts.contract, Limit: journalOpts.limit}
	switch q.Kind {
	case "", journal.KindExtract, journal.KindPack, journal.KindAssign:
	default:
		return fmt.Errorf("unknown run kind %q", journalOpts.kind)
	}
	if journalOpts.since > 0 {
		q.Start = time.Now().Add(-journalOpts.since)
	}
	return withService(cmd, func(ctx context.Context, svc *app.Service) error {
		runs, err := svc.Runs(ctx, q)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STARTED\tKIND\tCONTRACT\tDOCUMENT\tTRIPS\tSHIFTS\tSTATUS\tELAPSED")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
				r.Started.Format(time.RFC3339), r.Kind, r.Contract, r.Document,
				r.Trips, r.Shifts, r.Status, r.Elapsed.Round(time.Millisecond))
		}
		return tw.Flush()
	})
}
