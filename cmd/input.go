package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kilianp07/shiftplan/app"
	"github.com/kilianp07/shiftplan/core/extract"
	"github.com/kilianp07/shiftplan/core/model"
	"github.com/kilianp07/shiftplan/pkg/export"
)

// readSources loads page text files. Pages are separated by form feeds.
func readSources(paths []string) ([]extract.Source, error) {
	sources := make([]extract.Source, 0, len(paths))
	for _, p := range paths {
		b, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		pages := strings.Split(string(b), "\f")
		if n := len(pages); n > 1 && strings.TrimSpace(pages[n-1]) == "" {
			pages = pages[:n-1]
		}
		sources = append(sources, extract.Source{Name: filepath.Base(p), Pages: pages})
	}
	return sources, nil
}

// collectTrips returns the stored trips of contract when set, otherwise the
// trips extracted from the given documents. Any failed document is fatal.
func collectTrips(ctx context.Context, svc *app.Service, contract string, paths []string) ([]model.Trip, error) {
	if contract != "" {
		trips, err := svc.LoadTrips(ctx, contract)
		if err != nil {
			return nil, err
		}
		if len(trips) == 0 {
			return nil, fmt.Errorf("no stored trips for contract %s", contract)
		}
		return trips, nil
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("pass schedule documents or --contract")
	}
	sources, err := readSources(paths)
	if err != nil {
		return nil, err
	}
	var trips []model.Trip
	for _, r := range svc.Extract(ctx, sources) {
		if r.Err != nil {
			return nil, r.Err
		}
		trips = append(trips, r.Document.Trips...)
	}
	return trips, nil
}

func checkFormat(format string) error {
	if format != "json" && format != "csv" {
		return fmt.Errorf("unknown output format %q (json or csv)", format)
	}
	return nil
}

func writeShifts(w io.Writer, format string, shifts []model.Shift) error {
	if format == "csv" {
		return export.WriteShiftsCSV(w, shifts)
	}
	return export.WriteJSON(w, shifts)
}
