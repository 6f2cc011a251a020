package main

import (
	"fmt"
	"io"

	"github.com/notargets/HeatKernel/report"
	"github.com/notargets/HeatKernel/solver"
	"github.com/notargets/HeatKernel/store"
)

// query prints recorded runs from the -db history
func query(c *command, w io.Writer) error {
	db, err := store.Open(c.cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	switch {
	case c.show != "":
		r, err := db.Get(c.show)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Run: %s\n", r.ID)
		fmt.Fprintf(w, "Recorded: %s\n", r.CreatedAt.Format("2006-01-02 15:04:05"))
		if err := report.WriteMetrics(w, r.Metrics); err != nil {
			return err
		}
		if r.SnapshotPath != "" {
			fmt.Fprintf(w, "Snapshot: %s\n", r.SnapshotPath)
		}
		return nil

	case c.best:
		runs, err := db.Best(c.cfg.Nx, c.cfg.Ny, c.cfg.Nt)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintf(w, "no runs recorded for %dx%d, %d steps\n", c.cfg.Nx, c.cfg.Ny, c.cfg.Nt)
			return nil
		}
		return writeRuns(w, runs)

	default:
		runs, err := db.Runs(c.history)
		if err != nil {
			return err
		}
		return writeRuns(w, runs)
	}
}

// writeRuns lists run IDs and grids, then the summary table in the same order
func writeRuns(w io.Writer, runs []store.Run) error {
	metrics := make([]solver.Metrics, len(runs))
	for k, r := range runs {
		fmt.Fprintf(w, "%s  %s  %-10s %dx%d nt=%d\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"),
			r.Implementation, r.Nx, r.Ny, r.Nt)
		metrics[k] = r.Metrics
	}
	fmt.Fprintln(w)
	return report.WriteSummary(w, metrics)
}
