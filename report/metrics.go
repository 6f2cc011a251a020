package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/notargets/HeatKernel/solver"
)

// WriteMetrics prints one "Key: value" line per metric
func WriteMetrics(w io.Writer, m solver.Metrics) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Implementation: %s\n", m.Implementation)
	fmt.Fprintf(&sb, "Threads: %d\n", m.Workers)
	fmt.Fprintf(&sb, "GridSize: %dx%d\n", m.Nx, m.Ny)
	fmt.Fprintf(&sb, "TimeSteps: %d\n", m.Nt)
	fmt.Fprintf(&sb, "Time: %.6f\n", m.Elapsed)
	fmt.Fprintf(&sb, "Throughput: %.2f\n", m.Throughput)
	fmt.Fprintf(&sb, "CenterValue: %f\n", m.CenterValue)

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return nil
}

// WriteSummary prints a fixed-width table comparing several runs. Speedup
// is relative to the first row.
func WriteSummary(w io.Writer, runs []solver.Metrics) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-12s %8s %12s %14s %10s\n", "Impl", "Threads", "Time(s)", "MLUPS", "Speedup")
	for _, m := range runs {
		speedup := 0.0
		if m.Elapsed > 0 {
			speedup = runs[0].Elapsed / m.Elapsed
		}
		fmt.Fprintf(&sb, "%-12s %8d %12.6f %14.2f %9.2fx\n",
			m.Implementation, m.Workers, m.Elapsed, m.Throughput, speedup)
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return nil
}
