package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/HeatKernel/analysis"
	"github.com/notargets/HeatKernel/config"
	"github.com/notargets/HeatKernel/field"
	"github.com/notargets/HeatKernel/occa"
	"github.com/notargets/HeatKernel/report"
	"github.com/notargets/HeatKernel/solver"
	"github.com/notargets/HeatKernel/store"
	"github.com/notargets/HeatKernel/utils"
)

// result is one completed implementation run
type result struct {
	metrics  solver.Metrics
	snapshot *mat.Dense
	dx, dy   float64
}

func implementations(cfg *config.Config) []string {
	if strings.EqualFold(cfg.Implementation, config.AllImplementations) {
		return occa.AllImplementations()
	}
	return []string{cfg.Implementation}
}

// runOne solves the configured problem with a single implementation
func runOne(cfg *config.Config, impl string) (*result, error) {
	f, err := field.New(cfg.FieldConfig())
	if err != nil {
		return nil, err
	}
	field.Initialize(f, field.Gaussian)

	s, err := occa.NewByName(impl, cfg.Workers, cfg.Device)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	m, err := solver.Measure(f, s, cfg.Nt)
	if err != nil {
		return nil, err
	}
	return &result{metrics: m, snapshot: f.Snapshot(), dx: f.Dx, dy: f.Dy}, nil
}

// writeOutputs stores the per-run files enabled in cfg and returns the
// snapshot path, if any
func writeOutputs(cfg *config.Config, r *result) (string, error) {
	label := strings.ToLower(r.metrics.Implementation)

	var snapshotPath string
	if cfg.Snapshot {
		snapshotPath = cfg.OutputPath(report.SnapshotName(label))
		if err := report.WriteSnapshot(snapshotPath, r.snapshot); err != nil {
			return "", err
		}
		utils.Logf("wrote %s", snapshotPath)
	}

	if cfg.PNG {
		path := cfg.OutputPath(label + "_heat_map.png")
		opts := report.HeatMapOptions{
			Title: fmt.Sprintf("%s t=%d steps", r.metrics.Implementation, r.metrics.Nt),
			Dx:    r.dx,
			Dy:    r.dy,
		}
		if err := report.SaveHeatMap(path, r.snapshot, opts); err != nil {
			return "", err
		}
		utils.Logf("wrote %s", path)
	}

	if cfg.HTML {
		path := cfg.OutputPath(label + "_heat_map.html")
		file, err := os.Create(path)
		if err != nil {
			return "", fmt.Errorf("%w: %v", report.ErrIOFailure, err)
		}
		err = report.RenderHeatMapHTML(file, r.snapshot, r.metrics.Implementation)
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("%w: %v", report.ErrIOFailure, cerr)
		}
		if err != nil {
			return "", err
		}
		utils.Logf("wrote %s", path)
	}

	return snapshotPath, nil
}

// run executes every selected implementation and writes the reports to w
func run(cfg *config.Config, w io.Writer) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", report.ErrIOFailure, err)
	}

	var db *store.Store
	if cfg.Database != "" {
		var err error
		if db, err = store.Open(cfg.Database); err != nil {
			return err
		}
		defer db.Close()
	}

	impls := implementations(cfg)
	all := len(impls) > 1

	var results []*result
	for _, impl := range impls {
		r, err := runOne(cfg, impl)
		if err != nil {
			// a missing device backend only drops that entry of a comparison
			if all && strings.EqualFold(impl, config.DeviceImplementation) {
				utils.Logf("skipping %s: %v", impl, err)
				continue
			}
			return fmt.Errorf("%s: %w", impl, err)
		}

		if len(results) > 0 {
			fmt.Fprintln(w)
		}
		if err := report.WriteMetrics(w, r.metrics); err != nil {
			return err
		}

		snapshotPath, err := writeOutputs(cfg, r)
		if err != nil {
			return err
		}

		if db != nil {
			id, err := db.Record(r.metrics, snapshotPath)
			if err != nil {
				return err
			}
			utils.Logf("recorded run %s", id)
		}
		results = append(results, r)
	}

	if len(results) > 1 {
		fmt.Fprintln(w)
		runs := make([]solver.Metrics, len(results))
		for k, r := range results {
			runs[k] = r.metrics
		}
		if err := report.WriteSummary(w, runs); err != nil {
			return err
		}
	}

	if cfg.Compare && len(results) > 1 {
		fmt.Fprintln(w)
		return compare(cfg, w, results)
	}
	return nil
}

// analyze compares snapshot files written by earlier runs against the
// first one. Each method is named after its file, less SnapshotSuffix.
func analyze(cfg *config.Config, w io.Writer, files []string) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", report.ErrIOFailure, err)
	}

	results := make([]*result, len(files))
	for k, path := range files {
		snap, err := report.ReadSnapshot(path)
		if err != nil {
			return err
		}
		label := strings.TrimSuffix(filepath.Base(path), report.SnapshotSuffix)
		results[k] = &result{metrics: solver.Metrics{Implementation: label}, snapshot: snap}
		utils.Logf("read %s", path)
	}
	return compare(cfg, w, results)
}

// compare analyses every result against the first one
func compare(cfg *config.Config, w io.Writer, results []*result) error {
	ref := results[0]

	var all []*analysis.Errors
	for _, r := range results[1:] {
		e, err := analysis.Compare(r.metrics.Implementation, ref.snapshot, r.snapshot)
		if err != nil {
			return fmt.Errorf("%s: %w", r.metrics.Implementation, err)
		}
		all = append(all, e)
	}

	path := cfg.OutputPath(analysis.ReportName)
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", report.ErrIOFailure, err)
	}
	defer file.Close()

	if err := analysis.WriteReport(io.MultiWriter(w, file), all, time.Now()); err != nil {
		return err
	}

	if cfg.PNG {
		if _, err := analysis.SaveErrorMaps(cfg.OutputDir, all); err != nil {
			return err
		}
	}
	return nil
}
