// Command heat2d solves the 2D heat equation with a chosen implementation
// and reports timing, throughput and the final field.
//
// Usage:
//
//	heat2d [flags] [Nx Ny [Nt]]
//	heat2d -analyze [flags] reference.csv result.csv...
//	heat2d -db runs.db -history n | -best [Nx Ny [Nt]] | -show id
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/notargets/HeatKernel/config"
	"github.com/notargets/HeatKernel/utils"
)

// command is a parsed invocation. Only one of the modes is set; with none
// set the solver runs.
type command struct {
	cfg *config.Config

	analyze []string // snapshot files, reference first
	history int
	best    bool
	show    string
}

func main() {
	cmd, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := cmd.execute(os.Stdout); err != nil {
		log.Fatalf("heat2d: %v", err)
	}
}

func (c *command) execute(w io.Writer) error {
	switch {
	case len(c.analyze) > 0:
		return analyze(c.cfg, w, c.analyze)
	case c.history > 0, c.best, c.show != "":
		return query(c, w)
	default:
		return run(c.cfg, w)
	}
}

// parseFlags builds the run configuration: defaults, then the -config file,
// then positional Nx Ny [Nt], then any flag given explicitly
func parseFlags(args []string) (*command, error) {
	fs := flag.NewFlagSet("heat2d", flag.ContinueOnError)

	def := config.Default()
	var (
		configFile = fs.String("config", "", "JSON config file")
		impl       = fs.String("impl", def.Implementation, "implementation (serial, parallel, forkjoin, occa, all)")
		workers    = fs.Int("workers", def.Workers, "worker goroutines (0 = GOMAXPROCS)")
		device     = fs.String("device", def.Device, `OCCA device properties, e.g. {"mode": "CUDA", "device_id": 0}`)
		nt         = fs.Int("nt", def.Nt, "number of time steps")
		alpha      = fs.Float64("alpha", def.Alpha, "thermal diffusivity")
		outDir     = fs.String("out", def.OutputDir, "output directory")
		snapshot   = fs.Bool("snapshot", def.Snapshot, "write <impl>_heat_distribution.csv")
		png        = fs.Bool("png", def.PNG, "write a PNG heat map per implementation")
		html       = fs.Bool("html", def.HTML, "write an HTML heat map per implementation")
		compare    = fs.Bool("compare", def.Compare, "compare every implementation against the first")
		database   = fs.String("db", def.Database, "SQLite run history database")
		quiet      = fs.Bool("quiet", false, "suppress diagnostic logging")

		analyzeMode = fs.Bool("analyze", false, "compare snapshot files given as arguments against the first")
		history     = fs.Int("history", 0, "print the n most recent runs from -db")
		best        = fs.Bool("best", false, "print the fastest recorded run per implementation for the grid")
		show        = fs.String("show", "", "print one recorded run by ID")
	)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: heat2d [flags] [Nx Ny [Nt]]\n")
		fmt.Fprintf(fs.Output(), "       heat2d -analyze [flags] reference.csv result.csv...\n")
		fmt.Fprintf(fs.Output(), "       heat2d -db runs.db -history n | -best [Nx Ny [Nt]] | -show id\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := def
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cmd := &command{cfg: cfg, history: *history, best: *best, show: *show}

	modes := 0
	for _, set := range []bool{*analyzeMode, *history > 0, *best, *show != ""} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return nil, fmt.Errorf("%w: -analyze, -history, -best and -show are exclusive", config.ErrInvalidConfig)
	}
	if *history < 0 {
		return nil, fmt.Errorf("%w: -history must be positive, got %d", config.ErrInvalidConfig, *history)
	}

	pos := fs.Args()
	if *analyzeMode {
		if len(pos) < 2 {
			return nil, fmt.Errorf("%w: -analyze needs a reference and at least one result snapshot",
				config.ErrInvalidConfig)
		}
		cmd.analyze = pos
		pos = nil
	}
	if len(pos) == 1 || len(pos) > 3 {
		return nil, fmt.Errorf("%w: expected Nx Ny [Nt], got %d positional arguments",
			config.ErrInvalidConfig, len(pos))
	}
	dims := []*int{&cfg.Nx, &cfg.Ny, &cfg.Nt}
	for k, arg := range pos {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %q is not an integer", config.ErrInvalidConfig, arg)
		}
		*dims[k] = v
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "impl":
			cfg.Implementation = *impl
		case "workers":
			cfg.Workers = *workers
		case "device":
			cfg.Device = *device
		case "nt":
			cfg.Nt = *nt
		case "alpha":
			cfg.Alpha = *alpha
		case "out":
			cfg.OutputDir = *outDir
		case "snapshot":
			cfg.Snapshot = *snapshot
		case "png":
			cfg.PNG = *png
		case "html":
			cfg.HTML = *html
		case "compare":
			cfg.Compare = *compare
		case "db":
			cfg.Database = *database
		}
	})

	if *quiet {
		utils.SetLogger(nil)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if modes > 0 && !*analyzeMode && cfg.Database == "" {
		return nil, fmt.Errorf("%w: -history, -best and -show need -db", config.ErrInvalidConfig)
	}
	return cmd, nil
}
