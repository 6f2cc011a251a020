package stencil

import (
	"runtime"

	"github.com/exascience/pargo/parallel"

	"github.com/notargets/HeatKernel/field"
)

// ForkJoin splits the interior range recursively with pargo's parallel.Range.
// Goroutines are spawned per step rather than kept in a pool.
type ForkJoin struct {
	batches int
}

// NewForkJoin uses batches leaf ranges per step; batches <= 0 lets pargo
// pick GOMAXPROCS.
func NewForkJoin(batches int) *ForkJoin {
	if batches < 0 {
		batches = 0
	}
	return &ForkJoin{batches: batches}
}

func (s *ForkJoin) Step(f *field.Field) error {
	k := NewKernel(f)
	parallel.Range(0, f.InteriorCells(), s.batches, k.Update)
	return nil
}

func (s *ForkJoin) Label() string { return ForkJoinName }

func (s *ForkJoin) Workers() int {
	if s.batches == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return s.batches
}

func (s *ForkJoin) Close() {}
