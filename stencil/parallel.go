package stencil

import (
	"github.com/notargets/HeatKernel/field"
	"github.com/notargets/HeatKernel/runner"
)

// Parallel distributes the flattened interior range over a fixed goroutine
// pool in equal contiguous chunks. The pool's For is the only
// synchronisation point per step.
type Parallel struct {
	pool *runner.Pool
}

// NewParallel starts a pool of workers goroutines; workers <= 0 uses GOMAXPROCS
func NewParallel(workers int) *Parallel {
	return &Parallel{pool: runner.NewPool(workers)}
}

func (s *Parallel) Step(f *field.Field) error {
	k := NewKernel(f)
	s.pool.For(f.InteriorCells(), k.Update)
	return nil
}

func (s *Parallel) Label() string { return ParallelName }

// Workers reports the configured pool size, not a fixed constant
func (s *Parallel) Workers() int { return s.pool.Workers() }

func (s *Parallel) Close() { s.pool.Close() }
