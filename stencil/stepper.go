// Package stencil advances a field by one explicit Euler step of the heat
// equation using the 5-point Laplacian.
//
// Every variant writes only interior cells of the next buffer and only
// reads the current buffer, so all interior updates within a step are
// independent. Variants differ only in how the flattened interior range
// is distributed.
package stencil

import (
	"fmt"
	"strings"

	"github.com/notargets/HeatKernel/field"
)

// Stepper computes next from current for every interior cell.
// Step never swaps buffers; the caller does.
type Stepper interface {
	Step(f *field.Field) error
	Label() string // implementation name for reports
	Workers() int  // parallelism actually used
	Close()
}

// Advancer is implemented by steppers that can run many steps without
// returning to the caller between them (device backends). After Advance
// the field's current buffer holds the state after steps updates.
type Advancer interface {
	Advance(f *field.Field, steps int) error
}

// Preparer is implemented by steppers with setup work that should not be
// timed: kernel compilation, device allocation and the initial upload of
// the field. Prepare must be called after the boundary ring is synced; the
// first Step or Advance that follows uses the prepared state.
type Preparer interface {
	Prepare(f *field.Field) error
}

// Implementation names accepted by New
const (
	SerialName   = "Serial"
	ParallelName = "Parallel"
	ForkJoinName = "ForkJoin"
)

// Names lists the CPU implementations in report order
var Names = []string{SerialName, ParallelName, ForkJoinName}

// Lookup resolves a case-insensitive name or alias to its label
func Lookup(impl string) (string, bool) {
	switch strings.ToLower(impl) {
	case "serial", "sequential":
		return SerialName, true
	case "parallel", "goroutines":
		return ParallelName, true
	case "forkjoin", "pargo":
		return ForkJoinName, true
	default:
		return "", false
	}
}

// New returns the CPU stepper named impl (case-insensitive)
func New(impl string, workers int) (Stepper, error) {
	name, ok := Lookup(impl)
	if !ok {
		return nil, fmt.Errorf("unknown stencil implementation %q", impl)
	}

	switch name {
	case SerialName:
		return NewSerial(), nil
	case ParallelName:
		return NewParallel(workers), nil
	default:
		return NewForkJoin(workers), nil
	}
}
