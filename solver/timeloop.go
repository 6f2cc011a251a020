package solver

import (
	"fmt"

	"github.com/notargets/HeatKernel/field"
	"github.com/notargets/HeatKernel/stencil"
)

// Run advances f by exactly nt explicit Euler steps. Each iteration calls
// s.Step and then swaps the field's buffers, so after Run the current buffer
// holds the state after nt updates. nt == 0 leaves the field unchanged.
func Run(f *field.Field, s stencil.Stepper, nt int) error {
	if err := validate(f, s, nt); err != nil {
		return err
	}
	if nt == 0 {
		return nil
	}

	// Boundary cells are never written by a step, so both buffers need them
	f.SyncBoundary()

	if a, ok := s.(stencil.Advancer); ok {
		if err := a.Advance(f, nt); err != nil {
			return fmt.Errorf("%s advance failed: %w", s.Label(), err)
		}
		return nil
	}

	for n := 0; n < nt; n++ {
		if err := s.Step(f); err != nil {
			return fmt.Errorf("%s step %d failed: %w", s.Label(), n, err)
		}
		f.Swap()
	}
	return nil
}

func validate(f *field.Field, s stencil.Stepper, nt int) error {
	if f == nil {
		return fmt.Errorf("%w: nil field", field.ErrInvalidParameter)
	}
	if s == nil {
		return fmt.Errorf("%w: nil stepper", field.ErrInvalidParameter)
	}
	if nt < 0 {
		return fmt.Errorf("%w: step count must be >= 0, got %d", field.ErrInvalidParameter, nt)
	}
	return nil
}
