package solver

import (
	"fmt"
	"time"

	"github.com/notargets/HeatKernel/field"
	"github.com/notargets/HeatKernel/stencil"
)

// Metrics is the outcome of one timed run
type Metrics struct {
	Implementation string  `json:"implementation"`
	Workers        int     `json:"workers"`
	Nx             int     `json:"nx"`
	Ny             int     `json:"ny"`
	Nt             int     `json:"nt"`
	Elapsed        float64 `json:"elapsed_seconds"`
	Throughput     float64 `json:"throughput_mlups"` // millions of interior updates per second
	CenterValue    float64 `json:"center_value"`
}

// Updates returns the number of interior-cell updates performed
func (m Metrics) Updates() float64 {
	return float64(m.Nt) * float64(m.Nx-2) * float64(m.Ny-2)
}

// Measure times Run with the monotonic clock and derives throughput.
// Setup done by a stencil.Preparer happens before the clock starts, so
// only the time-stepping loop is measured.
func Measure(f *field.Field, s stencil.Stepper, nt int) (Metrics, error) {
	if err := validate(f, s, nt); err != nil {
		return Metrics{}, err
	}

	if p, ok := s.(stencil.Preparer); ok && nt > 0 {
		f.SyncBoundary()
		if err := p.Prepare(f); err != nil {
			return Metrics{}, fmt.Errorf("%s prepare failed: %w", s.Label(), err)
		}
	}

	t0 := time.Now()
	if err := Run(f, s, nt); err != nil {
		return Metrics{}, err
	}
	elapsed := time.Since(t0)

	// Timer resolution coarser than the run must not divide by zero
	if elapsed <= 0 {
		elapsed = time.Nanosecond
	}

	m := Metrics{
		Implementation: s.Label(),
		Workers:        s.Workers(),
		Nx:             f.Nx,
		Ny:             f.Ny,
		Nt:             nt,
		Elapsed:        elapsed.Seconds(),
		CenterValue:    f.CenterValue(),
	}
	m.Throughput = m.Updates() / m.Elapsed / 1e6
	return m, nil
}
