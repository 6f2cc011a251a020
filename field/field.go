package field

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Default physical parameters for the unit square problem
const (
	DefaultLx    = 1.0
	DefaultLy    = 1.0
	DefaultAlpha = 0.0001
)

// StabilityFactor is the explicit 2D scheme bound: dt <= 0.25*min(dx²,dy²)/α
const StabilityFactor = 0.25

// Config holds configuration for creating a Field
type Config struct {
	Nx, Ny int     // Grid points along x (rows) and y (columns)
	Lx, Ly float64 // Physical domain size
	Alpha  float64 // Diffusion coefficient
}

// Field is a double-buffered 2D scalar field on a uniform grid.
//
// Both buffers are contiguous row-major Nx×Ny matrices with stride Ny. Row
// index i runs along x, column index j along y. The buffers trade roles on
// Swap; no element is ever copied between them.
type Field struct {
	Nx, Ny int
	Lx, Ly float64
	Alpha  float64

	// Derived spacing and time step
	Dx, Dy float64
	Dt     float64

	buffers [2]*mat.Dense
	current int // index into buffers holding the "current" snapshot
}

// New validates cfg and allocates a zeroed pair of buffers.
func New(cfg Config) (*Field, error) {
	if cfg.Nx < 3 || cfg.Ny < 3 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidDimension, cfg.Nx, cfg.Ny)
	}
	for _, p := range []struct {
		name string
		v    float64
	}{{"Lx", cfg.Lx}, {"Ly", cfg.Ly}, {"alpha", cfg.Alpha}} {
		// !(v > 0) also rejects NaN
		if !(p.v > 0) || math.IsInf(p.v, 1) {
			return nil, fmt.Errorf("%w: %s must be positive and finite, got %g",
				ErrInvalidParameter, p.name, p.v)
		}
	}

	dx := cfg.Lx / float64(cfg.Nx-1)
	dy := cfg.Ly / float64(cfg.Ny-1)

	f := &Field{
		Nx:    cfg.Nx,
		Ny:    cfg.Ny,
		Lx:    cfg.Lx,
		Ly:    cfg.Ly,
		Alpha: cfg.Alpha,
		Dx:    dx,
		Dy:    dy,
		Dt:    StableTimeStep(dx, dy, cfg.Alpha),
	}
	f.buffers[0] = mat.NewDense(cfg.Nx, cfg.Ny, nil)
	f.buffers[1] = mat.NewDense(cfg.Nx, cfg.Ny, nil)
	return f, nil
}

// StableTimeStep returns the largest time step the explicit scheme allows
func StableTimeStep(dx, dy, alpha float64) float64 {
	return StabilityFactor * math.Min(dx*dx, dy*dy) / alpha
}

// At returns the current value at (i, j)
func (f *Field) At(i, j int) float64 {
	f.checkIndex(i, j)
	return f.buffers[f.current].At(i, j)
}

// Set writes v into the current buffer at (i, j)
func (f *Field) Set(i, j int, v float64) {
	f.checkIndex(i, j)
	f.buffers[f.current].Set(i, j, v)
}

func (f *Field) checkIndex(i, j int) {
	if i < 0 || i >= f.Nx || j < 0 || j >= f.Ny {
		panic(fmt.Errorf("%w: (%d, %d) outside %dx%d", ErrIndexOutOfRange, i, j, f.Nx, f.Ny))
	}
}

// Swap exchanges the roles of the current and next buffers
func (f *Field) Swap() {
	f.current ^= 1
}

// CenterValue returns the value at (Nx/2, Ny/2)
func (f *Field) CenterValue() float64 {
	return f.At(f.Nx/2, f.Ny/2)
}

// Current returns the row-major backing slice of the current buffer.
// Kernels read from it; they must not write to it during a step.
func (f *Field) Current() []float64 {
	return f.buffers[f.current].RawMatrix().Data
}

// Next returns the row-major backing slice of the next buffer
func (f *Field) Next() []float64 {
	return f.buffers[f.current^1].RawMatrix().Data
}

// Dense exposes the current buffer for read-only inspection.
// The returned matrix aliases field storage and is invalidated by Swap.
func (f *Field) Dense() *mat.Dense {
	return f.buffers[f.current]
}

// Snapshot returns a copy of the current buffer
func (f *Field) Snapshot() *mat.Dense {
	return mat.DenseCopyOf(f.buffers[f.current])
}

// InteriorCells returns the number of cells updated per step
func (f *Field) InteriorCells() int {
	return (f.Nx - 2) * (f.Ny - 2)
}

// SyncBoundary copies the boundary ring of the current buffer into the next
// buffer. Swap exchanges whole buffers, so both must carry the same fixed
// boundary values before stepping starts. Interior cells of next are left
// alone; every step overwrites them before they are read.
func (f *Field) SyncBoundary() {
	cur := f.buffers[f.current]
	nxt := f.buffers[f.current^1]

	copy(nxt.RawRowView(0), cur.RawRowView(0))
	copy(nxt.RawRowView(f.Nx-1), cur.RawRowView(f.Nx-1))
	for i := 1; i < f.Nx-1; i++ {
		nxt.Set(i, 0, cur.At(i, 0))
		nxt.Set(i, f.Ny-1, cur.At(i, f.Ny-1))
	}
}

// IsBoundary reports whether (i, j) lies on the fixed boundary ring
func (f *Field) IsBoundary(i, j int) bool {
	return i == 0 || j == 0 || i == f.Nx-1 || j == f.Ny-1
}
