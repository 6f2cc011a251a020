package stencil

import "github.com/notargets/HeatKernel/field"

// Kernel holds the per-step coefficients and buffer views for the update.
// Interior cells are addressed by a flattened index k in
// [0, (Nx-2)*(Ny-2)) with i = 1 + k/(Ny-2), j = 1 + k%(Ny-2).
type Kernel struct {
	Ny       int
	Dx2, Dy2 float64
	AlphaDt  float64

	Cur  []float64 // read only during a step
	Next []float64
}

// NewKernel binds the field's current and next buffers
func NewKernel(f *field.Field) *Kernel {
	return &Kernel{
		Ny:      f.Ny,
		Dx2:     f.Dx * f.Dx,
		Dy2:     f.Dy * f.Dy,
		AlphaDt: f.Alpha * f.Dt,
		Cur:     f.Current(),
		Next:    f.Next(),
	}
}

// Update computes next for flattened interior indices [lo, hi)
func (k *Kernel) Update(lo, hi int) {
	ny := k.Ny
	inner := ny - 2
	u := k.Cur
	uNew := k.Next

	for lo < hi {
		i := 1 + lo/inner
		j := 1 + lo%inner

		// run to the end of row i or to hi
		n := inner - (j - 1)
		if lo+n > hi {
			n = hi - lo
		}

		base := i * ny
		for c := base + j; c < base+j+n; c++ {
			uxx := (u[c+ny] - 2*u[c] + u[c-ny]) / k.Dx2
			uyy := (u[c+1] - 2*u[c] + u[c-1]) / k.Dy2
			uNew[c] = u[c] + k.AlphaDt*(uxx+uyy)
		}
		lo += n
	}
}
