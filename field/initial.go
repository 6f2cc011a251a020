package field

import "math"

// InitialCondition evaluates the field at physical coordinates (x, y),
// measured from the centre of the domain.
type InitialCondition func(x, y float64) float64

// GaussianWidth is the exponent factor of the default pulse
const GaussianWidth = 50.0

// Gaussian is the default pulse exp(-50(x²+y²)) centred in the domain
func Gaussian(x, y float64) float64 {
	return math.Exp(-GaussianWidth * (x*x + y*y))
}

// GaussianPulse returns exp(-w(x²+y²))
func GaussianPulse(w float64) InitialCondition {
	return func(x, y float64) float64 {
		return math.Exp(-w * (x*x + y*y))
	}
}

// Initialize overwrites every cell of the current buffer, boundary included,
// with ic evaluated at x = i*dx - Lx/2, y = j*dy - Ly/2. The next buffer is
// not touched.
func Initialize(f *Field, ic InitialCondition) {
	cur := f.buffers[f.current]
	for i := 0; i < f.Nx; i++ {
		x := float64(i)*f.Dx - f.Lx/2
		row := cur.RawRowView(i)
		for j := range row {
			y := float64(j)*f.Dy - f.Ly/2
			row[j] = ic(x, y)
		}
	}
}

// Coordinates returns the physical position of grid index (i, j)
func (f *Field) Coordinates(i, j int) (x, y float64) {
	return float64(i)*f.Dx - f.Lx/2, float64(j)*f.Dy - f.Ly/2
}
