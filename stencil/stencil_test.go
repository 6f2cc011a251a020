package stencil

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/HeatKernel/field"
)

func newGaussianField(t testing.TB, nx, ny int) *field.Field {
	t.Helper()
	f, err := field.New(field.Config{
		Nx: nx, Ny: ny,
		Lx: field.DefaultLx, Ly: field.DefaultLy,
		Alpha: field.DefaultAlpha,
	})
	require.NoError(t, err)
	field.Initialize(f, field.Gaussian)
	return f
}

func gaussianAt(f *field.Field, i, j int) float64 {
	x := float64(i)*f.Dx - f.Lx/2
	y := float64(j)*f.Dy - f.Ly/2
	return math.Exp(-50 * (x*x + y*y))
}

// The 5x5 single-step scenario, computed from literal neighbour values
func TestSerial_FiveByFiveScenario(t *testing.T) {
	f := newGaussianField(t, 5, 5)
	s := NewSerial()
	defer s.Close()

	c := gaussianAt(f, 2, 2)
	uxx := (gaussianAt(f, 3, 2) - 2*c + gaussianAt(f, 1, 2)) / (f.Dx * f.Dx)
	uyy := (gaussianAt(f, 2, 3) - 2*c + gaussianAt(f, 2, 1)) / (f.Dy * f.Dy)
	want := c + f.Alpha*f.Dt*(uxx+uyy)

	before := f.Snapshot()
	require.NoError(t, s.Step(f))
	assert.InDelta(t, want, f.Next()[2*5+2], 1e-14)
	assert.Less(t, f.Next()[2*5+2], c, "diffusion lowers the peak")

	// current untouched by the step
	assert.Equal(t, before.RawMatrix().Data, f.Current())
}

func TestKernel_WritesInteriorOnly(t *testing.T) {
	f := newGaussianField(t, 6, 7)
	next := f.Next()
	for k := range next {
		next[k] = math.NaN()
	}

	require.NoError(t, NewSerial().Step(f))

	for i := 0; i < f.Nx; i++ {
		for j := 0; j < f.Ny; j++ {
			v := next[i*f.Ny+j]
			if f.IsBoundary(i, j) {
				assert.True(t, math.IsNaN(v), "boundary (%d,%d) was written", i, j)
			} else {
				assert.False(t, math.IsNaN(v), "interior (%d,%d) not written", i, j)
			}
		}
	}
}

func TestKernel_ChunkedUpdateMatchesFull(t *testing.T) {
	full := newGaussianField(t, 9, 13)
	NewKernel(full).Update(0, full.InteriorCells())

	// chunks that start and end mid-row
	chunked := newGaussianField(t, 9, 13)
	k := NewKernel(chunked)
	n := chunked.InteriorCells()
	for lo := 0; lo < n; lo += 5 {
		hi := lo + 5
		if hi > n {
			hi = n
		}
		k.Update(lo, hi)
	}

	assert.Equal(t, full.Next(), chunked.Next())
}

func TestSteppers_BitIdentical(t *testing.T) {
	grids := []struct{ nx, ny int }{{5, 5}, {17, 33}, {64, 48}, {101, 3}}

	for _, g := range grids {
		t.Run(fmt.Sprintf("%dx%d", g.nx, g.ny), func(t *testing.T) {
			ref := newGaussianField(t, g.nx, g.ny)
			ref.SyncBoundary()
			serial := NewSerial()

			impls := []Stepper{NewParallel(3), NewParallel(8), NewForkJoin(0), NewForkJoin(5)}
			fields := make([]*field.Field, len(impls))
			for i := range impls {
				fields[i] = newGaussianField(t, g.nx, g.ny)
				fields[i].SyncBoundary()
				defer impls[i].Close()
			}

			for n := 0; n < 25; n++ {
				require.NoError(t, serial.Step(ref))
				ref.Swap()
				for i, s := range impls {
					require.NoError(t, s.Step(fields[i]))
					fields[i].Swap()
				}
			}

			for i, s := range impls {
				assert.Equal(t, ref.Current(), fields[i].Current(),
					"%s(%d workers) diverged from Serial", s.Label(), s.Workers())
			}
		})
	}
}

func TestNew_Names(t *testing.T) {
	for _, name := range append([]string{"serial", "PARALLEL", "pargo"}, Names...) {
		s, err := New(name, 2)
		require.NoError(t, err, name)
		s.Close()
	}

	_, err := New("cuda", 2)
	assert.Error(t, err)

	p, err := New(ParallelName, 3)
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, 3, p.Workers())
	assert.Equal(t, ParallelName, p.Label())
}

func BenchmarkSteppers(b *testing.B) {
	sizes := []int{200, 500}

	for _, n := range sizes {
		for _, name := range Names {
			b.Run(fmt.Sprintf("%s_%dx%d", name, n, n), func(b *testing.B) {
				f := newGaussianField(b, n, n)
				f.SyncBoundary()
				s, err := New(name, 0)
				if err != nil {
					b.Fatal(err)
				}
				defer s.Close()

				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					_ = s.Step(f)
					f.Swap()
				}
				b.ReportMetric(float64(b.N)*float64(f.InteriorCells())/b.Elapsed().Seconds()/1e6, "MLUPS")
			})
		}
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		in, want string
		ok       bool
	}{
		{"serial", SerialName, true},
		{"Sequential", SerialName, true},
		{"PARALLEL", ParallelName, true},
		{"goroutines", ParallelName, true},
		{"forkjoin", ForkJoinName, true},
		{"pargo", ForkJoinName, true},
		{"occa", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Lookup(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
