package solver

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/HeatKernel/field"
	"github.com/notargets/HeatKernel/stencil"
)

func newGaussianField(t *testing.T, nx, ny int) *field.Field {
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

func TestRun_Validation(t *testing.T) {
	f := newGaussianField(t, 5, 5)
	s := stencil.NewSerial()

	err := Run(f, s, -1)
	assert.True(t, errors.Is(err, field.ErrInvalidParameter), "got %v", err)

	err = Run(nil, s, 1)
	assert.True(t, errors.Is(err, field.ErrInvalidParameter), "got %v", err)

	err = Run(f, nil, 1)
	assert.True(t, errors.Is(err, field.ErrInvalidParameter), "got %v", err)
}

func TestRun_ZeroSteps(t *testing.T) {
	f := newGaussianField(t, 12, 9)
	before := f.Snapshot()

	require.NoError(t, Run(f, stencil.NewSerial(), 0))
	assert.Equal(t, before.RawMatrix().Data, f.Current())
}

func TestRun_FiveByFiveOneStep(t *testing.T) {
	f := newGaussianField(t, 5, 5)
	initial := f.Snapshot()

	require.NoError(t, Run(f, stencil.NewSerial(), 1))

	c := initial.At(2, 2)
	uxx := (initial.At(3, 2) - 2*c + initial.At(1, 2)) / (f.Dx * f.Dx)
	uyy := (initial.At(2, 3) - 2*c + initial.At(2, 1)) / (f.Dy * f.Dy)
	assert.InDelta(t, c+f.Alpha*f.Dt*(uxx+uyy), f.At(2, 2), 1e-14)

	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			if f.IsBoundary(i, j) {
				assert.Equal(t, initial.At(i, j), f.At(i, j), "boundary (%d,%d)", i, j)
			}
		}
	}
}

func TestRun_BoundaryInvariance(t *testing.T) {
	for _, nt := range []int{1, 2, 7, 50} {
		f := newGaussianField(t, 20, 31)
		initial := f.Snapshot()

		s := stencil.NewParallel(4)
		require.NoError(t, Run(f, s, nt))
		s.Close()

		for i := 0; i < f.Nx; i++ {
			for j := 0; j < f.Ny; j++ {
				if f.IsBoundary(i, j) {
					require.Equal(t, initial.At(i, j), f.At(i, j), "nt=%d boundary (%d,%d)", nt, i, j)
				}
			}
		}
	}
}

func TestRun_SerialParallelAgree(t *testing.T) {
	ref := newGaussianField(t, 50, 40)
	require.NoError(t, Run(ref, stencil.NewSerial(), 200))

	for _, workers := range []int{1, 2, 5, 16} {
		f := newGaussianField(t, 50, 40)
		s := stencil.NewParallel(workers)
		require.NoError(t, Run(f, s, 200))
		s.Close()

		for k, v := range f.Current() {
			require.InDelta(t, ref.Current()[k], v, 1e-9)
		}
		assert.Equal(t, ref.Current(), f.Current(), "workers=%d", workers)
	}
}

func TestRun_CenterDecays(t *testing.T) {
	prev := math.Inf(1)
	for _, nt := range []int{0, 1, 10, 100, 500} {
		f := newGaussianField(t, 41, 41)
		require.NoError(t, Run(f, stencil.NewSerial(), nt))

		center := math.Abs(f.CenterValue())
		assert.LessOrEqual(t, center, prev, "nt=%d", nt)
		prev = center
	}
}

func TestMeasure_Throughput(t *testing.T) {
	f := newGaussianField(t, 200, 200)
	s := stencil.NewParallel(0)
	defer s.Close()

	m, err := Measure(f, s, 1000)
	require.NoError(t, err)

	assert.Greater(t, m.Elapsed, 0.0)
	assert.Greater(t, m.Throughput, 0.0)
	assert.Equal(t, stencil.ParallelName, m.Implementation)
	assert.Equal(t, s.Workers(), m.Workers)
	assert.Equal(t, 200, m.Nx)
	assert.Equal(t, 1000, m.Nt)
	assert.Equal(t, f.CenterValue(), m.CenterValue)
	assert.InDelta(t, 1000.0*198*198/m.Elapsed/1e6, m.Throughput, 1e-6*m.Throughput)
}

func TestMeasure_PropagatesErrors(t *testing.T) {
	f := newGaussianField(t, 5, 5)
	_, err := Measure(f, stencil.NewSerial(), -3)
	assert.True(t, errors.Is(err, field.ErrInvalidParameter))
}

// slowSetup is a Serial stepper whose Prepare stands in for a device
// kernel build
type slowSetup struct {
	*stencil.Serial
	delay    time.Duration
	err      error
	prepared int
	steps    int
	order    []string
}

func (s *slowSetup) Prepare(f *field.Field) error {
	time.Sleep(s.delay)
	s.prepared++
	s.order = append(s.order, "prepare")
	return s.err
}

func (s *slowSetup) Step(f *field.Field) error {
	if s.steps == 0 {
		s.order = append(s.order, "step")
	}
	s.steps++
	return s.Serial.Step(f)
}

func TestMeasure_ExcludesPrepare(t *testing.T) {
	const delay = 300 * time.Millisecond
	s := &slowSetup{Serial: stencil.NewSerial(), delay: delay}

	f := newGaussianField(t, 9, 9)
	m, err := Measure(f, s, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, s.prepared)
	assert.Equal(t, 5, s.steps)
	assert.Equal(t, []string{"prepare", "step"}, s.order)
	assert.Less(t, m.Elapsed, delay.Seconds(), "setup time leaked into the timed region")

	// same result as an unprepared run
	ref := newGaussianField(t, 9, 9)
	require.NoError(t, Run(ref, stencil.NewSerial(), 5))
	assert.Equal(t, ref.Current(), f.Current())
}

func TestMeasure_PrepareSeesSyncedBoundary(t *testing.T) {
	f := newGaussianField(t, 6, 7)
	s := &boundaryCheck{Serial: stencil.NewSerial()}

	_, err := Measure(f, s, 1)
	require.NoError(t, err)
	assert.True(t, s.synced)
}

type boundaryCheck struct {
	*stencil.Serial
	synced bool
}

func (s *boundaryCheck) Prepare(f *field.Field) error {
	cur, next := f.Current(), f.Next()
	s.synced = true
	for i := 0; i < f.Nx; i++ {
		for j := 0; j < f.Ny; j++ {
			if f.IsBoundary(i, j) && cur[i*f.Ny+j] != next[i*f.Ny+j] {
				s.synced = false
			}
		}
	}
	return nil
}

func TestMeasure_PrepareErrors(t *testing.T) {
	boom := errors.New("kernel build failed")
	s := &slowSetup{Serial: stencil.NewSerial(), err: boom}

	_, err := Measure(newGaussianField(t, 5, 5), s, 3)
	assert.True(t, errors.Is(err, boom))
	assert.Zero(t, s.steps)
}

func TestMeasure_ZeroStepsSkipsPrepare(t *testing.T) {
	s := &slowSetup{Serial: stencil.NewSerial()}
	_, err := Measure(newGaussianField(t, 5, 5), s, 0)
	require.NoError(t, err)
	assert.Zero(t, s.prepared)
}
