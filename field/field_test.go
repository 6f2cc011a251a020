package field

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitConfig(nx, ny int) Config {
	return Config{Nx: nx, Ny: ny, Lx: DefaultLx, Ly: DefaultLy, Alpha: DefaultAlpha}
}

func TestNew_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"too_narrow", Config{Nx: 2, Ny: 10, Lx: 1, Ly: 1, Alpha: 1}, ErrInvalidDimension},
		{"too_short", Config{Nx: 10, Ny: 2, Lx: 1, Ly: 1, Alpha: 1}, ErrInvalidDimension},
		{"zero_lx", Config{Nx: 10, Ny: 10, Lx: 0, Ly: 1, Alpha: 1}, ErrInvalidParameter},
		{"negative_ly", Config{Nx: 10, Ny: 10, Lx: 1, Ly: -1, Alpha: 1}, ErrInvalidParameter},
		{"zero_alpha", Config{Nx: 10, Ny: 10, Lx: 1, Ly: 1, Alpha: 0}, ErrInvalidParameter},
		{"nan_alpha", Config{Nx: 10, Ny: 10, Lx: 1, Ly: 1, Alpha: math.NaN()}, ErrInvalidParameter},
		{"inf_lx", Config{Nx: 10, Ny: 10, Lx: math.Inf(1), Ly: 1, Alpha: 1}, ErrInvalidParameter},
		{"minimal", Config{Nx: 3, Ny: 3, Lx: 1, Ly: 1, Alpha: 1}, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f, err := New(tc.cfg)
			if tc.wantErr != nil {
				assert.True(t, errors.Is(err, tc.wantErr), "expected %v, got %v", tc.wantErr, err)
				assert.Nil(t, f)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.cfg.Nx, f.Nx)
			assert.Equal(t, tc.cfg.Ny, f.Ny)
		})
	}
}

func TestNew_StabilityBound(t *testing.T) {
	testCases := []struct {
		nx, ny        int
		lx, ly, alpha float64
	}{
		{200, 200, 1, 1, 0.0001},
		{5, 5, 1, 1, 0.0001},
		{50, 120, 2, 0.5, 0.3},
		{3, 1000, 10, 1e-3, 7},
	}

	for _, tc := range testCases {
		f, err := New(Config{Nx: tc.nx, Ny: tc.ny, Lx: tc.lx, Ly: tc.ly, Alpha: tc.alpha})
		require.NoError(t, err)

		dx := tc.lx / float64(tc.nx-1)
		dy := tc.ly / float64(tc.ny-1)
		want := 0.25 * math.Min(dx*dx, dy*dy) / tc.alpha

		assert.Equal(t, dx, f.Dx)
		assert.Equal(t, dy, f.Dy)
		// exact equality, no drift
		assert.Equal(t, want, f.Dt)
		assert.LessOrEqual(t, f.Dt, 0.25*math.Min(f.Dx*f.Dx, f.Dy*f.Dy)/f.Alpha)
	}
}

func TestField_ZeroInitialised(t *testing.T) {
	f, err := New(unitConfig(4, 6))
	require.NoError(t, err)

	assert.Len(t, f.Current(), 24)
	assert.Len(t, f.Next(), 24)
	for _, v := range f.Current() {
		assert.Zero(t, v)
	}
	for _, v := range f.Next() {
		assert.Zero(t, v)
	}
}

func TestField_AtSetRowMajor(t *testing.T) {
	f, err := New(unitConfig(4, 5))
	require.NoError(t, err)

	f.Set(2, 3, 7.5)
	assert.Equal(t, 7.5, f.At(2, 3))
	// row-major, stride Ny
	assert.Equal(t, 7.5, f.Current()[2*5+3])
	assert.Equal(t, 7.5, f.Dense().At(2, 3))
}

func TestField_IndexAssertions(t *testing.T) {
	f, err := New(unitConfig(4, 4))
	require.NoError(t, err)

	for _, idx := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 4}} {
		func() {
			defer func() {
				r := recover()
				require.NotNil(t, r, "expected panic for %v", idx)
				err, ok := r.(error)
				require.True(t, ok)
				assert.True(t, errors.Is(err, ErrIndexOutOfRange))
			}()
			f.At(idx[0], idx[1])
		}()
	}
}

func TestField_SwapIsTagExchange(t *testing.T) {
	f, err := New(unitConfig(3, 3))
	require.NoError(t, err)

	cur := f.Current()
	next := f.Next()
	cur[4] = 1
	next[4] = 2

	f.Swap()
	assert.Equal(t, 2.0, f.At(1, 1))
	// same backing arrays, roles exchanged
	assert.Same(t, &next[0], &f.Current()[0])
	assert.Same(t, &cur[0], &f.Next()[0])

	f.Swap()
	assert.Equal(t, 1.0, f.At(1, 1))
}

func TestField_CenterValue(t *testing.T) {
	f, err := New(unitConfig(5, 8))
	require.NoError(t, err)

	f.Set(2, 4, 3.25)
	assert.Equal(t, 3.25, f.CenterValue())
}

func TestField_SyncBoundary(t *testing.T) {
	f, err := New(unitConfig(5, 6))
	require.NoError(t, err)
	Initialize(f, Gaussian)

	next := f.Next()
	next[2*6+3] = -1 // interior sentinel must survive

	f.SyncBoundary()
	f.Swap()
	for i := 0; i < f.Nx; i++ {
		for j := 0; j < f.Ny; j++ {
			if f.IsBoundary(i, j) {
				x, y := f.Coordinates(i, j)
				assert.Equal(t, Gaussian(x, y), f.At(i, j), "boundary (%d,%d)", i, j)
			}
		}
	}
	assert.Equal(t, -1.0, f.At(2, 3))
}

func TestField_SnapshotIsCopy(t *testing.T) {
	f, err := New(unitConfig(3, 3))
	require.NoError(t, err)
	f.Set(1, 1, 4)

	snap := f.Snapshot()
	f.Set(1, 1, 5)
	assert.Equal(t, 4.0, snap.At(1, 1))
	assert.Equal(t, 1, f.InteriorCells())
}
