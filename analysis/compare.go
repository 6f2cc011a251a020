// Package analysis measures how far a heat distribution snapshot deviates
// from a reference snapshot, usually the Serial run of the same problem.
package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/exascience/pargo/parallel"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrShapeMismatch is returned when the two snapshots differ in dimensions
var ErrShapeMismatch = errors.New("analysis: snapshot shapes differ")

// RelativeFloor is the smallest |reference| for which a relative error is
// computed; smaller cells contribute zero relative error
const RelativeFloor = 1e-15

// Errors summarises the difference between two snapshots
type Errors struct {
	Method string

	MSE     float64
	RMSE    float64
	MaxAbs  float64
	MeanAbs float64
	StdAbs  float64 // population standard deviation of |ref - got|
	MaxRel  float64
	MeanRel float64

	// Per-cell |ref - got|, for error maps
	AbsErrors *mat.Dense
}

// Compare computes the error metrics of got against ref
func Compare(method string, ref, got mat.Matrix) (*Errors, error) {
	rr, rc := ref.Dims()
	gr, gc := got.Dims()
	if rr != gr || rc != gc {
		return nil, fmt.Errorf("%w: %s is %dx%d, reference is %dx%d",
			ErrShapeMismatch, method, gr, gc, rr, rc)
	}

	abs := mat.NewDense(rr, rc, nil)
	abs.Sub(ref, got)
	abs.Apply(func(_, _ int, v float64) float64 { return math.Abs(v) }, abs)

	rel := mat.NewDense(rr, rc, nil)
	rel.Apply(func(i, j int, v float64) float64 {
		r := math.Abs(ref.At(i, j))
		if r > RelativeFloor {
			return v / r
		}
		return 0
	}, abs)

	absData := abs.RawMatrix().Data
	relData := rel.RawMatrix().Data

	e := &Errors{Method: method, AbsErrors: abs}

	sq := make([]float64, len(absData))
	floats.MulTo(sq, absData, absData)
	e.MSE = stat.Mean(sq, nil)
	e.RMSE = math.Sqrt(e.MSE)

	e.MaxAbs = MaxDiff(ref, got)
	e.MeanAbs, e.StdAbs = stat.PopMeanStdDev(absData, nil)

	e.MaxRel = floats.Max(relData)
	e.MeanRel = stat.Mean(relData, nil)

	return e, nil
}

// MaxDiff returns max |a - b| over all cells, reducing rows in parallel.
// The matrices must have equal dimensions.
func MaxDiff(a, b mat.Matrix) float64 {
	rows, cols := a.Dims()
	return parallel.RangeReduceFloat64(
		0, rows, 0,
		func(low, high int) (result float64) {
			for i := low; i < high; i++ {
				for j := 0; j < cols; j++ {
					result = math.Max(result, math.Abs(a.At(i, j)-b.At(i, j)))
				}
			}
			return
		},
		math.Max,
	)
}
