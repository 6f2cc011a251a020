package report

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// gridXYZ adapts a snapshot to plotter.GridXYZ. Columns of the plot follow
// the grid's i index (x), rows follow j (y).
type gridXYZ struct {
	m      mat.Matrix
	dx, dy float64
}

func (g gridXYZ) Dims() (c, r int) {
	nx, ny := g.m.Dims()
	return nx, ny
}

func (g gridXYZ) Z(c, r int) float64 { return g.m.At(c, r) }
func (g gridXYZ) X(c int) float64    { return float64(c) * g.dx }
func (g gridXYZ) Y(r int) float64    { return float64(r) * g.dy }

// HeatMapOptions controls the rendered image
type HeatMapOptions struct {
	Title  string
	Dx, Dy float64 // cell spacing; 1 when zero
	Levels int     // palette colours; 64 when zero
	Size   vg.Length
}

// SaveHeatMap renders m as a colour-mapped image at path. The format follows
// the file extension (png, svg, pdf...).
func SaveHeatMap(path string, m mat.Matrix, o HeatMapOptions) error {
	if o.Dx == 0 {
		o.Dx = 1
	}
	if o.Dy == 0 {
		o.Dy = 1
	}
	if o.Levels <= 0 {
		o.Levels = 64
	}
	if o.Size == 0 {
		o.Size = 6 * vg.Inch
	}

	p := plot.New()
	p.Title.Text = o.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	hm := plotter.NewHeatMap(gridXYZ{m: m, dx: o.Dx, dy: o.Dy}, palette.Heat(o.Levels, 1))
	if hm.Max == hm.Min {
		// uniform field, e.g. an all-zero error map
		hm.Max = hm.Min + 1
	}
	p.Add(hm)

	if err := p.Save(o.Size, o.Size, path); err != nil {
		return fmt.Errorf("%w: heat map %s: %v", ErrIOFailure, path, err)
	}
	return nil
}
