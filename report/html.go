package report

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/mat"
)

// MaxHTMLCells bounds the number of points embedded in an HTML heat map
const MaxHTMLCells = 128 * 128

var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// htmlStride picks the sampling step so at most MaxHTMLCells are emitted
func htmlStride(nx, ny int) int {
	stride := 1
	for (nx/stride+1)*(ny/stride+1) > MaxHTMLCells {
		stride++
	}
	return stride
}

// RenderHeatMapHTML writes a standalone interactive heat map of m. Large
// grids are sampled every stride cells.
func RenderHeatMapHTML(w io.Writer, m mat.Matrix, title string) error {
	nx, ny := m.Dims()
	stride := htmlStride(nx, ny)

	var xs, ys []string
	for i := 0; i < nx; i += stride {
		xs = append(xs, strconv.Itoa(i))
	}
	for j := 0; j < ny; j += stride {
		ys = append(ys, strconv.Itoa(j))
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	data := make([]opts.HeatMapData, 0, len(xs)*len(ys))
	for a, i := 0, 0; i < nx; a, i = a+1, i+stride {
		for b, j := 0, 0; j < ny; b, j = b+1, j+stride {
			v := m.At(i, j)
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
			data = append(data, opts.HeatMapData{Value: [3]interface{}{a, b, v}})
		}
	}

	if hi == lo {
		hi = lo + 1
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("grid=%dx%d stride=%d", nx, ny, stride)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: xs, Name: "i"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: ys, Name: "j"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	hm.AddSeries("u", data)

	if err := hm.Render(w); err != nil {
		return fmt.Errorf("%w: html heat map: %v", ErrIOFailure, err)
	}
	return nil
}
