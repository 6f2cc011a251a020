package analysis

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/notargets/HeatKernel/report"
)

// ReportName is the default file name of the text report
const ReportName = "heat_error_report.txt"

// WriteReport prints a comparison table followed by a detailed section per
// method. generated is stamped into the header.
func WriteReport(w io.Writer, all []*Errors, generated time.Time) error {
	rule := strings.Repeat("=", 80)
	dash := strings.Repeat("-", 80)

	var sb strings.Builder
	sb.WriteString(rule + "\n")
	sb.WriteString("HEAT EQUATION SOLVER ERROR ANALYSIS REPORT\n")
	sb.WriteString(rule + "\n")
	fmt.Fprintf(&sb, "Generated on: %s\n\n", generated.Format("2006-01-02 15:04:05"))

	sb.WriteString("ERROR METRICS COMPARISON:\n")
	sb.WriteString(dash + "\n")
	fmt.Fprintf(&sb, "%-15s %-12s %-12s %-12s %-12s\n", "Method", "MSE", "RMSE", "Max Abs Err", "Mean Abs Err")
	sb.WriteString(dash + "\n")
	for _, e := range all {
		fmt.Fprintf(&sb, "%-15s %-12.2e %-12.2e %-12.2e %-12.2e\n", e.Method, e.MSE, e.RMSE, e.MaxAbs, e.MeanAbs)
	}

	sb.WriteString("\n" + rule + "\n")
	sb.WriteString("DETAILED ANALYSIS:\n")
	sb.WriteString(rule + "\n\n")
	for _, e := range all {
		fmt.Fprintf(&sb, "METHOD: %s\n", strings.ToUpper(e.Method))
		sb.WriteString(strings.Repeat("-", 40) + "\n")
		fmt.Fprintf(&sb, "Mean Square Error (MSE):           %.6e\n", e.MSE)
		fmt.Fprintf(&sb, "Root Mean Square Error (RMSE):     %.6e\n", e.RMSE)
		fmt.Fprintf(&sb, "Maximum Absolute Error:            %.6e\n", e.MaxAbs)
		fmt.Fprintf(&sb, "Mean Absolute Error:               %.6e\n", e.MeanAbs)
		fmt.Fprintf(&sb, "Std Dev of Absolute Error:         %.6e\n", e.StdAbs)
		fmt.Fprintf(&sb, "Maximum Relative Error:            %.6e\n", e.MaxRel)
		fmt.Fprintf(&sb, "Mean Relative Error:               %.6e\n", e.MeanRel)
		fmt.Fprintf(&sb, "Verdict:                           %s\n\n", e.Verdict())
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("%w: %v", report.ErrIOFailure, err)
	}
	return nil
}

// Verdict classifies the maximum absolute error
func (e *Errors) Verdict() string {
	switch {
	case e.MaxAbs == 0:
		return "bit-identical"
	case e.MaxAbs < 1e-12:
		return "round-off"
	case e.MaxAbs < 1e-6:
		return "acceptable"
	default:
		return "divergent"
	}
}

// SaveErrorMaps writes one <method>_error_map.png per result into dir
func SaveErrorMaps(dir string, all []*Errors) ([]string, error) {
	var paths []string
	for _, e := range all {
		path := filepath.Join(dir, strings.ToLower(e.Method)+"_error_map.png")
		opts := report.HeatMapOptions{Title: fmt.Sprintf("|Serial - %s|", e.Method)}
		if err := report.SaveHeatMap(path, e.AbsErrors, opts); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
