package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// SnapshotSuffix is appended to the lower-cased implementation label
const SnapshotSuffix = "_heat_distribution.csv"

// SnapshotName returns the default snapshot file name for an implementation
func SnapshotName(label string) string {
	return strings.ToLower(label) + SnapshotSuffix
}

// EncodeSnapshot writes one line per row with values in %.10e separated by
// commas, no trailing comma
func EncodeSnapshot(w io.Writer, m mat.Matrix) error {
	rows, cols := m.Dims()
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 20*cols)

	for i := 0; i < rows; i++ {
		buf = buf[:0]
		for j := 0; j < cols; j++ {
			if j > 0 {
				buf = append(buf, ',')
			}
			buf = strconv.AppendFloat(buf, m.At(i, j), 'e', 10, 64)
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteSnapshot stores m at path. The data goes to a temporary file in the
// same directory which is renamed into place, so a failed write leaves no
// partial file behind.
func WriteSnapshot(path string, m mat.Matrix) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrIOFailure, path, err)
	}
	tmpName := tmp.Name()

	if err := EncodeSnapshot(tmp, m); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrIOFailure, path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrIOFailure, path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrIOFailure, path, err)
	}
	return nil
}

// DecodeSnapshot parses the CSV written by EncodeSnapshot. Blank lines and
// lines starting with '#' are skipped; every row must have the same width.
func DecodeSnapshot(r io.Reader) (*mat.Dense, error) {
	var (
		data []float64
		cols int
		rows int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Split(text, ",")
		if cols == 0 {
			cols = len(fields)
		} else if len(fields) != cols {
			return nil, fmt.Errorf("line %d: expected %d values, got %d", line, cols, len(fields))
		}

		for _, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			data = append(data, v)
		}
		rows++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("snapshot is empty")
	}

	return mat.NewDense(rows, cols, data), nil
}

// ReadSnapshot loads a snapshot written by WriteSnapshot
func ReadSnapshot(path string) (*mat.Dense, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer file.Close()

	m, err := DecodeSnapshot(file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}
	return m, nil
}
