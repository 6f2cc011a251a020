// Package config loads run settings from a JSON file
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/notargets/HeatKernel/field"
	"github.com/notargets/HeatKernel/stencil"
)

// ErrInvalidConfig is returned for configurations that fail validation
var ErrInvalidConfig = errors.New("config: invalid configuration")

const maxFileSize = 1 * 1024 * 1024 // 1MB

// Config is the full set of run settings. Output paths left empty disable
// the corresponding output.
type Config struct {
	Nx    int     `json:"nx"`
	Ny    int     `json:"ny"`
	Nt    int     `json:"nt"`
	Lx    float64 `json:"lx"`
	Ly    float64 `json:"ly"`
	Alpha float64 `json:"alpha"`

	Implementation string `json:"implementation"` // serial, parallel, forkjoin, occa or all
	Workers        int    `json:"workers"`        // 0 means GOMAXPROCS
	Device         string `json:"device"`         // OCCA device properties, empty for auto

	OutputDir string `json:"output_dir"`
	Snapshot  bool   `json:"snapshot"`
	PNG       bool   `json:"png"`
	HTML      bool   `json:"html"`
	Compare   bool   `json:"compare"`
	Database  string `json:"database"`
}

// Default returns the configuration used when no file or flag overrides it
func Default() *Config {
	return &Config{
		Nx:             200,
		Ny:             200,
		Nt:             1000,
		Lx:             field.DefaultLx,
		Ly:             field.DefaultLy,
		Alpha:          field.DefaultAlpha,
		Implementation: "parallel",
		OutputDir:      ".",
		Snapshot:       true,
	}
}

// Load reads a JSON config. The file must have a .json extension and be
// under 1MB. Fields omitted from the file keep their Default values;
// unknown fields are rejected.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Implementation names handled outside the CPU stencil package
const (
	DeviceImplementation = "occa"
	AllImplementations   = "all"
)

// Validate checks ranges; the error wraps ErrInvalidConfig
func (c *Config) Validate() error {
	if c.Nx < 3 || c.Ny < 3 {
		return fmt.Errorf("%w: grid must be at least 3x3, got %dx%d", ErrInvalidConfig, c.Nx, c.Ny)
	}
	if c.Nt < 0 {
		return fmt.Errorf("%w: nt must be >= 0, got %d", ErrInvalidConfig, c.Nt)
	}
	if !(c.Lx > 0) || !(c.Ly > 0) {
		return fmt.Errorf("%w: domain lengths must be positive, got %g x %g", ErrInvalidConfig, c.Lx, c.Ly)
	}
	if !(c.Alpha > 0) {
		return fmt.Errorf("%w: alpha must be positive, got %g", ErrInvalidConfig, c.Alpha)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, c.Workers)
	}

	impl := c.Implementation
	if _, ok := stencil.Lookup(impl); ok ||
		strings.EqualFold(impl, DeviceImplementation) || strings.EqualFold(impl, AllImplementations) {
		return nil
	}
	return fmt.Errorf("%w: unknown implementation %q (want serial, parallel, forkjoin, %s or %s)",
		ErrInvalidConfig, impl, DeviceImplementation, AllImplementations)
}

// FieldConfig returns the grid parameters
func (c *Config) FieldConfig() field.Config {
	return field.Config{Nx: c.Nx, Ny: c.Ny, Lx: c.Lx, Ly: c.Ly, Alpha: c.Alpha}
}

// OutputPath joins name onto OutputDir
func (c *Config) OutputPath(name string) string {
	return filepath.Join(c.OutputDir, name)
}
