package occa

import (
	"strings"

	"github.com/notargets/HeatKernel/stencil"
)

// AllImplementations is the run order used for comparisons. The first entry
// is the reference the others are compared against.
func AllImplementations() []string {
	return append(append([]string{}, stencil.Names...), Name)
}

// NewByName returns the stepper named impl. CPU names and aliases are
// handled by stencil.New; "occa" opens a device from deviceProps (empty for
// the first available backend).
func NewByName(impl string, workers int, deviceProps string) (stencil.Stepper, error) {
	if strings.EqualFold(impl, Name) {
		s, err := Open(deviceProps)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return stencil.New(impl, workers)
}
