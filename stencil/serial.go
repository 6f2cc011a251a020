package stencil

import "github.com/notargets/HeatKernel/field"

// Serial is the single-goroutine reference implementation
type Serial struct{}

func NewSerial() *Serial {
	return &Serial{}
}

func (s *Serial) Step(f *field.Field) error {
	NewKernel(f).Update(0, f.InteriorCells())
	return nil
}

func (s *Serial) Label() string { return SerialName }

func (s *Serial) Workers() int { return 1 }

func (s *Serial) Close() {}
