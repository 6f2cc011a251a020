package occa

import (
	"fmt"
	"unsafe"

	"github.com/notargets/gocca"

	"github.com/notargets/HeatKernel/field"
	"github.com/notargets/HeatKernel/partitions"
	"github.com/notargets/HeatKernel/stencil"
)

var (
	_ stencil.Stepper  = (*Stepper)(nil)
	_ stencil.Advancer = (*Stepper)(nil)
	_ stencil.Preparer = (*Stepper)(nil)
)

// Name is the implementation label reported for device runs
const Name = "OCCA"

// TargetPartitionSize keeps KpartMax within one CUDA thread block
const TargetPartitionSize = 1024

// Stepper runs the stencil kernel on an OCCA device. The kernel is compiled
// for a fixed grid shape, so the first Step or Advance on a field of a new
// shape rebuilds it and reallocates device memory.
type Stepper struct {
	Device     *gocca.OCCADevice
	ownsDevice bool

	Layout *partitions.Layout
	nx, ny int

	kernel    *gocca.OCCAKernel
	kMem      *gocca.OCCAMemory
	startMem  *gocca.OCCAMemory
	u, uNew   *gocca.OCCAMemory
	gridBytes int64

	// field whose current buffer Prepare uploaded to u and uNew
	staged *field.Field
}

// NewStepper runs on an existing device, which the caller still owns
func NewStepper(device *gocca.OCCADevice) *Stepper {
	if device == nil {
		panic("occa: nil device")
	}
	return &Stepper{Device: device}
}

// Open creates a device from props (empty for the first available backend)
// and returns a Stepper that frees it on Close
func Open(props string) (*Stepper, error) {
	device, err := CreateDevice(props)
	if err != nil {
		return nil, err
	}
	s := NewStepper(device)
	s.ownsDevice = true
	return s, nil
}

// prepare builds the kernel and device buffers for f's shape
func (s *Stepper) prepare(f *field.Field) error {
	if s.kernel != nil && s.nx == f.Nx && s.ny == f.Ny {
		return nil
	}
	s.release()

	pb := &partitions.Builder{
		Total:               f.InteriorCells(),
		TargetPartitionSize: TargetPartitionSize,
	}
	layout, err := pb.BuildPartitions()
	if err != nil {
		return fmt.Errorf("failed to partition %dx%d interior: %w", f.Nx, f.Ny, err)
	}

	pre := Preamble{
		Nx:            f.Nx,
		Ny:            f.Ny,
		NumPartitions: layout.NumPartitions,
		KpartMax:      layout.KpartMax,
	}
	source := pre.Generate() + StencilKernel

	var kernel *gocca.OCCAKernel
	if s.Device.Mode() == "OpenMP" {
		// OpenMP builds do not get -O3 by default
		props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
		defer props.Free()
		kernel, err = s.Device.BuildKernelFromString(source, StencilKernelName, props)
	} else {
		kernel, err = s.Device.BuildKernelFromString(source, StencilKernelName, nil)
	}
	if err != nil {
		return fmt.Errorf("failed to build kernel %s: %w", StencilKernelName, err)
	}
	if kernel == nil {
		return fmt.Errorf("kernel build returned nil for %s", StencilKernelName)
	}

	counts := layout.Counts()
	starts := layout.Starts()
	idxBytes := int64(len(counts) * 8)

	s.kernel = kernel
	s.kMem = s.Device.Malloc(idxBytes, unsafe.Pointer(&counts[0]), nil)
	s.startMem = s.Device.Malloc(idxBytes, unsafe.Pointer(&starts[0]), nil)

	s.gridBytes = int64(f.Nx * f.Ny * 8)
	s.u = s.Device.Malloc(s.gridBytes, nil, nil)
	s.uNew = s.Device.Malloc(s.gridBytes, nil, nil)

	s.Layout = layout
	s.nx, s.ny = f.Nx, f.Ny
	return nil
}

func (s *Stepper) run(f *field.Field, u, uNew *gocca.OCCAMemory) error {
	err := s.kernel.RunWithArgs(s.kMem, s.startMem, u, uNew,
		f.Dx*f.Dx, f.Dy*f.Dy, f.Alpha*f.Dt)
	if err != nil {
		return fmt.Errorf("kernel %s failed: %w", StencilKernelName, err)
	}
	return nil
}

// upload copies the field's current buffer into both device buffers
func (s *Stepper) upload(f *field.Field) {
	cur := f.Current()
	s.u.CopyFrom(unsafe.Pointer(&cur[0]), s.gridBytes)
	s.uNew.CopyFrom(unsafe.Pointer(&cur[0]), s.gridBytes)
}

// Prepare compiles the kernel for f's shape, allocates device memory and
// uploads the current buffer, so that a following Advance only launches
// kernels. The boundary ring of f must already be synced.
func (s *Stepper) Prepare(f *field.Field) error {
	if err := s.prepare(f); err != nil {
		return err
	}
	s.upload(f)
	s.Device.Finish()
	s.staged = f
	return nil
}

// Step uploads both buffers, runs one update and downloads next. It keeps
// the host-side Stepper contract; Advance avoids the per-step transfers.
func (s *Stepper) Step(f *field.Field) error {
	if err := s.prepare(f); err != nil {
		return err
	}
	s.staged = nil
	cur, next := f.Current(), f.Next()
	s.u.CopyFrom(unsafe.Pointer(&cur[0]), s.gridBytes)
	s.uNew.CopyFrom(unsafe.Pointer(&next[0]), s.gridBytes)

	if err := s.run(f, s.u, s.uNew); err != nil {
		return err
	}
	s.Device.Finish()

	s.uNew.CopyTo(unsafe.Pointer(&next[0]), s.gridBytes)
	return nil
}

// Advance keeps the field resident on the device for all steps, swapping
// the device buffers between launches, and copies the result back into the
// field's current buffer. The caller must have synced the boundary ring.
// The upload is skipped when Prepare staged the same field.
func (s *Stepper) Advance(f *field.Field, steps int) error {
	if steps <= 0 {
		return nil
	}
	if err := s.prepare(f); err != nil {
		return err
	}

	if s.staged != f {
		s.upload(f)
	}
	s.staged = nil

	u, uNew := s.u, s.uNew
	for n := 0; n < steps; n++ {
		if err := s.run(f, u, uNew); err != nil {
			return fmt.Errorf("step %d: %w", n, err)
		}
		u, uNew = uNew, u
	}
	s.Device.Finish()

	cur := f.Current()
	u.CopyTo(unsafe.Pointer(&cur[0]), s.gridBytes)
	return nil
}

func (s *Stepper) Label() string { return Name }

// Workers reports the number of @outer partitions of the last layout
func (s *Stepper) Workers() int {
	if s.Layout == nil {
		return 1
	}
	return s.Layout.NumPartitions
}

// Mode returns the OCCA backend name, e.g. "OpenMP" or "CUDA"
func (s *Stepper) Mode() string { return s.Device.Mode() }

func (s *Stepper) release() {
	if s.kernel != nil {
		s.kernel.Free()
	}
	for _, mem := range []*gocca.OCCAMemory{s.kMem, s.startMem, s.u, s.uNew} {
		if mem != nil {
			mem.Free()
		}
	}
	s.kernel, s.kMem, s.startMem, s.u, s.uNew = nil, nil, nil, nil, nil
	s.Layout = nil
	s.staged = nil
}

// Close releases device memory and the kernel, and the device when the
// Stepper opened it
func (s *Stepper) Close() {
	s.release()
	if s.ownsDevice && s.Device != nil {
		s.Device.Free()
		s.Device = nil
	}
}
