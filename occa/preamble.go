package occa

import (
	"fmt"
	"strings"
)

// Preamble holds the compile-time constants baked into the stencil kernel
type Preamble struct {
	Nx, Ny        int
	NumPartitions int
	KpartMax      int
}

// Generate returns the kernel preamble: type definitions, grid and
// partition constants, and the row-major index macro
func (p Preamble) Generate() string {
	var sb strings.Builder

	sb.WriteString("typedef double real_t;\n")
	sb.WriteString("typedef long int_t;\n")
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("#define NX %d\n", p.Nx))
	sb.WriteString(fmt.Sprintf("#define NY %d\n", p.Ny))
	sb.WriteString(fmt.Sprintf("#define NYI %d\n", p.Ny-2))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("#define NPART %d\n", p.NumPartitions))
	sb.WriteString(fmt.Sprintf("#define KpartMax %d\n", p.KpartMax))
	sb.WriteString("\n")

	sb.WriteString("#define IDX(i, j) ((i) * NY + (j))\n")
	sb.WriteString("\n")

	return sb.String()
}

// StencilKernelName is the entry point in StencilKernel
const StencilKernelName = "heatStep"

// StencilKernel computes uNew from u for every interior cell. Each @outer
// iteration owns one contiguous run of the flattened interior index.
const StencilKernel = `
@kernel void heatStep(
    const int_t* K,        // cells per partition
    const int_t* Start,    // first flattened index per partition
    const real_t* u,
    real_t* uNew,
    const real_t dx2,
    const real_t dy2,
    const real_t alphaDt
) {
    for (int part = 0; part < NPART; ++part; @outer) {
        for (int t = 0; t < KpartMax; ++t; @inner) {
            if (t < K[part]) {
                const int_t k = Start[part] + t;
                const int_t i = 1 + k / NYI;
                const int_t j = 1 + k % NYI;
                const int_t c = IDX(i, j);

                const real_t uxx = (u[c + NY] - 2.0*u[c] + u[c - NY]) / dx2;
                const real_t uyy = (u[c + 1] - 2.0*u[c] + u[c - 1]) / dy2;
                uNew[c] = u[c] + alphaDt*(uxx + uyy);
            }
        }
    }
}
`
