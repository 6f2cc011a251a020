package occa

import (
	"fmt"

	"github.com/notargets/gocca"

	"github.com/notargets/HeatKernel/utils"
)

// Backends lists the device properties tried by CreateDevice, fastest first
var Backends = []string{
	`{"mode": "OpenMP"}`,
	`{"mode": "CUDA", "device_id": 0}`,
	`{"mode": "Serial"}`,
}

// CreateDevice opens the device described by props. An empty props string
// walks Backends and returns the first device that opens.
func CreateDevice(props string) (*gocca.OCCADevice, error) {
	candidates := Backends
	if props != "" {
		candidates = []string{props}
	}

	var lastErr error
	for _, p := range candidates {
		device, err := gocca.NewDevice(p)
		if err == nil {
			utils.Logf("created %s device", device.Mode())
			return device, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no OCCA device available: %w", lastErr)
}

// CreateTestDevice creates a Device for testing, preferring parallel backends
func CreateTestDevice() *gocca.OCCADevice {
	device, err := CreateDevice("")
	if err != nil {
		// Serial is always built into OCCA
		panic(err)
	}
	return device
}
