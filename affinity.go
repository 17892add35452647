package posecapture

import (
	"fmt"
	"unsafe"
)

// maxCores is the number of cores addressable by a single word mask
const maxCores = int(unsafe.Sizeof(uintptr(0)) * 8)

// CPUCoreMask calculates the core mask by passing in the CPU core numbers as a
// slice, eg: []int{4,5,6,7}
func CPUCoreMask(cores []int) (uintptr, error) {

	var mask uintptr

	for _, core := range cores {
		if core < 0 || core >= maxCores {
			return 0, fmt.Errorf("invalid CPU core %d, must be 0-%d",
				core, maxCores-1)
		}

		mask |= 1 << core
	}

	return mask, nil
}

// PinCores restricts every thread of the program to the given CPU cores, an
// empty list leaves the affinity unchanged
func PinCores(cores []int) error {

	if len(cores) == 0 {
		return nil
	}

	mask, err := CPUCoreMask(cores)

	if err != nil {
		return err
	}

	return SetCPUAffinity(mask)
}
