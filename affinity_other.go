//go:build !linux

package posecapture

import "errors"

var errAffinityUnsupported = errors.New("CPU affinity is only supported on linux")

// SetCPUAffinity is not supported on this platform
func SetCPUAffinity(mask uintptr) error {
	return errAffinityUnsupported
}

// GetCPUAffinity is not supported on this platform
func GetCPUAffinity() (uintptr, error) {
	return 0, errAffinityUnsupported
}
