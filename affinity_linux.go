package posecapture

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"syscall"
	"unsafe"
)

// maxPinPasses bounds how often the thread list is re-read while the runtime
// is still starting threads
const maxPinPasses = 10

// SetCPUAffinity sets the CPU Affinity mask of every thread of the program to
// run on the specified cores.  Threads started afterwards inherit the mask.
func SetCPUAffinity(mask uintptr) error {

	pinned := make(map[int]bool)

	for pass := 0; pass < maxPinPasses; pass++ {
		tids, err := threadIDs()

		if err != nil {
			return fmt.Errorf("failed to set CPU affinity: %w", err)
		}

		added := false

		for _, tid := range tids {
			if pinned[tid] {
				continue
			}

			err := setThreadAffinity(tid, mask)

			// thread exited after it was listed
			if errors.Is(err, syscall.ESRCH) {
				continue
			}

			if err != nil {
				return fmt.Errorf("failed to set CPU affinity: %w", err)
			}

			pinned[tid] = true
			added = true
		}

		// a pass without new threads means none escaped the mask
		if !added {
			return nil
		}
	}

	return nil
}

// GetCPUAffinity gets the CPU Affinity mask of the calling thread
func GetCPUAffinity() (uintptr, error) {

	mask, err := threadAffinity(0)

	if err != nil {
		return 0, fmt.Errorf("failed to get CPU affinity: %w", err)
	}

	return mask, nil
}

// threadIDs lists the OS threads of the program
func threadIDs() ([]int, error) {

	entries, err := os.ReadDir("/proc/self/task")

	if err != nil {
		return nil, err
	}

	tids := make([]int, 0, len(entries))

	for _, e := range entries {
		tid, err := strconv.Atoi(e.Name())

		if err != nil {
			continue
		}

		tids = append(tids, tid)
	}

	return tids, nil
}

func setThreadAffinity(tid int, mask uintptr) error {

	_, _, errno := syscall.RawSyscall(syscall.SYS_SCHED_SETAFFINITY, uintptr(tid),
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	if errno != 0 {
		return errno
	}

	return nil
}

// threadAffinity returns the mask of the given thread, 0 is the calling thread
func threadAffinity(tid int) (uintptr, error) {

	var mask uintptr

	_, _, errno := syscall.RawSyscall(syscall.SYS_SCHED_GETAFFINITY, uintptr(tid),
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	if errno != 0 {
		return 0, errno
	}

	return mask, nil
}
