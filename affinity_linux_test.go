package posecapture

import (
	"errors"
	"runtime"
	"sync"
	"syscall"
	"testing"
)

func TestSetCPUAffinityPinsAllThreads(t *testing.T) {

	orig, err := GetCPUAffinity()

	if err != nil {
		t.Fatalf("GetCPUAffinity failed: %v", err)
	}

	defer SetCPUAffinity(orig)

	// make sure the runtime has started several threads
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			syscall.Getpid()
		}()
	}

	wg.Wait()

	// lowest core currently allowed
	mask := orig & -orig

	if err := SetCPUAffinity(mask); err != nil {
		t.Fatalf("SetCPUAffinity failed: %v", err)
	}

	tids, err := threadIDs()

	if err != nil {
		t.Fatalf("threadIDs failed: %v", err)
	}

	if len(tids) < 2 {
		t.Fatalf("expected several threads, got %d", len(tids))
	}

	for _, tid := range tids {
		got, err := threadAffinity(tid)

		if errors.Is(err, syscall.ESRCH) {
			continue
		}

		if err != nil {
			t.Fatalf("thread %d: %v", tid, err)
		}

		if got != mask {
			t.Errorf("thread %d: expected mask %b, got %b", tid, mask, got)
		}
	}
}
