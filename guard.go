package posecapture

import "sync/atomic"

// Guard is a non-blocking busy flag.  TryEnter and Exit bracket a region
// that at most one goroutine may occupy, callers that fail to enter skip
// the work instead of waiting.
type Guard struct {
	busy atomic.Bool
}

// TryEnter atomically sets the flag and reports if it was previously clear
func (g *Guard) TryEnter() bool {
	return g.busy.CompareAndSwap(false, true)
}

// Exit clears the flag
func (g *Guard) Exit() {
	g.busy.Store(false)
}

// Busy reports if the guarded region is occupied
func (g *Guard) Busy() bool {
	return g.busy.Load()
}
