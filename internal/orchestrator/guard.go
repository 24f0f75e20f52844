package orchestrator

// RunGuard is a single-slot semaphore over "a pass is running". It is
// owned by whoever triggers passes (the scheduler, or a one-shot CLI
// command) and passed into each pass explicitly. A trigger that cannot
// acquire the slot skips its pass; passes are never queued, so external
// writes and browser sessions never overlap.
type RunGuard struct {
	slot chan struct{}
}

func NewRunGuard() *RunGuard {
	g := &RunGuard{slot: make(chan struct{}, 1)}
	g.slot <- struct{}{}
	return g
}

// TryAcquire claims the slot without blocking.
func (g *RunGuard) TryAcquire() bool {
	select {
	case <-g.slot:
		return true
	default:
		return false
	}
}

// Release returns the slot. Must follow a successful TryAcquire.
func (g *RunGuard) Release() {
	select {
	case g.slot <- struct{}{}:
	default:
	}
}
