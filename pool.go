package charsheet

import (
	"context"
	"runtime"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one tab can render.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent tabs to bound browser memory.
	MaxPoolSize = 8

	// cpuDivisor leaves headroom for Chrome child processes.
	cpuDivisor = 2
)

// tabPool bounds the number of tabs rendering at once on the shared
// browser.
type tabPool struct {
	sem chan struct{}
}

func newTabPool(n int) *tabPool {
	if n < MinPoolSize {
		n = MinPoolSize
	}
	return &tabPool{sem: make(chan struct{}, n)}
}

// acquire blocks until a tab slot is free or ctx is done.
func (p *tabPool) acquire(ctx context.Context) error {
	select {
	case p.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// release frees a slot taken by acquire.
func (p *tabPool) release() {
	<-p.sem
}

// size returns the pool capacity.
func (p *tabPool) size() int {
	return cap(p.sem)
}

// inUse returns the number of held slots.
func (p *tabPool) inUse() int {
	return len(p.sem)
}

// ResolvePoolSize determines the number of concurrent tabs.
// Priority: explicit workers > GOMAXPROCS-based calculation.
// Exported for use by servers and CLIs.
func ResolvePoolSize(workers int) int {
	if workers > 0 {
		return workers
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers
	available := runtime.GOMAXPROCS(0)
	n := available / cpuDivisor

	if n < MinPoolSize {
		return MinPoolSize
	}
	if n > MaxPoolSize {
		return MaxPoolSize
	}
	return n
}
