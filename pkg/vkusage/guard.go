package vkusage

import (
	"sync"
	"sync/atomic"
)

// lifetimeGuard reference-counts in-flight entry points so teardown can wait
// until no caller is touching the owned resources. enter/exit are lock-free;
// shutdown flips the destroying flag (making every subsequent entry
// short-circuit to pass-through) and blocks until the count drains.
type lifetimeGuard struct {
	calls      atomic.Int64
	destroying atomic.Bool

	drained   chan struct{}
	closeOnce sync.Once
}

func newLifetimeGuard() *lifetimeGuard {
	return &lifetimeGuard{drained: make(chan struct{})}
}

// enter registers an in-flight call. It returns false when the context is
// being destroyed; the caller must then fall through without touching owned
// resources and without calling exit.
func (g *lifetimeGuard) enter() bool {
	g.calls.Add(1)
	if g.destroying.Load() {
		g.exit()
		return false
	}
	return true
}

func (g *lifetimeGuard) exit() {
	if g.calls.Add(-1) == 0 && g.destroying.Load() {
		g.closeOnce.Do(func() { close(g.drained) })
	}
}

// shutdown blocks until every in-flight call has exited. Safe to call more
// than once.
func (g *lifetimeGuard) shutdown() {
	g.destroying.Store(true)
	if g.calls.Load() == 0 {
		g.closeOnce.Do(func() { close(g.drained) })
	}
	<-g.drained
}
