package vkusage

import (
	"sync/atomic"
	"time"
)

// mode is the instrumentation backoff state. The value is read lock-free on
// the submission fast path; transitions happen under the Context state lock.
type mode int32

const (
	// modeActive: instrumenting normally.
	modeActive mode = iota
	// modeSuspended: not instrumenting new frames, still draining backlog
	// and periodically probing for recovery.
	modeSuspended
	// modeDisabled: permanently off for this Context's lifetime.
	modeDisabled
)

func (m mode) String() string {
	switch m {
	case modeActive:
		return "active"
	case modeSuspended:
		return "suspended"
	case modeDisabled:
		return "disabled"
	}
	return "unknown"
}

// backoff demotes the sampler under repeated failures and promotes it back
// after a cooldown and a drained backlog. All methods except mode must be
// called under the owning Context's state lock.
type backoff struct {
	state atomic.Int32

	cooldownUntil time.Time
	lastProbe     time.Time
	notReady      int
}

func (b *backoff) mode() mode { return mode(b.state.Load()) }

// suspend enters the Suspended state with a fresh cooldown. Disabled is
// sticky.
func (b *backoff) suspend(now time.Time) {
	if b.mode() == modeDisabled {
		return
	}
	b.state.Store(int32(modeSuspended))
	b.cooldownUntil = now.Add(suspendCooldown)
	b.lastProbe = time.Time{}
	b.notReady = 0
}

// disable turns the sampler off for good.
func (b *backoff) disable() {
	b.state.Store(int32(modeDisabled))
	b.notReady = 0
}

// resume returns to Active after a successful recovery.
func (b *backoff) resume() {
	if b.mode() != modeSuspended {
		return
	}
	b.state.Store(int32(modeActive))
	b.notReady = 0
}

// noteNotReady counts a consecutive not-ready readback and reports whether
// the streak exceeded the limit (a slot that never becomes available, for
// example a stalled driver).
func (b *backoff) noteNotReady() bool {
	b.notReady++
	return b.notReady > notReadyLimit
}

func (b *backoff) resetNotReady() { b.notReady = 0 }

// probeDue rate-limits recovery probing while Suspended. It records the probe
// time on success so a hot present loop cannot spin on the driver.
func (b *backoff) probeDue(now time.Time) bool {
	if b.mode() != modeSuspended {
		return false
	}
	if !b.lastProbe.IsZero() && now.Sub(b.lastProbe) < probeInterval {
		return false
	}
	b.lastProbe = now
	return true
}

// cooldownOver reports whether enough time has passed since suspension for a
// resume to be considered.
func (b *backoff) cooldownOver(now time.Time) bool {
	return !now.Before(b.cooldownUntil)
}
