package vkusage

import (
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// cpuFrame correlates a logical frame's wall-clock CPU duration with its
// serial. GPU results for the same serial arrive frameLag frames later and
// look the sample up by serial.
type cpuFrame struct {
	serial   uint64
	duration time.Duration
}

// Context is the per-device sampler instance. One is created when the shim
// learns the device and queue family, and destroyed exactly once at teardown.
// A Context created without the required capabilities is inert: every entry
// point degrades to pass-through and Metrics never reports a value.
type Context struct {
	disp        Dispatch
	caps        capability
	queueFamily uint32
	inert       bool
	now         func() time.Time

	guard       *lifetimeGuard
	frameSerial atomic.Uint64
	backoff     backoff

	// mu is the state lock: slot metadata, cursors and mode transitions.
	// Critical sections stay short; query readback and command recording
	// happen outside it.
	mu          sync.Mutex
	ring        *slotRing
	ringBusy    int
	ringDoomed  bool
	readSerial  uint64
	lastPresent time.Time
	cpuFrames   [cpuSampleSlots]cpuFrame

	// recMu serializes command recording against other recorders; driver
	// recording entry points are not assumed thread-safe. Never held
	// together with mu.
	recMu sync.Mutex

	agg aggregator
}

// Create builds a sampler for the given device. It fails closed: on any
// missing capability (or without the process opt-in) the returned Context is
// inert but still safe to use from every hook.
func Create(devCaps DeviceCaps, disp Dispatch) *Context {
	c := &Context{
		disp:        disp,
		queueFamily: devCaps.QueueFamily,
		guard:       newLifetimeGuard(),
		now:         time.Now,
	}
	for i := range c.cpuFrames {
		c.cpuFrames[i].serial = emptySerial
	}

	caps, err := resolveCapability(devCaps, &disp)
	if err != nil {
		log.Printf("vkusage: instrumentation unavailable: %v", err)
		c.inert = true
		return c
	}
	c.caps = caps
	log.Printf("vkusage: instrumenting queue family %d (period %.3fns, %d valid bits)",
		devCaps.QueueFamily, caps.periodNs, caps.validBits)
	return c
}

// Destroy waits for all in-flight calls to finish and releases every owned
// resource. Entry points invoked during or after Destroy short-circuit to
// pass-through. Calling Destroy again is a no-op.
func (c *Context) Destroy() {
	c.guard.shutdown()

	c.mu.Lock()
	if c.ring != nil {
		c.ring.destroy(&c.disp)
		c.ring = nil
	}
	c.mu.Unlock()
}

// Metrics returns the latest aggregated snapshot. It reports false until the
// first aggregation window completes, and again once the sampler has been
// disabled by a fatal device error.
func (c *Context) Metrics() (Metrics, bool) {
	if !c.guard.enter() {
		return Metrics{}, false
	}
	defer c.guard.exit()

	if c.inert || c.backoff.mode() == modeDisabled {
		return Metrics{}, false
	}
	return c.agg.snapshot()
}

// initRingLocked lazily creates the slot ring on the first instrumented
// submission. Creation failure disables the sampler permanently rather than
// retrying a failing driver on the hot path.
func (c *Context) initRingLocked() bool {
	if c.ring != nil {
		return true
	}
	r, err := newSlotRing(&c.disp, c.queueFamily)
	if err != nil {
		log.Printf("vkusage: disabling instrumentation: %v", err)
		c.backoff.disable()
		return false
	}
	c.ring = r
	return true
}

// pinSlotLocked marks a slot as referenced by an in-flight call so it cannot
// be recycled or freed underneath it.
func (c *Context) pinSlotLocked(s *frameSlot) {
	s.inUse++
	c.ringBusy++
}

// releaseSlotLocked drops a pin and finishes a deferred teardown once the
// last in-flight reference is gone.
func (c *Context) releaseSlotLocked(s *frameSlot) {
	s.inUse--
	c.ringBusy--
	if c.ringDoomed && c.ringBusy == 0 && c.ring != nil {
		c.ring.destroy(&c.disp)
		c.ring = nil
		c.ringDoomed = false
	}
}

// loseDeviceLocked handles a fatal device loss: the sampler is disabled for
// the rest of the Context's lifetime and the owned resources are torn down as
// soon as no in-flight call references them.
func (c *Context) loseDeviceLocked() {
	if c.backoff.mode() == modeDisabled && c.ring == nil {
		return
	}
	log.Printf("vkusage: device lost, disabling instrumentation permanently")
	c.backoff.disable()
	if c.ring == nil {
		return
	}
	if c.ringBusy == 0 {
		c.ring.destroy(&c.disp)
		c.ring = nil
	} else {
		c.ringDoomed = true
	}
}

// suspendLocked enters Suspended and abandons the drain backlog: the read
// cursor jumps forward to the current serial rather than chasing slots that
// already went stale.
func (c *Context) suspendLocked(now time.Time) {
	c.backoff.suspend(now)
	c.readSerial = c.frameSerial.Load()
}
