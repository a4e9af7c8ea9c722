package vkusage

import "time"

// Upper bound on a single frame's believable busy time. A drained value past
// this is a malformed readback, not a measurement.
const maxBelievableBusy = 10 * time.Second

// drainOutcome classifies one readback attempt.
type drainOutcome int

const (
	drainReady drainOutcome = iota
	drainNotReady
	drainError
	drainDeviceLost
)

// OnPresent is the presentation hook. It advances the frame serial, records
// the frame's CPU duration, drains at most one eligible slot and feeds the
// aggregator. It never fails the host's present call.
func (c *Context) OnPresent(queue Queue, queueFamily uint32, info PresentInfo) {
	_ = queue
	_ = queueFamily
	_ = info

	if !c.guard.enter() {
		return
	}
	defer c.guard.exit()

	serial := c.frameSerial.Add(1) - 1
	now := c.now()

	c.mu.Lock()
	if !c.lastPresent.IsZero() {
		c.cpuFrames[serial%cpuSampleSlots] = cpuFrame{
			serial:   serial,
			duration: now.Sub(c.lastPresent),
		}
	}
	c.lastPresent = now

	if c.inert || c.ring == nil || c.backoff.mode() == modeDisabled {
		c.mu.Unlock()
		return
	}

	slot := c.eligibleSlotLocked(serial, now)
	if slot == nil {
		c.mu.Unlock()
		return
	}

	// Snapshot what to read and pin the slot so it cannot be recycled while
	// the readback runs without the lock.
	pool := c.ring.pool
	base := slot.queryBase
	used := slot.queryUsed
	valid := slot.validPairs
	slotSerial := slot.serial
	c.pinSlotLocked(slot)
	c.mu.Unlock()

	// The driver readback may block; it runs outside the state lock.
	results := make([]TimestampResult, used)
	rc := c.disp.GetQueryPoolResults(pool, base, used, results)

	outcome, busy := classifyDrain(rc, valid, results, c.caps.tickMask)
	gpuMs := float64(busy) * c.caps.periodNs / 1e6
	// Compared in float space: converting garbage ticks to a Duration first
	// can overflow int64 and slip past the very check meant to reject them.
	if outcome == drainReady && gpuMs > maxBelievableBusy.Seconds()*1e3 {
		outcome = drainError
	}

	c.mu.Lock()
	c.releaseSlotLocked(slot)
	if slot.serial != slotSerial || c.backoff.mode() == modeDisabled {
		// The slot moved on (or the sampler died) while we were reading;
		// whatever we fetched describes a frame that no longer exists.
		c.finishPresentLocked(now)
		c.mu.Unlock()
		return
	}

	var cpu cpuFrame
	switch outcome {
	case drainReady:
		cpu = c.cpuFrames[slotSerial%cpuSampleSlots]
		slot.consume()
		c.advanceReadLocked(slotSerial)
		c.backoff.resetNotReady()
	case drainNotReady:
		// Leave the slot untouched; the next present retries it.
		if c.backoff.noteNotReady() {
			c.suspendLocked(now)
		}
	case drainError:
		slot.consume()
		c.advanceReadLocked(slotSerial)
		c.suspendLocked(now)
	case drainDeviceLost:
		c.loseDeviceLocked()
	}
	c.finishPresentLocked(now)
	c.mu.Unlock()

	if outcome == drainReady && cpu.serial == slotSerial {
		c.agg.add(float64(cpu.duration)/float64(time.Millisecond), gpuMs, now)
	}
}

// eligibleSlotLocked picks at most one slot to drain. Active mode drains
// strictly oldest-first at a lag of frameLag frames so slots are consumed in
// FIFO order. Suspended mode probes at a limited rate and takes any slot with
// unread queries, oldest first, to clear the backlog; once the backlog is
// empty and the cooldown has passed the sampler resumes.
func (c *Context) eligibleSlotLocked(serial uint64, now time.Time) *frameSlot {
	switch c.backoff.mode() {
	case modeActive:
		var best *frameSlot
		for i := range c.ring.slots {
			s := &c.ring.slots[i]
			if !s.hasQueries || s.inUse > 0 || s.serial == emptySerial {
				continue
			}
			if s.serial < c.readSerial || s.serial+frameLag > serial {
				continue
			}
			if best == nil || s.serial < best.serial {
				best = s
			}
		}
		return best

	case modeSuspended:
		if !c.backoff.probeDue(now) {
			return nil
		}
		var best *frameSlot
		backlog := false
		for i := range c.ring.slots {
			s := &c.ring.slots[i]
			if !s.hasQueries {
				continue
			}
			backlog = true
			if s.inUse > 0 {
				continue
			}
			if best == nil || s.serial < best.serial {
				best = s
			}
		}
		if !backlog && c.backoff.cooldownOver(now) {
			c.backoff.resume()
			c.readSerial = serial
		}
		return best
	}
	return nil
}

// finishPresentLocked re-checks the recovery condition after a drain so a
// probe that just cleared the last backlog slot can resume without waiting
// for another present.
func (c *Context) finishPresentLocked(now time.Time) {
	if c.backoff.mode() != modeSuspended || !c.backoff.cooldownOver(now) {
		return
	}
	if c.ring == nil {
		return
	}
	for i := range c.ring.slots {
		if c.ring.slots[i].hasQueries {
			return
		}
	}
	c.backoff.resume()
	c.readSerial = c.frameSerial.Load()
}

func (c *Context) advanceReadLocked(drained uint64) {
	if drained >= c.readSerial {
		c.readSerial = drained + 1
	}
}

// classifyDrain turns a raw readback into an outcome and, when Ready, the
// busy tick count for the slot's committed pairs. Pairs that were reserved
// but rolled back are ignored entirely; a committed pair that is not yet
// available makes the whole slot NotReady.
func classifyDrain(rc Result, valid uint32, results []TimestampResult, mask uint64) (drainOutcome, uint64) {
	switch {
	case rc == ErrDeviceLost:
		return drainDeviceLost, 0
	case rc == NotReady:
		return drainNotReady, 0
	case rc.Failed():
		return drainError, 0
	}

	var starts, ends []uint64
	for pair := 0; pair < len(results)/2; pair++ {
		if valid&(1<<pair) == 0 {
			continue
		}
		begin, end := results[2*pair], results[2*pair+1]
		if !begin.Available || !end.Available {
			return drainNotReady, 0
		}
		starts = append(starts, begin.Ticks&mask)
		ends = append(ends, end.Ticks&mask)
	}
	return drainReady, busyTicks(starts, ends, mask)
}
