package vkusage

import "errors"

// markerJob is one reserved marker pair waiting to be recorded: the batch it
// brackets, its query pair index and the two command buffers.
type markerJob struct {
	batch int
	query uint32
	pair  markerPair
}

// reservation is the transactional lease produced under the state lock. It
// remembers exactly what was reserved so a rollback can restore the slot to
// its pre-reservation state, and nothing else.
type reservation struct {
	slot     *frameSlot
	serial   uint64
	prevUsed uint32
	prevHas  bool
	jobs     []markerJob
}

// WrapSubmit has the same contract as the underlying single-batch submission
// call. When instrumentation is possible this frame, each eligible sub-batch
// gains a begin marker prepended and an end marker appended; on any
// instrumentation failure the original batches are submitted unchanged, so
// the host-visible semantics never change.
func (c *Context) WrapSubmit(queue Queue, queueFamily uint32, batches []Batch, fence Fence) Result {
	return wrapSubmit(c, queueFamily, batches, func(b []Batch) Result {
		return c.disp.QueueSubmit(queue, b, fence)
	})
}

// WrapSubmit2 is the equivalent wrapper for the newer multi-batch submission
// shape. It shares the instrumentation core with WrapSubmit.
func (c *Context) WrapSubmit2(queue Queue, queueFamily uint32, batches []Batch2, fence Fence) Result {
	if c.disp.QueueSubmit2 == nil {
		return ErrInitializationFailed
	}
	return wrapSubmit(c, queueFamily, batches, func(b []Batch2) Result {
		return c.disp.QueueSubmit2(queue, b, fence)
	})
}

func totalCommands[B submitBatch[B]](batches []B) int {
	n := 0
	for _, b := range batches {
		n += b.commandCount()
	}
	return n
}

// wrapSubmit is the shared submission path. The protocol runs in three
// phases: reserve under the state lock, record markers under the recording
// lock, submit, then commit or roll back under the state lock again. The
// expensive recording work never holds the state lock, so concurrent
// submissions from other threads are not blocked by it.
func wrapSubmit[B submitBatch[B]](c *Context, queueFamily uint32, batches []B, enqueue func([]B) Result) Result {
	if !c.guard.enter() {
		return enqueue(batches)
	}
	defer c.guard.exit()

	// Lock-free fast path: anything that rules out instrumentation this
	// frame falls straight through to the real submission.
	if c.inert || c.backoff.mode() != modeActive {
		return enqueue(batches)
	}
	serial := c.frameSerial.Load()
	if serial&1 == 1 {
		// Only every other frame is sampled; odd frames pass through
		// without taking any lock.
		return enqueue(batches)
	}
	if queueFamily != c.queueFamily {
		return enqueue(batches)
	}
	if len(batches) == 0 || len(batches) > maxSubmitBatches {
		return enqueue(batches)
	}
	if totalCommands(batches)+2*maxPairsPerFrame > maxInjectedCommands {
		return enqueue(batches)
	}

	// Phase 1: reserve marker pairs under the state lock.
	c.mu.Lock()
	if c.backoff.mode() != modeActive || !c.initRingLocked() {
		c.mu.Unlock()
		return enqueue(batches)
	}
	slot, ok, droppedStale := c.ring.acquire(serial)
	if droppedStale {
		// Undrained data older than a full ring lap was just thrown away to
		// keep the ring live. Back off instead of instrumenting on top of a
		// collector that cannot keep up.
		c.suspendLocked(c.now())
		c.mu.Unlock()
		return enqueue(batches)
	}
	if !ok {
		c.mu.Unlock()
		return enqueue(batches)
	}
	res := planReservation(slot, serial, batches)
	if res == nil {
		c.mu.Unlock()
		return enqueue(batches)
	}
	pool := c.ring.pool
	c.pinSlotLocked(slot)
	c.mu.Unlock()

	augmented := buildAugmented(batches, res)

	// Phase 2: record the marker command buffers outside the state lock,
	// serialized against other recorders.
	recordErr := c.recordMarkers(pool, res)

	var rc Result
	instrumented := false
	switch {
	case recordErr != nil:
		rc = enqueue(batches)
	default:
		rc = enqueue(augmented)
		switch {
		case rc == Success:
			instrumented = true
		case rc == ErrDeviceLost:
			// Fatal; the host sees the same error it would have seen
			// without instrumentation.
		default:
			// The instrumented submission was rejected. Retry once with the
			// untouched original batches so host rendering is never blocked
			// by instrumentation failure.
			rc = enqueue(batches)
		}
	}

	// Phase 3: commit or roll back under the state lock.
	c.mu.Lock()
	if instrumented {
		commitLocked(res)
	} else {
		c.rollbackLocked(res)
		c.suspendLocked(c.now())
	}
	if rc == ErrDeviceLost {
		c.loseDeviceLocked()
	}
	c.releaseSlotLocked(res.slot)
	c.mu.Unlock()

	return rc
}

// planReservation decides which sub-batches to instrument and reserves their
// marker pairs. Called under the state lock. Returns nil when nothing could
// be reserved.
func planReservation[B submitBatch[B]](slot *frameSlot, serial uint64, batches []B) *reservation {
	res := &reservation{
		slot:     slot,
		serial:   serial,
		prevUsed: slot.queryUsed,
		prevHas:  slot.hasQueries,
	}
	for i, b := range batches {
		if b.commandCount() == 0 {
			continue
		}
		if slot.usedPairs() >= maxPairsPerFrame {
			break
		}
		query, pair, ok := slot.reservePair()
		if !ok {
			break
		}
		res.jobs = append(res.jobs, markerJob{batch: i, query: query, pair: pair})
	}
	if len(res.jobs) == 0 {
		return nil
	}
	return res
}

// buildAugmented produces the batch list handed to the driver: a fresh slice
// where each instrumented sub-batch is bracketed by its markers. The original
// batches are never mutated; they stay valid for the fallback resubmission.
func buildAugmented[B submitBatch[B]](batches []B, res *reservation) []B {
	out := make([]B, len(batches))
	copy(out, batches)
	for _, job := range res.jobs {
		out[job.batch] = out[job.batch].withMarkers(job.pair.begin, job.pair.end)
	}
	return out
}

// recordMarkers records the begin/end marker command buffers for every
// reserved pair: reset the query pair and write the top-of-pipe timestamp in
// the begin buffer, write the bottom-of-pipe timestamp in the end buffer.
func (c *Context) recordMarkers(pool QueryPool, res *reservation) error {
	c.recMu.Lock()
	defer c.recMu.Unlock()

	d := &c.disp
	for _, job := range res.jobs {
		if rc := d.BeginCommandBuffer(job.pair.begin); rc != Success {
			return errors.New("begin marker recording failed")
		}
		d.CmdResetQueryPool(job.pair.begin, pool, job.query, 2)
		d.CmdWriteTimestamp(job.pair.begin, StageTopOfPipe, pool, job.query)
		if rc := d.EndCommandBuffer(job.pair.begin); rc != Success {
			return errors.New("begin marker recording failed")
		}

		if rc := d.BeginCommandBuffer(job.pair.end); rc != Success {
			return errors.New("end marker recording failed")
		}
		d.CmdWriteTimestamp(job.pair.end, StageBottomOfPipe, pool, job.query+1)
		if rc := d.EndCommandBuffer(job.pair.end); rc != Success {
			return errors.New("end marker recording failed")
		}
	}
	return nil
}

// commitLocked makes the reservation's pairs visible to the collector. Only
// pairs whose submission actually executed are ORed into validPairs; a pair
// that was reserved but rolled back never gets its bit set.
func commitLocked(res *reservation) {
	slot := res.slot
	if slot.serial != res.serial {
		return
	}
	for _, job := range res.jobs {
		slot.validPairs |= 1 << ((job.query - slot.queryBase) / 2)
	}
}

// rollbackLocked releases this reservation's pairs. The serial guard
// protects against the slot having been recycled while the submission was in
// flight; in that case the reservation's counters belong to a dead frame and
// must not be applied.
//
// Reservations stack: an overlapping submission for the same serial may have
// reserved (and committed) pairs above this one while it was in flight.
// Shrinking queryUsed below that submission's pairs would violate the
// everything-above-queryUsed/2-is-invalid rule and hand its in-flight
// command buffers and query indices back out for reuse. So the counters are
// only restored when this reservation is still the top of the stack;
// otherwise its pairs are left dead, with their valid bits never set.
func (c *Context) rollbackLocked(res *reservation) {
	slot := res.slot
	if slot.serial != res.serial {
		return
	}
	if slot.queryUsed != res.prevUsed+2*uint32(len(res.jobs)) {
		return
	}
	slot.queryUsed = res.prevUsed
	slot.hasQueries = res.prevHas
	if slot.queryUsed == 0 && slot.validPairs == 0 {
		// The marker buffers may hold half-recorded state. The pool can
		// only be reset while no other reservation's markers are pending
		// on the GPU, which is exactly when the slot is empty.
		c.disp.ResetCommandPool(slot.cmdPool)
	}
}
