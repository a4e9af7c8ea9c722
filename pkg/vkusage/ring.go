package vkusage

import (
	"fmt"
	"time"
)

// Sampler tuning. The ring size and per-slot capacity bound memory; the
// per-frame pair budget and the injection caps bound per-submission overhead.
const (
	ringSlots      = 16
	pairsPerSlot   = 32
	queriesPerSlot = 2 * pairsPerSlot

	// maxPairsPerFrame caps how many marker pairs a single sampled frame may
	// consume, across all of its submissions.
	maxPairsPerFrame = 16

	// frameLag is how many frames a slot must age before its queries are
	// assumed safe to read back.
	frameLag = 3

	maxSubmitBatches    = 1024
	maxInjectedCommands = 8192

	cpuSampleSlots = 64

	notReadyLimit   = 32
	probeInterval   = 250 * time.Millisecond
	suspendCooldown = 500 * time.Millisecond
)

// emptySerial marks a slot that is not owned by any frame.
const emptySerial = ^uint64(0)

type markerPair struct {
	begin CommandBuffer
	end   CommandBuffer
}

// frameSlot hosts one submission frame's instrumentation: a command pool with
// preallocated marker command buffers and a fixed window of the shared query
// pool.
//
// Invariants: queryUsed is always even (pairs are reserved two queries at a
// time); validPairs bits at or above queryUsed/2 are always zero; serial only
// changes while inUse is zero and no unread results remain (except the stale
// force-drop in acquire).
type frameSlot struct {
	cmdPool CommandPool
	pairs   [pairsPerSlot]markerPair

	queryBase  uint32
	queryUsed  uint32
	validPairs uint32
	hasQueries bool

	serial uint64
	inUse  int
}

func (s *frameSlot) usedPairs() uint32 { return s.queryUsed / 2 }

// reservePair optimistically hands out the next marker pair. The pair only
// becomes visible to the collector once the submission is confirmed and the
// corresponding validPairs bit is committed.
func (s *frameSlot) reservePair() (query uint32, pair markerPair, ok bool) {
	if s.queryUsed+2 > queriesPerSlot {
		return 0, markerPair{}, false
	}
	query = s.queryBase + s.queryUsed
	pair = s.pairs[s.queryUsed/2]
	s.queryUsed += 2
	s.hasQueries = true
	return query, pair, true
}

// consume clears the slot after its results were read (or discarded), making
// it eligible for the next acquire.
func (s *frameSlot) consume() {
	s.hasQueries = false
	s.validPairs = 0
	s.queryUsed = 0
	s.serial = emptySerial
}

// slotRing is the fixed ring of frame slots plus the shared query pool.
// Slot assignment is serial mod ringSlots. All mutation happens under the
// owning Context's state lock.
type slotRing struct {
	pool  QueryPool
	slots [ringSlots]frameSlot
}

func newSlotRing(d *Dispatch, queueFamily uint32) (*slotRing, error) {
	pool, rc := d.CreateQueryPool(ringSlots * queriesPerSlot)
	if rc != Success {
		return nil, fmt.Errorf("query pool creation failed: %d", rc)
	}

	r := &slotRing{pool: pool}
	for i := range r.slots {
		s := &r.slots[i]
		s.serial = emptySerial
		s.queryBase = uint32(i * queriesPerSlot)

		cmdPool, rc := d.CreateCommandPool(queueFamily)
		if rc != Success {
			r.destroy(d)
			return nil, fmt.Errorf("command pool creation failed: %d", rc)
		}
		s.cmdPool = cmdPool

		cbs, rc := d.AllocateCommandBuffers(cmdPool, 2*pairsPerSlot)
		if rc != Success || len(cbs) != 2*pairsPerSlot {
			r.destroy(d)
			return nil, fmt.Errorf("marker buffer allocation failed: %d", rc)
		}
		for p := 0; p < pairsPerSlot; p++ {
			s.pairs[p] = markerPair{begin: cbs[2*p], end: cbs[2*p+1]}
		}
	}
	return r, nil
}

func (r *slotRing) destroy(d *Dispatch) {
	for i := range r.slots {
		if r.slots[i].cmdPool != 0 {
			d.DestroyCommandPool(r.slots[i].cmdPool)
			r.slots[i].cmdPool = 0
		}
	}
	if r.pool != 0 {
		d.DestroyQueryPool(r.pool)
		r.pool = 0
	}
}

func (r *slotRing) slot(serial uint64) *frameSlot {
	return &r.slots[serial%ringSlots]
}

// acquire maps serial to its slot and prepares it for reservations.
//
// A slot already owned by the same serial is reused as-is (several
// submissions per frame). A slot still referenced by an in-flight call is
// never touched. A slot holding undrained results from an older frame blocks
// reuse for one full ring lap; past that the stale data is force-dropped so
// the ring cannot stall permanently, and dropped reports the loss so the
// caller can notify the backoff state machine.
func (r *slotRing) acquire(serial uint64) (slot *frameSlot, ok bool, dropped bool) {
	s := r.slot(serial)
	if s.serial == serial {
		return s, true, false
	}
	if s.inUse > 0 {
		return nil, false, false
	}
	if s.hasQueries {
		if serial-s.serial <= ringSlots {
			return nil, false, false
		}
		s.hasQueries = false
		s.validPairs = 0
		s.queryUsed = 0
		dropped = true
	}
	s.serial = serial
	s.queryUsed = 0
	s.validPairs = 0
	s.hasQueries = false
	return s, true, dropped
}
