package vkusage

import (
	"io"
	"log"
	"os"
	"sync"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	os.Setenv(SamplingEnv, "1")
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// fakeCmd is one recorded command inside a fake command buffer.
type fakeCmd struct {
	reset bool
	query uint32
	count uint32
	stage PipelineStage
}

// fakeDevice is a scripted in-memory driver. Submitting a batch "executes"
// the commands recorded into its command buffers: query resets clear query
// slots, timestamp writes assign monotonically advancing tick values. Each
// marker pair measures tickStep busy ticks separated by gapStep idle ticks.
type fakeDevice struct {
	mu sync.Mutex

	queries  []TimestampResult
	recorded map[CommandBuffer][]fakeCmd
	pools    map[CommandPool][]CommandBuffer
	next     uint64

	submitQueue []Result
	submits     [][]Batch
	submits2    [][]Batch2
	fences      []Fence

	nextTick   uint64
	tickStep   uint64
	gapStep    uint64
	deferAvail bool
	pending    []uint32
	queryRc    Result

	beginFail  bool
	resets     int
	destroyed  int
	blockEnter chan struct{}
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		recorded: make(map[CommandBuffer][]fakeCmd),
		pools:    make(map[CommandPool][]CommandBuffer),
		next:     100,
		tickStep: 8,
		gapStep:  4,
		nextTick: 1,
	}
}

func (d *fakeDevice) handle() uint64 {
	d.next++
	return d.next
}

func (d *fakeDevice) popSubmitRc() Result {
	if len(d.submitQueue) == 0 {
		return Success
	}
	rc := d.submitQueue[0]
	d.submitQueue = d.submitQueue[1:]
	return rc
}

func (d *fakeDevice) execute(cbs []CommandBuffer) {
	for _, cb := range cbs {
		for _, cmd := range d.recorded[cb] {
			if cmd.reset {
				for q := cmd.query; q < cmd.query+cmd.count; q++ {
					d.queries[q] = TimestampResult{}
				}
				continue
			}
			var v uint64
			if cmd.stage == StageTopOfPipe {
				v = d.nextTick
			} else {
				v = d.nextTick + d.tickStep
				d.nextTick = v + d.gapStep
			}
			d.queries[cmd.query] = TimestampResult{Ticks: v, Available: !d.deferAvail}
			if d.deferAvail {
				d.pending = append(d.pending, cmd.query)
			}
		}
	}
}

// flush makes every deferred timestamp available, as if the GPU caught up.
func (d *fakeDevice) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, q := range d.pending {
		d.queries[q].Available = true
	}
	d.pending = nil
}

func (d *fakeDevice) submitCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.submits)
}

func (d *fakeDevice) lastSubmit() []Batch {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.submits) == 0 {
		return nil
	}
	return d.submits[len(d.submits)-1]
}

func (d *fakeDevice) dispatch() Dispatch {
	return Dispatch{
		QueueSubmit: func(queue Queue, batches []Batch, fence Fence) Result {
			if d.blockEnter != nil {
				<-d.blockEnter
			}
			d.mu.Lock()
			defer d.mu.Unlock()
			cp := make([]Batch, len(batches))
			copy(cp, batches)
			d.submits = append(d.submits, cp)
			d.fences = append(d.fences, fence)
			rc := d.popSubmitRc()
			if rc == Success {
				for _, b := range batches {
					d.execute(b.Commands)
				}
			}
			return rc
		},
		QueueSubmit2: func(queue Queue, batches []Batch2, fence Fence) Result {
			d.mu.Lock()
			defer d.mu.Unlock()
			cp := make([]Batch2, len(batches))
			copy(cp, batches)
			d.submits2 = append(d.submits2, cp)
			d.fences = append(d.fences, fence)
			rc := d.popSubmitRc()
			if rc == Success {
				for _, b := range batches {
					cbs := make([]CommandBuffer, len(b.Commands))
					for i, ci := range b.Commands {
						cbs[i] = ci.Command
					}
					d.execute(cbs)
				}
			}
			return rc
		},
		CreateQueryPool: func(count uint32) (QueryPool, Result) {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.queries = make([]TimestampResult, count)
			return QueryPool(d.handle()), Success
		},
		DestroyQueryPool: func(pool QueryPool) {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.destroyed++
		},
		GetQueryPoolResults: func(pool QueryPool, first, count uint32, results []TimestampResult) Result {
			d.mu.Lock()
			defer d.mu.Unlock()
			if d.queryRc != Success {
				return d.queryRc
			}
			copy(results, d.queries[first:first+count])
			return Success
		},
		CreateCommandPool: func(queueFamily uint32) (CommandPool, Result) {
			d.mu.Lock()
			defer d.mu.Unlock()
			p := CommandPool(d.handle())
			d.pools[p] = nil
			return p, Success
		},
		ResetCommandPool: func(pool CommandPool) Result {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.resets++
			return Success
		},
		DestroyCommandPool: func(pool CommandPool) {
			d.mu.Lock()
			defer d.mu.Unlock()
			delete(d.pools, pool)
			d.destroyed++
		},
		AllocateCommandBuffers: func(pool CommandPool, count uint32) ([]CommandBuffer, Result) {
			d.mu.Lock()
			defer d.mu.Unlock()
			cbs := make([]CommandBuffer, count)
			for i := range cbs {
				cbs[i] = CommandBuffer(d.handle())
			}
			d.pools[pool] = append(d.pools[pool], cbs...)
			return cbs, Success
		},
		FreeCommandBuffers: func(pool CommandPool, buffers []CommandBuffer) {},
		BeginCommandBuffer: func(cb CommandBuffer) Result {
			d.mu.Lock()
			defer d.mu.Unlock()
			if d.beginFail {
				return ErrOutOfHostMemory
			}
			d.recorded[cb] = nil
			return Success
		},
		EndCommandBuffer: func(cb CommandBuffer) Result {
			return Success
		},
		CmdResetQueryPool: func(cb CommandBuffer, pool QueryPool, first, count uint32) {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.recorded[cb] = append(d.recorded[cb], fakeCmd{reset: true, query: first, count: count})
		},
		CmdWriteTimestamp: func(cb CommandBuffer, stage PipelineStage, pool QueryPool, query uint32) {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.recorded[cb] = append(d.recorded[cb], fakeCmd{query: query, stage: stage})
		},
	}
}

// fakeClock drives the Context's injected clock in tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1_000, 0)}
}

func (f *fakeClock) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

func testCaps() DeviceCaps {
	return DeviceCaps{TimestampPeriodNs: 1e6, TimestampValidBits: 64, QueueFamily: 3}
}

func newTestContext(t *testing.T, d *fakeDevice) (*Context, *fakeClock) {
	t.Helper()
	c := Create(testCaps(), d.dispatch())
	if c.inert {
		t.Fatal("Create returned an inert context with full capabilities")
	}
	clock := newFakeClock()
	c.now = clock.now
	return c, clock
}
