package cmd

import (
	"flag"
	"log"
	"os"
	"sync"
	"time"

	"GpuVkUsage/pkg/exporting"
	"GpuVkUsage/pkg/metrics"
	"GpuVkUsage/pkg/probing"
	"GpuVkUsage/pkg/utils"
	"GpuVkUsage/pkg/vkusage"
)

// Simulate drives the Vulkan sampler against a synthetic device that is
// busy for a configurable fraction of each frame, so the sampler's full
// submit/present/readback path can be exercised without a GPU.
func Simulate(args []string) {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	frames := fs.Int("frames", 300, "Number of frames to simulate")
	frameTimeMs := fs.Int("frame-time", 16, "Simulated frame time (ms)")
	busyPercent := fs.Float64("busy", 50, "GPU busy fraction per frame (percent)")
	output := fs.String("output", "", "Write per-frame samples to this file")
	summary := fs.Bool("summary", false, "Write a session summary beside the output file")
	fs.Parse(args)

	os.Setenv(vkusage.SamplingEnv, "1")

	var exporter *exporting.Exporter
	if *output != "" {
		cfg := utils.NewConfig()
		cfg.OutputFile = *output
		if f, ok := exporting.GetByPath(*output); ok {
			cfg.Format = f.Name()
		}
		var err error
		exporter, err = exporting.NewExporter(cfg)
		if err != nil {
			log.Fatalf("Failed to create exporter: %v", err)
		}
	}

	frameTime := time.Duration(*frameTimeMs) * time.Millisecond
	dev := newSimDevice(uint64(float64(frameTime.Microseconds()) * *busyPercent / 100))

	ctx := vkusage.Create(vkusage.DeviceCaps{
		TimestampPeriodNs:  1000,
		TimestampValidBits: 64,
		QueueFamily:        0,
	}, dev.dispatch())
	defer ctx.Destroy()

	log.Printf("Simulating %d frames at %v, %.0f%% GPU busy", *frames, frameTime, *busyPercent)

	queue := vkusage.Queue(1)
	work := []vkusage.Batch{{Commands: []vkusage.CommandBuffer{simAppCommand}}}

	for frame := 0; frame < *frames; frame++ {
		if r := ctx.WrapSubmit(queue, 0, work, 0); r.Failed() {
			log.Fatalf("Submit failed at frame %d: %v", frame, r)
		}
		time.Sleep(frameTime)
		ctx.OnPresent(queue, 0, vkusage.PresentInfo{})

		if exporter != nil {
			if m, ok := ctx.Metrics(); ok {
				if err := exporter.Write(frameSample(m, frameTime)); err != nil {
					log.Printf("Failed to write sample: %v", err)
				}
			}
		}

		if frame > 0 && frame%60 == 0 {
			if m, ok := ctx.Metrics(); ok {
				log.Printf("frame %4d: busy %.2fms, usage %.1f%%", frame, m.GpuBusyMs, m.UsagePercent)
			}
		}
	}

	if m, ok := ctx.Metrics(); ok {
		log.Printf("final: busy %.2fms, usage %.1f%%", m.GpuBusyMs, m.UsagePercent)
	} else {
		log.Print("final: no metrics available")
	}

	if exporter != nil {
		if err := exporter.Close(); err != nil {
			log.Fatalf("Failed to close output file: %v", err)
		}
		log.Printf("Wrote frame samples to %s", exporter.Path())
		if *summary {
			path, err := exporting.WriteSummary(exporter.Path())
			if err != nil {
				log.Printf("Failed to write summary: %v", err)
			} else {
				log.Printf("Summary written to %s", path)
			}
		}
	}
}

// frameSample packages one sampler readout as an exportable sample.
func frameSample(m vkusage.Metrics, frameTime time.Duration) *metrics.Sample {
	f := &metrics.Frame{
		GpuBusyMs:    m.GpuBusyMs,
		UsagePercent: m.UsagePercent,
	}
	if frameTime > 0 {
		f.FrameTimeMs = float64(frameTime) / float64(time.Millisecond)
		f.FPS = float64(time.Second) / float64(frameTime)
	}
	return &metrics.Sample{Timestamp: probing.GetTimestamp(), Frame: f}
}

// simAppCommand stands in for the application's own command buffer.
const simAppCommand = vkusage.CommandBuffer(0xA99)

type simWrite struct {
	pool  vkusage.QueryPool
	query uint32
	stage vkusage.PipelineStage
}

// simDevice is a minimal in-memory driver. Timestamps written at the top
// of a frame's work take the current tick; the bottom lands busyTicks
// later, as if the GPU worked that long. Queries are available as soon as
// the submit returns. One tick is a microsecond.
type simDevice struct {
	busyTicks uint64
	start     time.Time

	mu     sync.Mutex
	nextID uint64
	writes map[vkusage.CommandBuffer][]simWrite
	ticks  map[vkusage.QueryPool]map[uint32]uint64
}

func newSimDevice(busyTicks uint64) *simDevice {
	return &simDevice{
		busyTicks: busyTicks,
		start:     time.Now(),
		nextID:    0x1000,
		writes:    make(map[vkusage.CommandBuffer][]simWrite),
		ticks:     make(map[vkusage.QueryPool]map[uint32]uint64),
	}
}

func (d *simDevice) tickNow() uint64 {
	return uint64(time.Since(d.start).Microseconds())
}

func (d *simDevice) handle() uint64 {
	d.nextID++
	return d.nextID
}

func (d *simDevice) dispatch() vkusage.Dispatch {
	return vkusage.Dispatch{
		QueueSubmit: d.queueSubmit,

		CreateQueryPool: func(queryCount uint32) (vkusage.QueryPool, vkusage.Result) {
			d.mu.Lock()
			defer d.mu.Unlock()
			pool := vkusage.QueryPool(d.handle())
			d.ticks[pool] = make(map[uint32]uint64, queryCount)
			return pool, vkusage.Success
		},
		DestroyQueryPool: func(pool vkusage.QueryPool) {
			d.mu.Lock()
			defer d.mu.Unlock()
			delete(d.ticks, pool)
		},
		GetQueryPoolResults: d.queryResults,

		CreateCommandPool: func(queueFamily uint32) (vkusage.CommandPool, vkusage.Result) {
			d.mu.Lock()
			defer d.mu.Unlock()
			return vkusage.CommandPool(d.handle()), vkusage.Success
		},
		ResetCommandPool:   func(pool vkusage.CommandPool) vkusage.Result { return vkusage.Success },
		DestroyCommandPool: func(pool vkusage.CommandPool) {},
		AllocateCommandBuffers: func(pool vkusage.CommandPool, count uint32) ([]vkusage.CommandBuffer, vkusage.Result) {
			d.mu.Lock()
			defer d.mu.Unlock()
			cbs := make([]vkusage.CommandBuffer, count)
			for i := range cbs {
				cbs[i] = vkusage.CommandBuffer(d.handle())
			}
			return cbs, vkusage.Success
		},
		FreeCommandBuffers: func(pool vkusage.CommandPool, buffers []vkusage.CommandBuffer) {},

		BeginCommandBuffer: func(cb vkusage.CommandBuffer) vkusage.Result {
			d.mu.Lock()
			defer d.mu.Unlock()
			delete(d.writes, cb)
			return vkusage.Success
		},
		EndCommandBuffer: func(cb vkusage.CommandBuffer) vkusage.Result { return vkusage.Success },
		CmdResetQueryPool: func(cb vkusage.CommandBuffer, pool vkusage.QueryPool, first, count uint32) {
			d.mu.Lock()
			defer d.mu.Unlock()
			for q := first; q < first+count; q++ {
				delete(d.ticks[pool], q)
			}
		},
		CmdWriteTimestamp: func(cb vkusage.CommandBuffer, stage vkusage.PipelineStage, pool vkusage.QueryPool, query uint32) {
			d.mu.Lock()
			defer d.mu.Unlock()
			d.writes[cb] = append(d.writes[cb], simWrite{pool: pool, query: query, stage: stage})
		},
	}
}

func (d *simDevice) queueSubmit(queue vkusage.Queue, batches []vkusage.Batch, fence vkusage.Fence) vkusage.Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	base := d.tickNow()
	for _, batch := range batches {
		for _, cb := range batch.Commands {
			for _, w := range d.writes[cb] {
				tick := base
				if w.stage == vkusage.StageBottomOfPipe {
					tick = base + d.busyTicks
				}
				d.ticks[w.pool][w.query] = tick
			}
		}
	}
	return vkusage.Success
}

func (d *simDevice) queryResults(pool vkusage.QueryPool, first, count uint32, results []vkusage.TimestampResult) vkusage.Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	queries := d.ticks[pool]
	for i := uint32(0); i < count && int(i) < len(results); i++ {
		tick, ok := queries[first+i]
		results[i] = vkusage.TimestampResult{Ticks: tick, Available: ok}
	}
	return vkusage.Success
}
