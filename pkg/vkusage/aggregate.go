package vkusage

import (
	"sync"
	"time"
)

const (
	aggregateWindow = 500 * time.Millisecond
	usageSmoothing  = 0.5
)

// Metrics is the externally visible snapshot: smoothed GPU busy time per
// frame and the smoothed utilization percentage.
type Metrics struct {
	GpuBusyMs    float64
	UsagePercent float64
}

// aggregator accumulates matched CPU-frame-time / GPU-busy-time pairs over a
// rolling wall-clock window and publishes an exponentially smoothed snapshot.
// It has its own lock so metric reads never contend with the submission path.
type aggregator struct {
	mu sync.Mutex

	windowStart time.Time
	cpuMs       float64
	gpuMs       float64
	samples     int

	smoothedMs    float64
	smoothedUsage float64
	hasValue      bool
}

// add records one frame whose GPU result was drained successfully, together
// with that same frame's CPU duration. Accumulation is deliberately
// symmetric: frames without a GPU sample contribute nothing to either sum,
// so the ratio is unbiased.
func (a *aggregator) add(cpuMs, gpuMs float64, now time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.windowStart.IsZero() {
		a.windowStart = now
	}
	a.cpuMs += cpuMs
	a.gpuMs += gpuMs
	a.samples++

	if now.Sub(a.windowStart) < aggregateWindow {
		return
	}

	avgCPU := a.cpuMs / float64(a.samples)
	avgGPU := a.gpuMs / float64(a.samples)

	usage := 0.0
	if avgCPU > 0 {
		usage = avgGPU / avgCPU * 100
	}
	if usage < 0 {
		usage = 0
	}
	if usage > 100 {
		usage = 100
	}

	if !a.hasValue {
		a.smoothedUsage = usage
		a.smoothedMs = avgGPU
		a.hasValue = true
	} else {
		a.smoothedUsage = a.smoothedUsage*(1-usageSmoothing) + usage*usageSmoothing
		a.smoothedMs = a.smoothedMs*(1-usageSmoothing) + avgGPU*usageSmoothing
	}

	a.windowStart = now
	a.cpuMs = 0
	a.gpuMs = 0
	a.samples = 0
}

// snapshot returns the latest published values. A window with no GPU samples
// keeps the previous snapshot rather than decaying it, so transient
// suspensions do not flicker the overlay.
func (a *aggregator) snapshot() (Metrics, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.hasValue {
		return Metrics{}, false
	}
	return Metrics{GpuBusyMs: a.smoothedMs, UsagePercent: a.smoothedUsage}, true
}
