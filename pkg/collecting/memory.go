package collecting

import (
	"strings"

	"GpuVkUsage/pkg/metrics"
	"GpuVkUsage/pkg/probing"
	"GpuVkUsage/pkg/utils"

	"golang.org/x/sys/unix"
)

const bytesPerGiB = 1 << 30

type Memory struct {
	// MemTotal never changes at runtime; read it once.
	totalKiB int64
}

func NewMemory() *Memory       { return &Memory{} }
func (c *Memory) Name() string { return "Memory" }
func (c *Memory) Close() error { return nil }

func (c *Memory) CollectStatic(s *metrics.Static) {
	info := getMemInfo()
	s.MemoryTotalBytes = info["MemTotal"] * 1024
	s.SwapTotalBytes = info["SwapTotal"] * 1024
}

func (c *Memory) CollectDynamic(d *metrics.Sample) {
	info := getMemInfo()
	if c.totalKiB == 0 {
		c.totalKiB = info["MemTotal"]
	}

	m := memoryFromInfo(c.totalKiB, info["MemAvailable"], info["SwapTotal"], info["SwapFree"])

	resident, shared, virtual := readStatm()
	m.ResidentMiB = resident
	m.SharedMiB = shared
	m.VirtualMiB = virtual

	d.Memory = m
}

// memoryFromInfo turns meminfo KiB counters into the sample's GiB view.
// An availability figure larger than total is clamped rather than reported
// as negative use.
func memoryFromInfo(totalKiB, availKiB, swapTotalKiB, swapFreeKiB int64) *metrics.Memory {
	if availKiB > totalKiB {
		availKiB = totalKiB
	}
	usedKiB := totalKiB - availKiB
	swapUsedKiB := swapTotalKiB - swapFreeKiB
	if swapUsedKiB < 0 {
		swapUsedKiB = 0
	}

	return &metrics.Memory{
		UsedGiB:     float64(usedKiB) * 1024 / bytesPerGiB,
		TotalGiB:    float64(totalKiB) * 1024 / bytesPerGiB,
		SwapUsedGiB: float64(swapUsedKiB) * 1024 / bytesPerGiB,
	}
}

func getMemInfo() map[string]int64 {
	kv, _ := probing.FileKV(utils.ProcMeminfo, ":")
	result := make(map[string]int64, len(kv))
	for k, v := range kv {
		v = strings.TrimSuffix(v, " kB")
		result[k] = probing.ParseInt64(v)
	}
	return result
}

// readStatm reports the process's virtual, resident and shared footprint in
// MiB from /proc/self/statm page counts.
func readStatm() (resident, shared, virtual float64) {
	val, _ := probing.File(utils.ProcSelfStatm)
	fields := strings.Fields(val)
	if len(fields) < 3 {
		return 0, 0, 0
	}
	page := float64(unix.Getpagesize())
	const mib = 1 << 20
	virtual = float64(probing.ParseInt64(fields[0])) * page / mib
	resident = float64(probing.ParseInt64(fields[1])) * page / mib
	shared = float64(probing.ParseInt64(fields[2])) * page / mib
	return resident, shared, virtual
}
