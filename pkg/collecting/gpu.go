package collecting

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"GpuVkUsage/pkg/metrics"
	"GpuVkUsage/pkg/probing"
	"GpuVkUsage/pkg/utils"
)

type drmNode struct {
	index  int
	device string
	driver string
	pdev   string
}

type fdinfoState struct {
	busyNs uint64
	ts     int64
}

// GPU reads GPU identity and utilization from /sys/class/drm render nodes.
// amdgpu exposes utilization directly through gpu_busy_percent; every other
// driver is measured through the per-client drm-engine counters in
// /proc/<pid>/fdinfo, aggregated system-wide per device.
type GPU struct {
	nodes   []drmNode
	procDir string
	prev    map[string]fdinfoState
}

func NewGPU() *GPU {
	entries, err := os.ReadDir(utils.SysClassDrm)
	if err != nil {
		return nil
	}

	var nodes []drmNode
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "renderD") {
			continue
		}
		device := filepath.Join(utils.SysClassDrm, name, "device")
		driver := ""
		if link, err := os.Readlink(filepath.Join(device, "driver")); err == nil {
			driver = filepath.Base(link)
		}
		pdev := ""
		if link, err := os.Readlink(device); err == nil {
			pdev = filepath.Base(link)
		}
		nodes = append(nodes, drmNode{index: len(nodes), device: device, driver: driver, pdev: pdev})
	}

	if len(nodes) == 0 {
		log.Printf("WARNING: GPU collector disabled: no DRM render nodes")
		return nil
	}
	return &GPU{nodes: nodes, procDir: utils.ProcDir, prev: make(map[string]fdinfoState)}
}

func (c *GPU) Name() string { return "GPU" }
func (c *GPU) Close() error { return nil }

func (c *GPU) CollectStatic(s *metrics.Static) {
	for _, n := range c.nodes {
		vendor, _ := probing.File(filepath.Join(n.device, "vendor"))
		device, _ := probing.File(filepath.Join(n.device, "device"))
		s.GPUs = append(s.GPUs, metrics.GPUInfo{
			Index:    n.index,
			Node:     filepath.Base(filepath.Dir(n.device)),
			Driver:   n.driver,
			VendorID: strings.TrimSpace(vendor),
			DeviceID: strings.TrimSpace(device),
		})
	}
}

func (c *GPU) CollectDynamic(d *metrics.Sample) {
	var busyTotals map[string]uint64
	for _, n := range c.nodes {
		if n.driver != "amdgpu" && n.pdev != "" {
			busyTotals = scanFdinfoBusy(c.procDir)
			break
		}
	}
	ts := probing.GetTimestamp()

	for _, n := range c.nodes {
		g := metrics.GPUDynamic{Index: n.index}
		if n.driver == "amdgpu" {
			g.BusyPercent, _ = probing.FileFloat(filepath.Join(n.device, "gpu_busy_percent"))
			g.MemoryUsedBytes, _ = probing.FileInt(filepath.Join(n.device, "mem_info_vram_used"))
			g.MemoryTotalBytes, _ = probing.FileInt(filepath.Join(n.device, "mem_info_vram_total"))
		} else {
			if n.pdev == "" {
				continue
			}
			busy := busyTotals[n.pdev]
			prev, seen := c.prev[n.pdev]
			c.prev[n.pdev] = fdinfoState{busyNs: busy, ts: ts}
			if !seen {
				// Nothing to diff against yet.
				continue
			}
			g.BusyPercent = fdinfoLoad(prev.busyNs, busy, ts-prev.ts)
		}
		d.GPUs = append(d.GPUs, g)
	}
}
