package collecting

import (
	"os"
	"path/filepath"
	"strings"

	"GpuVkUsage/pkg/probing"
)

// drmEngineKey maps a DRM driver to the fdinfo engine counter tracking its
// main 3D pipeline. Summing every engine would double-count: render, copy
// and video engines run in parallel on the same device.
var drmEngineKey = map[string]string{
	"i915":    "drm-engine-render",
	"xe":      "drm-engine-render",
	"amdgpu":  "drm-engine-gfx",
	"msm":     "drm-engine-gpu",
	"msm_drm": "drm-engine-gpu",
	"v3d":     "drm-engine-render",
}

// fdinfoClient is one DRM client as described by a /proc/<pid>/fdinfo entry.
// Engine counters are cumulative busy nanoseconds.
type fdinfoClient struct {
	driver   string
	pdev     string
	clientID string
	engines  map[string]uint64
}

// parseFdinfo reads one fdinfo file's "key: value" lines. Continuation
// lines (leading whitespace) and non-DRM keys are ignored; engine counters
// lose their " ns" suffix.
func parseFdinfo(content string) fdinfoClient {
	c := fdinfoClient{engines: make(map[string]uint64)}
	for _, line := range strings.Split(content, "\n") {
		if line == "" || line[0] == ' ' || line[0] == '\t' {
			continue
		}
		key, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		val = strings.TrimSpace(val)

		switch key {
		case "drm-driver":
			c.driver = val
		case "drm-pdev":
			c.pdev = val
		case "drm-client-id":
			c.clientID = val
		default:
			if strings.HasPrefix(key, "drm-engine-") {
				val = strings.TrimSuffix(val, " ns")
				c.engines[key] = uint64(probing.ParseInt64(val))
			}
		}
	}
	return c
}

// clientBusyNs picks the client's busy time for its driver. Panfrost splits
// the pipeline across two engines; drivers not in the table report their
// largest engine.
func clientBusyNs(c fdinfoClient) uint64 {
	if c.driver == "panfrost" {
		return c.engines["drm-engine-fragment"] + c.engines["drm-engine-vertex-tiler"]
	}
	if key, ok := drmEngineKey[c.driver]; ok {
		return c.engines[key]
	}
	var max uint64
	for _, v := range c.engines {
		if v > max {
			max = v
		}
	}
	return max
}

// scanFdinfoBusy walks every process's fdinfo directory and sums busy time
// per device. Clients are deduplicated by id: a process holding several fds
// on the same client reports the same counters through each of them.
func scanFdinfoBusy(procDir string) map[string]uint64 {
	pids, err := os.ReadDir(procDir)
	if err != nil {
		return nil
	}

	totals := make(map[string]uint64)
	seen := make(map[string]bool)
	for _, pid := range pids {
		name := pid.Name()
		if !pid.IsDir() || name[0] < '0' || name[0] > '9' {
			continue
		}
		fdDir := filepath.Join(procDir, name, "fdinfo")
		fds, err := os.ReadDir(fdDir)
		if err != nil {
			continue
		}
		for _, fd := range fds {
			content, _ := probing.File(filepath.Join(fdDir, fd.Name()))
			c := parseFdinfo(content)
			if c.driver == "" || c.pdev == "" || c.clientID == "" {
				continue
			}
			key := c.pdev + "/" + c.clientID
			if seen[key] {
				continue
			}
			seen[key] = true
			totals[c.pdev] += clientBusyNs(c)
		}
	}
	return totals
}

// fdinfoLoad converts two cumulative busy-time snapshots into a percentage
// of the elapsed wall time, clamped to [0,100].
func fdinfoLoad(prevNs, curNs uint64, dtNs int64) float64 {
	if dtNs <= 0 || curNs < prevNs {
		return 0
	}
	load := float64(curNs-prevNs) / float64(dtNs) * 100
	if load > 100 {
		load = 100
	}
	return load
}
