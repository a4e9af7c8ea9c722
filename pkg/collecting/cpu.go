package collecting

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"GpuVkUsage/pkg/metrics"
	"GpuVkUsage/pkg/probing"
	"GpuVkUsage/pkg/utils"

	"golang.org/x/sys/unix"
)

type CPU struct {
	prevBusy  int64
	prevTotal int64
	primed    bool
}

func NewCPU() *CPU          { return &CPU{} }
func (c *CPU) Name() string { return "CPU" }
func (c *CPU) Close() error { return nil }

func (c *CPU) CollectStatic(s *metrics.Static) {
	s.NumProcessors = runtime.NumCPU()
	s.CPUModel = getCPUModel()
	s.Kernel = getKernelInfo()
}

func (c *CPU) CollectDynamic(d *metrics.Sample) {
	busy, total := readJiffies()

	m := &metrics.CPU{}
	if c.primed {
		m.LoadPercent = jiffiesLoad(c.prevBusy, c.prevTotal, busy, total)
	}
	c.prevBusy, c.prevTotal = busy, total
	c.primed = true

	m.LoadAvg = getLoadAvg()
	m.MHz = getCPUFreq()
	d.CPU = m
}

// readJiffies sums the aggregate cpu line of /proc/stat into busy and total
// jiffies. Idle and iowait count as not busy.
func readJiffies() (busy, total int64) {
	lines, _ := probing.FileLines(utils.ProcStat)
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 8 || fields[0] != "cpu" {
			continue
		}
		for i := 1; i < 8 && i < len(fields); i++ {
			v := probing.ParseInt64(fields[i])
			total += v
			if i != 4 && i != 5 {
				busy += v
			}
		}
		break
	}
	return busy, total
}

// jiffiesLoad converts two jiffies snapshots into a busy percentage,
// clamped to [0,100]. A non-advancing total yields zero.
func jiffiesLoad(prevBusy, prevTotal, busy, total int64) float64 {
	dTotal := total - prevTotal
	dBusy := busy - prevBusy
	if dTotal <= 0 || dBusy < 0 {
		return 0
	}
	load := float64(dBusy) / float64(dTotal) * 100
	if load > 100 {
		load = 100
	}
	return load
}

func getCPUModel() string {
	lines, _ := probing.FileLines(utils.ProcCPUInfo)
	for _, line := range lines {
		if strings.HasPrefix(line, "model name") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) == 2 {
				return strings.TrimSpace(parts[1])
			}
		}
	}
	return "unknown"
}

func getKernelInfo() string {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return ""
	}
	return fmt.Sprintf("%s %s %s",
		unix.ByteSliceToString(uname.Sysname[:]),
		unix.ByteSliceToString(uname.Release[:]),
		unix.ByteSliceToString(uname.Machine[:]))
}

func getLoadAvg() float64 {
	val, _ := probing.File(utils.ProcLoadavg)
	parts := strings.Fields(val)
	if len(parts) > 0 {
		return probing.ParseFloat64(parts[0])
	}
	return 0
}

func getCPUFreq() float64 {
	files, err := filepath.Glob("/sys/devices/system/cpu/cpu*/cpufreq/scaling_cur_freq")
	if err == nil && len(files) > 0 {
		var total, count int64
		for _, f := range files {
			val, _ := probing.FileInt(f)
			if val > 0 {
				total += val
				count++
			}
		}
		if count > 0 {
			return float64(total) / float64(count) / 1000.0
		}
	}

	lines, _ := probing.FileLines(utils.ProcCPUInfo)
	for _, line := range lines {
		if strings.HasPrefix(line, "cpu MHz") {
			parts := strings.SplitN(line, ":", 2)
			if len(parts) == 2 {
				return probing.ParseFloat64(parts[1])
			}
		}
	}
	return 0
}
