package collecting

import (
	"GpuVkUsage/pkg/metrics"
	"GpuVkUsage/pkg/probing"
	"GpuVkUsage/pkg/utils"
)

const bytesPerMiB = 1 << 20

type IOStats struct {
	prevRead  int64
	prevWrite int64
	prevTs    int64
}

func NewIOStats() *IOStats      { return &IOStats{} }
func (c *IOStats) Name() string { return "IO" }
func (c *IOStats) Close() error { return nil }

func (c *IOStats) CollectStatic(s *metrics.Static) {}

func (c *IOStats) CollectDynamic(d *metrics.Sample) {
	kv, ts := probing.FileKV(utils.ProcSelfIO, ":")
	read := probing.ParseInt64(kv["read_bytes"])
	write := probing.ParseInt64(kv["write_bytes"])

	m := &metrics.IO{
		ReadMiB:  float64(read) / bytesPerMiB,
		WriteMiB: float64(write) / bytesPerMiB,
	}
	if c.prevTs != 0 {
		m.ReadMiBps = byteRate(c.prevRead, read, ts-c.prevTs) / bytesPerMiB
		m.WriteMiBps = byteRate(c.prevWrite, write, ts-c.prevTs) / bytesPerMiB
	}

	c.prevRead, c.prevWrite, c.prevTs = read, write, ts
	d.IO = m
}
