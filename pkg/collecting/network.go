package collecting

import (
	"os"
	"path/filepath"
	"sort"

	"GpuVkUsage/pkg/metrics"
	"GpuVkUsage/pkg/probing"
	"GpuVkUsage/pkg/utils"
)

type ifaceState struct {
	rxBytes int64
	txBytes int64
	ts      int64
}

type Network struct {
	prev map[string]ifaceState
}

func NewNetwork() *Network {
	return &Network{prev: make(map[string]ifaceState)}
}

func (c *Network) Name() string { return "Network" }
func (c *Network) Close() error { return nil }

func (c *Network) CollectStatic(s *metrics.Static) {}

func (c *Network) CollectDynamic(d *metrics.Sample) {
	entries, err := os.ReadDir(utils.SysClassNet)
	if err != nil {
		return
	}

	m := &metrics.Network{}
	for _, e := range entries {
		iface := e.Name()
		if iface == utils.LoopbackInterface {
			continue
		}

		stats := filepath.Join(utils.SysClassNet, iface, "statistics")
		rx, ts := probing.FileInt(filepath.Join(stats, "rx_bytes"))
		tx, _ := probing.FileInt(filepath.Join(stats, "tx_bytes"))

		prev, seen := c.prev[iface]
		c.prev[iface] = ifaceState{rxBytes: rx, txBytes: tx, ts: ts}
		if !seen {
			// First sight of an interface has nothing to diff against.
			continue
		}

		m.Interfaces = append(m.Interfaces, metrics.Interface{
			Name:  iface,
			RxBps: byteRate(prev.rxBytes, rx, ts-prev.ts),
			TxBps: byteRate(prev.txBytes, tx, ts-prev.ts),
		})
	}

	if len(m.Interfaces) > 0 {
		sort.Slice(m.Interfaces, func(i, j int) bool {
			return m.Interfaces[i].Name < m.Interfaces[j].Name
		})
		d.Network = m
	}
}

// byteRate converts a byte-counter delta over dtNs nanoseconds into bytes
// per second. Counter resets and clock anomalies yield zero, not garbage.
func byteRate(prev, cur, dtNs int64) float64 {
	if dtNs <= 0 || cur < prev {
		return 0
	}
	return float64(cur-prev) / (float64(dtNs) / utils.NanosecondsPerSec)
}
