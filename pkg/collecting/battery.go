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

// currentSamples smooths the time-remaining estimate: instantaneous current
// draw jumps around far too much to divide charge by directly.
const currentSamples = 25

type Battery struct {
	entries  []string
	currents [currentSamples]float64
	idx      int
	filled   int
}

// NewBattery scans /sys/class/power_supply once. Hosts without a battery get
// a nil collector and no battery section in the samples.
func NewBattery() *Battery {
	dirEntries, err := os.ReadDir(utils.SysPowerSupply)
	if err != nil {
		return nil
	}

	var entries []string
	for _, e := range dirEntries {
		name := e.Name()
		base := filepath.Join(utils.SysPowerSupply, name)
		typ, _ := probing.File(filepath.Join(base, "type"))
		if strings.HasPrefix(name, "BAT") || strings.TrimSpace(typ) == "Battery" {
			entries = append(entries, base)
		}
	}
	if len(entries) == 0 {
		log.Printf("WARNING: battery collector disabled: no battery entries")
		return nil
	}
	return &Battery{entries: entries}
}

func (c *Battery) Name() string { return "Battery" }
func (c *Battery) Close() error { return nil }

func (c *Battery) CollectStatic(s *metrics.Static) {}

func (c *Battery) CollectDynamic(d *metrics.Sample) {
	var percentSum, watts, chargeSum, currentSum float64
	var count int
	charging := false

	for _, base := range c.entries {
		percentSum += readPercent(base)
		count++

		status, _ := probing.File(filepath.Join(base, "status"))
		discharging := strings.TrimSpace(status) == "Discharging"
		if strings.TrimSpace(status) == "Charging" {
			charging = true
		}

		// Power only counts while actually draining; a charging battery
		// reports the charger's current, not consumption.
		if !discharging {
			continue
		}
		if probing.Exists(filepath.Join(base, "power_now")) {
			power, _ := probing.FileFloat(filepath.Join(base, "power_now"))
			watts += power / 1e6
		} else {
			current, _ := probing.FileFloat(filepath.Join(base, "current_now"))
			voltage, _ := probing.FileFloat(filepath.Join(base, "voltage_now"))
			watts += current * voltage / 1e12
		}

		charge, _ := probing.FileFloat(filepath.Join(base, "charge_now"))
		current, _ := probing.FileFloat(filepath.Join(base, "current_now"))
		chargeSum += charge
		currentSum += current
	}

	if count == 0 {
		return
	}

	m := &metrics.Battery{
		Percent:  percentSum / float64(count),
		Watts:    watts,
		Charging: charging,
	}

	c.currents[c.idx] = currentSum
	c.idx = (c.idx + 1) % currentSamples
	if c.filled < currentSamples {
		c.filled++
	}
	if mean := rollingMean(c.currents[:c.filled]); mean > 0 && chargeSum > 0 {
		m.RemainingSeconds = chargeSum / mean * 3600
	}

	d.Battery = m
}

func readPercent(base string) float64 {
	if probing.Exists(filepath.Join(base, "capacity")) {
		v, _ := probing.FileFloat(filepath.Join(base, "capacity"))
		return v
	}
	for _, pair := range [][2]string{{"charge_now", "charge_full"}, {"energy_now", "energy_full"}} {
		now, _ := probing.FileFloat(filepath.Join(base, pair[0]))
		full, _ := probing.FileFloat(filepath.Join(base, pair[1]))
		if full > 0 {
			return now / full * 100
		}
	}
	return 0
}

func rollingMean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
