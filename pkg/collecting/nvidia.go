package collecting

import (
	"errors"
	"fmt"
	"log"

	"GpuVkUsage/pkg/metrics"

	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

type Nvidia struct {
	initialized bool
	devices     []nvml.Device
}

// NewNvidia initializes NVML and grabs a handle per device. Hosts without
// the library or without NVIDIA GPUs get a nil collector.
func NewNvidia() *Nvidia {
	n := &Nvidia{}
	if err := n.init(); err != nil {
		log.Printf("WARNING: NVML collector disabled: %v", err)
		return nil
	}
	return n
}

func (n *Nvidia) Name() string { return "NVML" }

func (n *Nvidia) init() error {
	if ret := nvml.Init(); !errors.Is(ret, nvml.SUCCESS) {
		return fmt.Errorf("failed to initialize NVML: %s", nvml.ErrorString(ret))
	}

	count, ret := nvml.DeviceGetCount()
	if !errors.Is(ret, nvml.SUCCESS) || count == 0 {
		nvml.Shutdown()
		return fmt.Errorf("no NVIDIA devices found")
	}

	n.devices = make([]nvml.Device, count)
	for i := 0; i < count; i++ {
		n.devices[i], _ = nvml.DeviceGetHandleByIndex(i)
	}
	n.initialized = true
	return nil
}

func (n *Nvidia) Close() error {
	if n.initialized {
		nvml.Shutdown()
		n.initialized = false
	}
	return nil
}

func (n *Nvidia) CollectStatic(s *metrics.Static) {
	for i, device := range n.devices {
		info := metrics.GPUInfo{Index: i, Driver: "nvidia"}
		if name, ret := device.GetName(); errors.Is(ret, nvml.SUCCESS) {
			info.Name = name
		}
		s.GPUs = append(s.GPUs, info)
	}
}

func (n *Nvidia) CollectDynamic(d *metrics.Sample) {
	for i, device := range n.devices {
		g := metrics.GPUDynamic{Index: i}

		if util, ret := device.GetUtilizationRates(); errors.Is(ret, nvml.SUCCESS) {
			g.BusyPercent = float64(util.Gpu)
		}
		if mem, ret := device.GetMemoryInfo(); errors.Is(ret, nvml.SUCCESS) {
			g.MemoryUsedBytes = int64(mem.Used)
			g.MemoryTotalBytes = int64(mem.Total)
		}
		if temp, ret := device.GetTemperature(nvml.TEMPERATURE_GPU); errors.Is(ret, nvml.SUCCESS) {
			g.TemperatureC = float64(temp)
		}
		if power, ret := device.GetPowerUsage(); errors.Is(ret, nvml.SUCCESS) {
			g.PowerWatts = float64(power) / 1000.0
		}

		d.GPUs = append(d.GPUs, g)
	}
}
