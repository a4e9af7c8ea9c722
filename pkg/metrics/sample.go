// Package metrics defines the sample types the collectors produce.
package metrics

// Static describes the host once per session.
type Static struct {
	SessionID        string    `json:"sessionId"`
	Hostname         string    `json:"hostname"`
	Kernel           string    `json:"kernel,omitempty"`
	CPUModel         string    `json:"cpuModel,omitempty"`
	NumProcessors    int       `json:"numProcessors,omitempty"`
	MemoryTotalBytes int64     `json:"memoryTotalBytes,omitempty"`
	SwapTotalBytes   int64     `json:"swapTotalBytes,omitempty"`
	GPUs             []GPUInfo `json:"gpus,omitempty"`
}

// Sample is one collection interval. Collectors fill their own section;
// sections stay nil when their collector is disabled or has no data.
type Sample struct {
	Timestamp int64        `json:"timestamp"`
	Battery   *Battery     `json:"battery,omitempty"`
	CPU       *CPU         `json:"cpu,omitempty"`
	Memory    *Memory      `json:"memory,omitempty"`
	Network   *Network     `json:"network,omitempty"`
	IO        *IO          `json:"io,omitempty"`
	GPUs      []GPUDynamic `json:"gpus,omitempty"`
	Frame     *Frame       `json:"frame,omitempty"`
}

// Frame is the Vulkan sampler's smoothed per-frame view.
type Frame struct {
	FrameTimeMs  float64 `json:"frameTimeMs,omitempty"`
	GpuBusyMs    float64 `json:"gpuBusyMs"`
	UsagePercent float64 `json:"usagePercent"`
	FPS          float64 `json:"fps,omitempty"`
}
