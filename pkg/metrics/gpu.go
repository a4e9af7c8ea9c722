package metrics

// GPUInfo identifies one GPU node, collected once per session.
type GPUInfo struct {
	Index    int    `json:"index"`
	Node     string `json:"node,omitempty"`
	Driver   string `json:"driver,omitempty"`
	VendorID string `json:"vendorId,omitempty"`
	DeviceID string `json:"deviceId,omitempty"`
	Name     string `json:"name,omitempty"`
}

// GPUDynamic is one GPU's interval utilization.
type GPUDynamic struct {
	Index            int     `json:"index"`
	BusyPercent      float64 `json:"busyPercent"`
	MemoryUsedBytes  int64   `json:"memoryUsedBytes,omitempty"`
	MemoryTotalBytes int64   `json:"memoryTotalBytes,omitempty"`
	TemperatureC     float64 `json:"temperatureC,omitempty"`
	PowerWatts       float64 `json:"powerWatts,omitempty"`
}
