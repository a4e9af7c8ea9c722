package metrics

// Memory combines system meminfo with the process's own footprint.
type Memory struct {
	UsedGiB     float64 `json:"usedGiB"`
	TotalGiB    float64 `json:"totalGiB"`
	SwapUsedGiB float64 `json:"swapUsedGiB"`
	ResidentMiB float64 `json:"residentMiB,omitempty"`
	SharedMiB   float64 `json:"sharedMiB,omitempty"`
	VirtualMiB  float64 `json:"virtualMiB,omitempty"`
}
