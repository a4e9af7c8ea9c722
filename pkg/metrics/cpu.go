package metrics

// CPU is the interval view of /proc/stat plus frequency and load average.
type CPU struct {
	LoadPercent float64 `json:"loadPercent"`
	LoadAvg     float64 `json:"loadAvg"`
	MHz         float64 `json:"mhz,omitempty"`
}
