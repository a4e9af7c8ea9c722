package metrics

// IO is the process's cumulative storage traffic and interval rates.
type IO struct {
	ReadMiB    float64 `json:"readMiB"`
	WriteMiB   float64 `json:"writeMiB"`
	ReadMiBps  float64 `json:"readMiBps"`
	WriteMiBps float64 `json:"writeMiBps"`
}
