package metrics

// Battery is the combined state of every discharging battery entry.
type Battery struct {
	Percent          float64 `json:"percent"`
	Watts            float64 `json:"watts"`
	RemainingSeconds float64 `json:"remainingSeconds,omitempty"`
	Charging         bool    `json:"charging"`
}
