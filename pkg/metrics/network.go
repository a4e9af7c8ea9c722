package metrics

// Interface is one network interface's interval throughput.
type Interface struct {
	Name  string  `json:"name"`
	RxBps float64 `json:"rxBps"`
	TxBps float64 `json:"txBps"`
}

type Network struct {
	Interfaces []Interface `json:"interfaces,omitempty"`
}
