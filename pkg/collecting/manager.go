package collecting

import (
	"log"
	"sync"

	"GpuVkUsage/pkg/metrics"
	"GpuVkUsage/pkg/probing"
	"GpuVkUsage/pkg/utils"
)

type Manager struct {
	collectors []Collector
	static     *metrics.Static
	concurrent bool
	mu         sync.RWMutex
}

func NewManager(cfg *utils.Config) *Manager {
	m := &Manager{
		collectors: make([]Collector, 0, 8),
		concurrent: cfg.Concurrent,
	}

	if !cfg.DisableCPU {
		m.collectors = append(m.collectors, NewCPU())
	}
	if !cfg.DisableMemory {
		m.collectors = append(m.collectors, NewMemory())
	}
	if !cfg.DisableBattery {
		if c := NewBattery(); c != nil {
			m.collectors = append(m.collectors, c)
		}
	}
	if !cfg.DisableNetwork {
		m.collectors = append(m.collectors, NewNetwork())
	}
	if !cfg.DisableIO {
		m.collectors = append(m.collectors, NewIOStats())
	}
	// One GPU collector owns the sample's GPU section. NVML wins when it is
	// available; the DRM sysfs collector covers everything else.
	var gpu Collector
	if !cfg.DisableNvidia {
		if c := NewNvidia(); c != nil {
			gpu = c
		}
	}
	if gpu == nil && !cfg.DisableGPU {
		if c := NewGPU(); c != nil {
			gpu = c
		}
	}
	if gpu != nil {
		m.collectors = append(m.collectors, gpu)
	}

	mode := "sequential"
	if m.concurrent {
		mode = "concurrent"
	}
	log.Printf("Initialized %d collectors (%s)", len(m.collectors), mode)
	return m
}

func (m *Manager) CollectStatic(s *metrics.Static) {
	if m.concurrent {
		var wg sync.WaitGroup
		wg.Add(len(m.collectors))
		for _, c := range m.collectors {
			go func(col Collector) {
				defer wg.Done()
				col.CollectStatic(s)
			}(c)
		}
		wg.Wait()
	} else {
		for _, c := range m.collectors {
			c.CollectStatic(s)
		}
	}

	m.mu.Lock()
	m.static = s
	m.mu.Unlock()
}

func (m *Manager) CollectDynamic() *metrics.Sample {
	d := &metrics.Sample{Timestamp: probing.GetTimestamp()}

	if m.concurrent {
		var wg sync.WaitGroup
		wg.Add(len(m.collectors))
		for _, c := range m.collectors {
			go func(col Collector) {
				defer wg.Done()
				col.CollectDynamic(d)
			}(c)
		}
		wg.Wait()
	} else {
		for _, c := range m.collectors {
			c.CollectDynamic(d)
		}
	}

	return d
}

func (m *Manager) Close() {
	for _, c := range m.collectors {
		if err := c.Close(); err != nil {
			log.Printf("Error closing collector %s: %v", c.Name(), err)
		}
	}
}

func (m *Manager) CollectorNames() []string {
	names := make([]string, len(m.collectors))
	for i, c := range m.collectors {
		names[i] = c.Name()
	}
	return names
}

func (m *Manager) GetStatic() *metrics.Static {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.static
}
