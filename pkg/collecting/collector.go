package collecting

import "GpuVkUsage/pkg/metrics"

// Collector defines the interface for all metric collectors. Each collector
// fills its own section of the sample; sections are disjoint so concurrent
// collection needs no locking.
type Collector interface {
	Name() string
	CollectStatic(s *metrics.Static)
	CollectDynamic(d *metrics.Sample)
	Close() error
}
