// Package metrics exposes a running scheduler's counters as a
// Prometheus collector, so a long simulation can be watched live via
// promhttp rather than only inspected after Run returns.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nt-sched/wfq"
)

// Snapshot is the set of scheduler-observable values the collector
// reports. Callers update it after every dispatch (or on whatever
// cadence they choose); Collect reads whatever was last recorded.
type Snapshot struct {
	PacketsDispatched int64
	FlowsCreated      int
	VirtualTime       float64
	SumActiveWeight   float64
}

// Collector is a [prometheus.Collector] reporting the most recent
// [Snapshot] of a [wfq.Scheduler]. The zero value is not usable; use
// [NewCollector].
type Collector struct {
	mu       sync.Mutex
	snapshot Snapshot

	packetsDesc *prometheus.Desc
	flowsDesc   *prometheus.Desc
	vtimeDesc   *prometheus.Desc
	sumWDesc    *prometheus.Desc
}

// NewCollector creates a [Collector] with all metrics at zero.
// constLabels is attached to every metric; it typically carries the
// run's correlation id.
func NewCollector(constLabels prometheus.Labels) *Collector {
	return &Collector{
		packetsDesc: prometheus.NewDesc(
			"wfq_packets_dispatched_total",
			"Total number of packets dispatched by the scheduler so far.",
			nil, constLabels,
		),
		flowsDesc: prometheus.NewDesc(
			"wfq_flows_created_total",
			"Total number of distinct flows observed so far.",
			nil, constLabels,
		),
		vtimeDesc: prometheus.NewDesc(
			"wfq_virtual_time",
			"Current value of the scheduler's virtual time V(t).",
			nil, constLabels,
		),
		sumWDesc: prometheus.NewDesc(
			"wfq_sum_active_weight",
			"Current sum of weights over backlogged flows (Σw).",
			nil, constLabels,
		),
	}
}

// Update records a new snapshot. Safe to call from a goroutine other
// than the one running the scheduler's event loop, as long as the
// caller only calls it between steps (e.g. from the emit callback).
func (c *Collector) Update(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = s
}

// UpdateFromScheduler is a convenience wrapper for the common case of
// updating from the scheduler directly after a dispatch, given the
// running dispatch count maintained by the caller (the scheduler does
// not count dispatches itself).
func (c *Collector) UpdateFromScheduler(s *wfq.Scheduler, packetsDispatched int64) {
	c.Update(Snapshot{
		PacketsDispatched: packetsDispatched,
		FlowsCreated:      s.FlowCount(),
		VirtualTime:       s.VirtualTime(),
		SumActiveWeight:   s.SumActiveWeight(),
	})
}

// Describe implements [prometheus.Collector].
func (c *Collector) Describe(descs chan<- *prometheus.Desc) {
	descs <- c.packetsDesc
	descs <- c.flowsDesc
	descs <- c.vtimeDesc
	descs <- c.sumWDesc
}

// Collect implements [prometheus.Collector].
func (c *Collector) Collect(metrics chan<- prometheus.Metric) {
	c.mu.Lock()
	s := c.snapshot
	c.mu.Unlock()

	metrics <- prometheus.MustNewConstMetric(c.packetsDesc, prometheus.CounterValue, float64(s.PacketsDispatched))
	metrics <- prometheus.MustNewConstMetric(c.flowsDesc, prometheus.CounterValue, float64(s.FlowsCreated))
	metrics <- prometheus.MustNewConstMetric(c.vtimeDesc, prometheus.GaugeValue, s.VirtualTime)
	metrics <- prometheus.MustNewConstMetric(c.sumWDesc, prometheus.GaugeValue, s.SumActiveWeight)
}
