// Package audit exposes the kernel core's in-memory audit logs (capability
// lifecycle events, resource-budget exhaustion, fault-injection
// applications) as Prometheus metrics, promoting prometheus/client_golang
// from an unwired indirect teacher dependency to a direct one wired into a
// concrete cross-cutting component (spec §2 "Cross-cutting (audit, fault
// injection, SMP scaffolding)").
package audit

import (
	"github.com/prometheus/client_golang/prometheus"

	"pandakernel/internal/budget"
	"pandakernel/internal/capability"
	"pandakernel/internal/kernel"
)

// Collector is a prometheus.Collector snapshotting the live counts in a
// kernel's audit logs on every scrape, rather than mirroring counters
// separately (avoiding any drift between the in-memory log tests query and
// the metrics an operator scrapes).
type Collector struct {
	capAudit   capability.AuditLog
	budgetLog  *budget.ExhaustionLog
	faultPlan  *kernel.FaultPlan

	capEventsDesc   *prometheus.Desc
	budgetExhausted *prometheus.Desc
	faultApplied    *prometheus.Desc
}

// NewCollector returns a Collector reading from the given kernel's audit
// surfaces.
func NewCollector(k *kernel.SimulatedKernel) *Collector {
	return &Collector{
		capAudit:  k.Capabilities().Audit(),
		budgetLog: k.BudgetExhaustionLog(),
		faultPlan: k.Faults(),
		capEventsDesc: prometheus.NewDesc(
			"pandakernel_capability_events_total",
			"Total capability lifecycle events recorded, by kind.",
			[]string{"kind"}, nil,
		),
		budgetExhausted: prometheus.NewDesc(
			"pandakernel_budget_exhausted_total",
			"Total BudgetExhausted events recorded, by resource.",
			[]string{"resource"}, nil,
		),
		faultApplied: prometheus.NewDesc(
			"pandakernel_fault_applications_total",
			"Total fault-injection applications recorded, by kind.",
			[]string{"kind"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.capEventsDesc
	ch <- c.budgetExhausted
	ch <- c.faultApplied
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	byKind := map[capability.EventKind]int{}
	for _, e := range c.capAudit.Events() {
		byKind[e.Kind]++
	}
	for kind, n := range byKind {
		ch <- prometheus.MustNewConstMetric(c.capEventsDesc, prometheus.CounterValue, float64(n), string(kind))
	}

	byResource := map[budget.Resource]int{}
	for _, e := range c.budgetLog.Events() {
		byResource[e.Resource]++
	}
	for res, n := range byResource {
		ch <- prometheus.MustNewConstMetric(c.budgetExhausted, prometheus.CounterValue, float64(n), string(res))
	}

	byFault := map[kernel.FaultKind]int{}
	for _, a := range c.faultPlan.Applications() {
		byFault[a.Kind]++
	}
	for kind, n := range byFault {
		ch <- prometheus.MustNewConstMetric(c.faultApplied, prometheus.CounterValue, float64(n), string(kind))
	}
}

var _ prometheus.Collector = (*Collector)(nil)
