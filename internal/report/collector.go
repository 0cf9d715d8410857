package report

import "github.com/prometheus/client_golang/prometheus"

// Collector projects Metrics counters into Prometheus. The atomics stay the
// source of truth so the loop never touches prometheus types directly.
type Collector struct {
	metrics *Metrics

	started       *prometheus.Desc
	completed     *prometheus.Desc
	exits         *prometheus.Desc
	startFailures *prometheus.Desc
}

// NewCollector creates a prometheus collector over the given metrics.
func NewCollector(m *Metrics) *Collector {
	return &Collector{
		metrics: m,
		started: prometheus.NewDesc(
			"fedsup_invocations_started_total",
			"Child spawn attempts",
			nil, nil,
		),
		completed: prometheus.NewDesc(
			"fedsup_invocations_completed_total",
			"Finished iterations, any outcome",
			nil, nil,
		),
		exits: prometheus.NewDesc(
			"fedsup_child_exits_total",
			"Child exits by outcome",
			[]string{"outcome"}, nil,
		),
		startFailures: prometheus.NewDesc(
			"fedsup_start_failures_total",
			"Iterations where the child never started",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.started
	ch <- c.completed
	ch <- c.exits
	ch <- c.startFailures
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.started, prometheus.CounterValue,
		float64(c.metrics.InvocationsStarted.Load()))
	ch <- prometheus.MustNewConstMetric(c.completed, prometheus.CounterValue,
		float64(c.metrics.InvocationsCompleted.Load()))
	ch <- prometheus.MustNewConstMetric(c.exits, prometheus.CounterValue,
		float64(c.metrics.ExitZero.Load()), "success")
	ch <- prometheus.MustNewConstMetric(c.exits, prometheus.CounterValue,
		float64(c.metrics.ExitNonZero.Load()), "failure")
	ch <- prometheus.MustNewConstMetric(c.startFailures, prometheus.CounterValue,
		float64(c.metrics.StartFailures.Load()))
}
