// Package metrics exposes internal node counters through a Prometheus
// registry. Adapted from the teacher's pkg/monitoring/prometheus client
// (which pulls samples from a live server) into a registry that is
// itself the source of truth, since a sensor node has no Prometheus
// server to query.
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Registry holds the node's internal gauges and counters.
type Registry struct {
	reg *prometheus.Registry

	ArenaBytesUsed   prometheus.Gauge
	QueueDepth       prometheus.Gauge
	ActionsRanked    prometheus.Counter
	ReportsSent      prometheus.Counter
	ReportsAcked     prometheus.Counter
	WakeSeconds      prometheus.Counter
	SleepSeconds     prometheus.Counter
}

// New creates and registers the node's metric set.
func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		ArenaBytesUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sensornode_arena_bytes_used",
			Help: "Live bytes currently occupied in the data arena.",
		}),
		QueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sensornode_queue_depth",
			Help: "Number of live records in the data queue.",
		}),
		ActionsRanked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensornode_actions_ranked_total",
			Help: "Number of action types dispatched from a ranked list.",
		}),
		ReportsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensornode_reports_sent_total",
			Help: "Number of report datagrams successfully encoded.",
		}),
		ReportsAcked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensornode_reports_acked_total",
			Help: "Number of reports acknowledged by the server.",
		}),
		WakeSeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensornode_wake_seconds_total",
			Help: "Cumulative seconds spent awake.",
		}),
		SleepSeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sensornode_sleep_seconds_total",
			Help: "Cumulative seconds spent asleep.",
		}),
	}

	reg.MustRegister(r.ArenaBytesUsed, r.QueueDepth, r.ActionsRanked,
		r.ReportsSent, r.ReportsAcked, r.WakeSeconds, r.SleepSeconds)

	return r
}

// WriteText renders the current metric set in Prometheus text exposition
// format, for bench harnesses to scrape over a pipe or log capture.
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.reg.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
