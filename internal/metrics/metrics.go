package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	InstancesListed *prometheus.GaugeVec

	ProbeCounter *prometheus.CounterVec

	ActionCounter *prometheus.CounterVec

	RunTimeSummary *prometheus.SummaryVec

	StoreQueryErrorCount *prometheus.CounterVec
)

func init() {
	InstancesListed = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gcesync_instances_listed",
			Help: "A gauge metric of the instances listed from the cloud inventory source by instance state",
		},
		[]string{"source", "state"},
	)

	ProbeCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gcesync_port_probes_total",
			Help: "A counter metric to measure the total count of remote access port probes by port and result",
		},
		[]string{"port", "open"},
	)

	ActionCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gcesync_actions_total",
			Help: "A counter metric to measure the sum of import and delete actions by status",
		},
		[]string{"action", "status"},
	)

	RunTimeSummary = promauto.NewSummaryVec(
		prometheus.SummaryOpts{
			Name: "gcesync_run_duration_seconds",
			Help: "A summary metric to measure the total time spent in each sync run",
		},
		[]string{"mode"},
	)

	StoreQueryErrorCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gcesync_store_query_error_count",
			Help: "A counter metric to measure the total count of errors querying the asset store.",
		},
		[]string{"storeKind", "queryKind"},
	)
}

// WriteTextfile writes the gathered metrics to the given path in the node_exporter textfile collector format.
//
// A one-shot run has no lifetime to serve a scrape endpoint from, the textfile is picked up by node_exporter instead.
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}

	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return errors.Wrap(err, "metrics textfile: "+path)
	}

	return nil
}
