package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProbesTotal tracks probe outcomes per endpoint
	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodewatch_probes_total",
			Help: "Total number of node status probes",
		},
		[]string{"endpoint", "status"},
	)

	// ProbeLatency tracks how long a status request takes
	ProbeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodewatch_probe_latency_seconds",
			Help:    "Node status request latency in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"endpoint"},
	)

	// EndpointLag tracks seconds since the node's latest block
	EndpointLag = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodewatch_endpoint_lag_seconds",
			Help: "Seconds between now and the node's latest block time",
		},
		[]string{"endpoint"},
	)

	// EndpointBlockHeight tracks the latest block height reported by the node
	EndpointBlockHeight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "nodewatch_endpoint_block_height",
			Help: "Latest block height reported by the node",
		},
		[]string{"endpoint"},
	)

	// HealthyEndpoints tracks the healthy count of the most recent cycle
	HealthyEndpoints = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nodewatch_healthy_endpoints",
			Help: "Number of healthy endpoints in the latest report cycle",
		},
	)

	// ReportCycles tracks report cycles by mode (full, problems)
	ReportCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodewatch_report_cycles_total",
			Help: "Total number of report cycles",
		},
		[]string{"mode"},
	)

	// Deliveries tracks notifier calls by result (ok, error)
	Deliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodewatch_report_deliveries_total",
			Help: "Total number of report deliveries",
		},
		[]string{"result"},
	)

	// ActiveSubscriptions tracks running auto-report schedules
	ActiveSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "nodewatch_active_subscriptions",
			Help: "Number of running auto-report schedules",
		},
	)
)
