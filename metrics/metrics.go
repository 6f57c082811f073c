// Package metrics provides Prometheus metrics for the LEDD API.
// HTTP metrics:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// Domain metrics track calculations served, the proposal branch chosen for
// each rule, catalog reloads and the size of the table in use.
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (clients seen since the last cleanup)",
		},
	)

	CalculationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledd_calculations_total",
			Help: "Calculations served, by kind (ledd, timeline, proposals)",
		},
		[]string{"kind"},
	)

	LEDDTotal = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ledd_total_mg",
			Help:    "Distribution of computed LEDD totals",
			Buckets: []float64{100, 200, 300, 400, 600, 800, 1000, 1200, 1600, 2000},
		},
	)

	ProposalBranchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proposal_branch_total",
			Help: "Proposal rule branches selected, by proposal title and branch",
		},
		[]string{"title", "branch"},
	)

	CatalogEntries = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "catalog_entries",
			Help: "Entries in the drug reference table currently in use",
		},
		[]string{"state"},
	)

	CatalogReloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_reloads_total",
			Help: "Catalog reload attempts by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(CalculationsTotal)
	prometheus.MustRegister(LEDDTotal)
	prometheus.MustRegister(ProposalBranchTotal)
	prometheus.MustRegister(CatalogEntries)
	prometheus.MustRegister(CatalogReloadsTotal)
}

// RecordCatalog publishes the size of a freshly loaded catalog
func RecordCatalog(total, active int) {
	CatalogEntries.WithLabelValues("total").Set(float64(total))
	CatalogEntries.WithLabelValues("active").Set(float64(active))
}
