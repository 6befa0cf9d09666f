package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AnalysesTotal counts completed analyses by mode (asset/portfolio) and status
var AnalysesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "riskcore_analyses_total",
		Help: "Total number of risk analyses performed",
	},
	[]string{"mode", "status"},
)

// AnalysisDuration records end-to-end latency of one analysis request
var AnalysisDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "riskcore_analysis_duration_seconds",
		Help:    "Latency in seconds to compute a full risk report",
		Buckets: prometheus.DefBuckets,
	},
)

// SectionFailures counts sub-analyses that were contained as unavailable
var SectionFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "riskcore_section_failures_total",
		Help: "Number of report sections degraded to an empty result",
	},
	[]string{"section"},
)

func init() {
	prometheus.MustRegister(AnalysesTotal, AnalysisDuration, SectionFailures)
}
