package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "placemap",
		Subsystem: "import",
		Name:      "runs_total",
		Help:      "Import runs broken down by kind and terminal phase.",
	}, []string{"kind", "phase"})

	importRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "placemap",
		Subsystem: "import",
		Name:      "rows_total",
		Help:      "Imported rows broken down by kind and result (inserted, skipped, invalid).",
	}, []string{"kind", "result"})

	categoriesAutoCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "placemap",
		Subsystem: "import",
		Name:      "categories_created_total",
		Help:      "Categories created on behalf of place imports.",
	})

	auditFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "placemap",
		Subsystem: "import",
		Name:      "audit_failures_total",
		Help:      "Import log entries that could not be written.",
	})

	importDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "placemap",
		Subsystem: "import",
		Name:      "duration_seconds",
		Help:      "Wall time of import runs from receipt to terminal phase.",
		Buckets: []float64{
			0.01, 0.05, 0.1, 0.25, 0.5,
			1, 2.5, 5, 10, 30, 60,
		},
	}, []string{"kind", "phase"})

	activeImports = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "placemap",
		Subsystem: "import",
		Name:      "active",
		Help:      "Import runs currently holding a limiter slot.",
	})
)
