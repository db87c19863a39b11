package pipeline

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AngelCh415/adreport/internal/models"
)

var (
	runsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "adreport",
		Name:      "pipeline_runs_total",
		Help:      "Report pipeline runs by outcome.",
	}, []string{"outcome"})

	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "adreport",
		Name:      "pipeline_duration_seconds",
		Help:      "Time from raw table to composed report.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
	})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "adreport",
		Name:      "cache_hits_total",
		Help:      "Reports served from the fingerprint memo.",
	})

	undefinedRatios = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "adreport",
		Name:      "undefined_ratios_total",
		Help:      "Derived ratios left undefined by a zero denominator.",
	}, []string{"metric"})
)

func outcome(err error) string {
	var schema *models.SchemaError
	var cell *models.CellError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrSourceNotFound):
		return "source_not_found"
	case errors.Is(err, models.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.As(err, &schema), errors.As(err, &cell):
		return "schema_error"
	}
	return "error"
}
