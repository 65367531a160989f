package quality

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the validation stage.
type Metrics struct {
	Registry       *prometheus.Registry
	RowsTotal      prometheus.Counter
	RowsValid      prometheus.Counter
	RowsInvalid    prometheus.Counter
	InvalidReasons *prometheus.CounterVec
}

// NewMetrics constructs and registers all collectors on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	total := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "validator_rows_total",
		Help: "Total rows examined by the validator.",
	})
	valid := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "validator_rows_valid_total",
		Help: "Rows that passed every data-quality rule.",
	})
	invalid := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "validator_rows_invalid_total",
		Help: "Rows excluded from the valid set.",
	})
	reasons := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "validator_invalid_reasons_total",
		Help: "Rule violations by reason code; one row may carry several reasons.",
	}, []string{"reason"})

	registry.MustRegister(total, valid, invalid, reasons)

	return &Metrics{
		Registry:       registry,
		RowsTotal:      total,
		RowsValid:      valid,
		RowsInvalid:    invalid,
		InvalidReasons: reasons,
	}
}

// Observe records the counts of one validation pass.
func (m *Metrics) Observe(report Report) {
	if m == nil {
		return
	}

	m.RowsTotal.Add(float64(report.TotalRows))
	m.RowsValid.Add(float64(report.ValidRows))
	m.RowsInvalid.Add(float64(report.InvalidRows))

	for reason, count := range report.InvalidReasons {
		m.InvalidReasons.WithLabelValues(reason).Add(float64(count))
	}
}
