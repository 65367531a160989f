package quality

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/rcastro/listing-snapshot/internal/models"
)

func TestMetricsObserveReport(t *testing.T) {
	bad := validRecord()
	bad.PriceList = models.Float(-5)
	bad.Rating = models.Float(6.0)

	_, report := Validate([]models.ProductRecord{validRecord(), bad})

	metrics := NewMetrics()
	metrics.Observe(report)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.RowsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RowsValid))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.RowsInvalid))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.InvalidReasons.WithLabelValues(ReasonInvalidPriceList)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.InvalidReasons.WithLabelValues(ReasonInvalidRating)))
}

func TestMetricsNilSafe(t *testing.T) {
	var metrics *Metrics

	assert.NotPanics(t, func() {
		metrics.Observe(Report{TotalRows: 1, InvalidRows: 1, InvalidReasons: map[string]int{ReasonInvalidName: 1}})
	})
}
