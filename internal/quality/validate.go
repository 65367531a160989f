// Package quality applies data-quality rules to scraped product batches.
package quality

import (
	"strings"

	"github.com/rcastro/listing-snapshot/internal/models"
)

// Invalidity reason codes. A single record may carry several reasons; each
// increments its own counter independently.
const (
	ReasonInvalidName         = "invalid_name"
	ReasonInvalidSKU          = "invalid_sku"
	ReasonInvalidPriceList    = "invalid_price_list"
	ReasonInvalidPriceSale    = "invalid_price_sale"
	ReasonInvalidRating       = "invalid_rating"
	ReasonInvalidReviewsCount = "invalid_reviews_count"
)

// Report summarizes one validation pass.
type Report struct {
	TotalRows      int            `json:"total_rows"`
	ValidRows      int            `json:"valid_rows"`
	InvalidRows    int            `json:"invalid_rows"`
	InvalidReasons map[string]int `json:"invalid_reasons"`
}

// Validate partitions records into the valid set and a reason-coded report.
// Absence of an optional field never makes a record invalid; only an
// out-of-range present value does. Name and SKU must be non-empty after
// trimming. A record carrying any reason is excluded from the valid set
// exactly once, however many reasons it carries.
func Validate(records []models.ProductRecord) ([]models.ProductRecord, Report) {
	report := Report{
		TotalRows:      len(records),
		InvalidReasons: make(map[string]int),
	}

	valid := make([]models.ProductRecord, 0, len(records))

	for _, record := range records {
		reasons := rowReasons(record)
		if len(reasons) == 0 {
			valid = append(valid, record)
			continue
		}

		report.InvalidRows++
		for _, reason := range reasons {
			report.InvalidReasons[reason]++
		}
	}

	report.ValidRows = len(valid)
	return valid, report
}

func rowReasons(record models.ProductRecord) []string {
	var reasons []string

	if strings.TrimSpace(record.Name) == "" {
		reasons = append(reasons, ReasonInvalidName)
	}
	if strings.TrimSpace(record.SKU) == "" {
		reasons = append(reasons, ReasonInvalidSKU)
	}
	if record.PriceList != nil && *record.PriceList <= 0 {
		reasons = append(reasons, ReasonInvalidPriceList)
	}
	if record.PriceSale != nil && *record.PriceSale <= 0 {
		reasons = append(reasons, ReasonInvalidPriceSale)
	}
	if record.Rating != nil && (*record.Rating < 0 || *record.Rating > 5) {
		reasons = append(reasons, ReasonInvalidRating)
	}
	if record.ReviewsCount != nil && *record.ReviewsCount < 0 {
		reasons = append(reasons, ReasonInvalidReviewsCount)
	}

	return reasons
}
