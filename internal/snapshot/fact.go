package snapshot

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rcastro/listing-snapshot/internal/models"
)

var factHeader = []string{"snapshot_date", "sku", "name", "price_list", "price_sale", "rating", "reviews_count", "product_url"}

// FactFilename returns the dated fact table path under dir.
func FactFilename(dir string, day time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("fact_product_snapshot_%s.csv", day.Format("2006-01-02")))
}

// WriteFact serializes validator-accepted records as the dated fact table,
// prepending the snapshot date to every row.
func WriteFact(records []models.ProductRecord, path string, snapshotDate string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create fact file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(factHeader); err != nil {
		return fmt.Errorf("failed to write fact header: %w", err)
	}

	for _, record := range records {
		row := []string{
			snapshotDate,
			record.SKU,
			record.Name,
			formatFloat(record.PriceList),
			formatFloat(record.PriceSale),
			formatFloat(record.Rating),
			formatInt(record.ReviewsCount),
			record.ProductURL,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write fact row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush fact file: %w", err)
	}

	return nil
}

// DedupeLatest keeps the last observation per SKU, preserving the relative
// order of the surviving rows. Optional behavior, off by default.
func DedupeLatest(records []models.ProductRecord) []models.ProductRecord {
	lastIndex := make(map[string]int, len(records))
	for i, record := range records {
		lastIndex[record.SKU] = i
	}

	deduped := make([]models.ProductRecord, 0, len(lastIndex))
	for i, record := range records {
		if lastIndex[record.SKU] == i {
			deduped = append(deduped, record)
		}
	}
	return deduped
}
