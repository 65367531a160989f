// Package snapshot writes and reads the pipeline's dated artifacts: the raw
// scrape CSV and the validated fact table.
package snapshot

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rcastro/listing-snapshot/internal/models"
)

var rawHeader = []string{"sku", "name", "price_list", "price_sale", "rating", "reviews_count", "product_url"}

// RawFilename returns the dated raw artifact path under dir.
func RawFilename(dir string, day time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("products_raw_%s.csv", day.Format("2006-01-02")))
}

// WriteRaw serializes records as the raw CSV artifact. Absent numeric values
// become empty fields.
func WriteRaw(records []models.ProductRecord, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create raw file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(rawHeader); err != nil {
		return fmt.Errorf("failed to write raw header: %w", err)
	}

	for _, record := range records {
		row := []string{
			record.SKU,
			record.Name,
			formatFloat(record.PriceList),
			formatFloat(record.PriceSale),
			formatFloat(record.Rating),
			formatInt(record.ReviewsCount),
			record.ProductURL,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write raw row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush raw file: %w", err)
	}

	return nil
}

// ReadRaw loads a raw artifact back into typed records. String columns are
// trimmed and numeric columns parsed leniently: an unparseable value becomes
// absent rather than an error, matching the coercion the fact table expects.
// Ratings are re-rounded to one decimal place.
func ReadRaw(path string) ([]models.ProductRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raw file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read raw file: %w", err)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("raw file %s is empty", path)
	}

	header := rows[0]
	if len(header) != len(rawHeader) {
		return nil, fmt.Errorf("raw file %s has unexpected header %v", path, header)
	}
	for i, name := range rawHeader {
		if strings.TrimSpace(header[i]) != name {
			return nil, fmt.Errorf("raw file %s has unexpected header %v", path, header)
		}
	}

	records := make([]models.ProductRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(rawHeader) {
			continue
		}
		records = append(records, models.ProductRecord{
			SKU:          strings.TrimSpace(row[0]),
			Name:         strings.TrimSpace(row[1]),
			PriceList:    coerceFloat(row[2]),
			PriceSale:    coerceFloat(row[3]),
			Rating:       coerceRating(row[4]),
			ReviewsCount: coerceInt(row[5]),
			ProductURL:   strings.TrimSpace(row[6]),
		})
	}

	return records, nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func coerceFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func coerceRating(raw string) *float64 {
	v := coerceFloat(raw)
	if v == nil {
		return nil
	}
	rounded := math.Round(*v*10) / 10
	return &rounded
}

func coerceInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}
	return nil
}
