package snapshot

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
)

// ErrNoRawFiles signals that the processing stage has nothing to consume.
// It is a fatal condition for the transform run.
var ErrNoRawFiles = errors.New("no raw files found")

// LatestRaw returns the most recent dated raw artifact in dir. Filenames
// embed an ISO date, so lexicographic order is chronological order.
func LatestRaw(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "products_raw_*.csv"))
	if err != nil {
		return "", fmt.Errorf("failed to scan raw directory: %w", err)
	}

	if len(matches) == 0 {
		return "", fmt.Errorf("%w in %s (expected products_raw_YYYY-MM-DD.csv)", ErrNoRawFiles, dir)
	}

	sort.Strings(matches)
	return matches[len(matches)-1], nil
}
