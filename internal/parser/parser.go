package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// Matches an optionally signed number with thousands separators and an
	// optional decimal part, e.g. "1,299.99" inside "$1,299.99" or "CAD 24.50".
	numberPattern = regexp.MustCompile(`[-+]?\d[\d,]*\.?\d*`)
	digitsPattern = regexp.MustCompile(`\d+`)

	// A digit run immediately qualified by the word "review". Label blobs
	// like "4.6 out of 5 stars, 812 reviews" encode the rating first, so a
	// bare first-digits scan would return the rating's integer part.
	reviewsPattern = regexp.MustCompile(`(?i)(\d+)\s*review`)
)

// ParsePrice extracts a numeric price magnitude from strings like
// "$1,299.99" or "CAD 24.50". Currency symbols and codes are ignored as
// surrounding text. Returns nil when no numeric substring is present or the
// match does not parse.
func ParsePrice(text string) *float64 {
	text = strings.TrimSpace(strings.ReplaceAll(text, " ", " "))
	if text == "" {
		return nil
	}

	match := numberPattern.FindString(text)
	if match == "" {
		return nil
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return nil
	}

	return &value
}

// ParseRating extracts a rating from strings like "4.6 out of 5" or "4.6".
// Out-of-range values are clamped to [0, 5] rather than rejected, and the
// result is rounded to one decimal place.
func ParseRating(text string) *float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	match := numberPattern.FindString(text)
	if match == "" {
		return nil
	}

	value, err := strconv.ParseFloat(strings.ReplaceAll(match, ",", ""), 64)
	if err != nil {
		return nil
	}

	if value < 0 {
		value = 0
	}
	if value > 5 {
		value = 5
	}
	value = math.Round(value*10) / 10

	return &value
}

// ParseReviewsCount extracts a review count from strings like
// "(1,024 reviews)" or "123". A count qualified by the word "review" wins
// over the first bare digit run. Returns nil when no digits are present.
func ParseReviewsCount(text string) *int {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	cleaned := strings.ReplaceAll(text, ",", "")

	match := ""
	if m := reviewsPattern.FindStringSubmatch(cleaned); m != nil {
		match = m[1]
	} else {
		match = digitsPattern.FindString(cleaned)
	}
	if match == "" {
		return nil
	}

	value, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}

	return &value
}
