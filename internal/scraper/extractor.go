package scraper

import (
	"strings"

	"github.com/rcastro/listing-snapshot/internal/config"
	"github.com/rcastro/listing-snapshot/internal/dom"
	"github.com/rcastro/listing-snapshot/internal/models"
	"github.com/rcastro/listing-snapshot/internal/parser"
)

// Extractor turns one listing card into a typed product record. Extraction
// never fails: a field whose selector finds nothing, or whose text does not
// parse, degrades to an empty or absent value.
type Extractor struct {
	selectors config.Selectors
}

func NewExtractor(selectors config.Selectors) *Extractor {
	return &Extractor{selectors: selectors}
}

// fieldSource produces one candidate raw text for a field. Sources are tried
// in order until a parser yields a value, so new fallbacks append to the
// slice instead of growing nested conditionals.
type fieldSource func(card dom.Element) string

// ExtractRecord reads every configured field off a single card.
func (e *Extractor) ExtractRecord(card dom.Element) models.ProductRecord {
	record := models.ProductRecord{
		Name: e.extractValue(card, e.selectors.ProductName),
	}

	record.SKU = strings.TrimSpace(e.extractValue(card, e.selectors.ProductSKU))
	if record.SKU == "" {
		record.SKU = models.UnknownSKU
	}

	record.PriceList = parser.ParsePrice(e.extractValue(card, e.selectors.ProductListPrice))
	record.PriceSale = parser.ParsePrice(e.extractValue(card, e.selectors.ProductSalePrice))
	// Unconditional fallback: a missing sale price always takes the list
	// price, parsed or not.
	if record.PriceSale == nil {
		record.PriceSale = record.PriceList
	}

	for _, source := range e.ratingSources() {
		if record.Rating != nil {
			break
		}
		record.Rating = parser.ParseRating(source(card))
	}

	for _, source := range e.reviewsSources() {
		if record.ReviewsCount != nil {
			break
		}
		record.ReviewsCount = parser.ParseReviewsCount(source(card))
	}

	record.ProductURL = e.extractProductURL(card)

	return record
}

func (e *Extractor) ratingSources() []fieldSource {
	return []fieldSource{
		func(card dom.Element) string { return e.extractValue(card, e.selectors.ProductRating) },
		e.ariaLabel,
	}
}

func (e *Extractor) reviewsSources() []fieldSource {
	return []fieldSource{
		func(card dom.Element) string { return e.extractValue(card, e.selectors.ProductReviewsCount) },
		e.ariaLabel,
	}
}

// extractValue resolves one selector against a card. Attribute references
// ("@name") read the attribute off the card element itself; anything else is
// a scoped CSS selector whose first match contributes its full rendered
// text, nested inline elements included.
func (e *Extractor) extractValue(card dom.Element, selector string) string {
	if selector == "" {
		return ""
	}

	if dom.IsAttrRef(selector) {
		return strings.TrimSpace(card.Attr(dom.AttrName(selector)))
	}

	el := card.First(selector)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}

// ariaLabel reads the accessible label of the configured fallback element.
// The blob commonly encodes both rating and review count at once, e.g.
// "4.6 out of 5 stars, 812 reviews"; each parser scans it independently.
func (e *Extractor) ariaLabel(card dom.Element) string {
	if e.selectors.BVAriaSource == "" {
		return ""
	}

	el := card.First(e.selectors.BVAriaSource)
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Attr("aria-label"))
}

// extractProductURL picks the first hyperlink in document order whose target
// contains the configured product-path marker. Best effort; no match leaves
// the field empty.
func (e *Extractor) extractProductURL(card dom.Element) string {
	if e.selectors.ProductLinkMarker == "" {
		return ""
	}

	for _, link := range card.All("a[href]") {
		href := strings.TrimSpace(link.Attr("href"))
		if href != "" && strings.Contains(href, e.selectors.ProductLinkMarker) {
			return href
		}
	}
	return ""
}
