package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcastro/listing-snapshot/internal/config"
	"github.com/rcastro/listing-snapshot/internal/dom"
	"github.com/rcastro/listing-snapshot/internal/models"
)

func cardFromHTML(t *testing.T, html string) dom.Element {
	t.Helper()

	doc, err := dom.NewStaticDocument(strings.NewReader(html))
	require.NoError(t, err)

	card := doc.First("div.cc-product-card")
	require.NotNil(t, card, "fixture must contain a product card")
	return card
}

func TestExtractRecordFullCard(t *testing.T) {
	card := cardFromHTML(t, `
		<div class="cc-product-card" data-oe-item-list-price="$199.99" data-oe-item-sale-price="$149.99">
			<div class="cc-product-card-title"><span class="cc-text-overflow">Heavy-Duty <strong>Workbench</strong></span></div>
			<div class="cc-product-sku-container"><small>SKU: <span>#</span><span>8675309</span></small></div>
			<div class="bv_averageRating_component_container"><span class="bv_text">4.5</span></div>
			<div class="bv_numReviews_component_container"><span class="bv_text">(12)</span></div>
			<a href="/en/product/8675309">View</a>
		</div>`)

	extractor := NewExtractor(config.DefaultSelectors())
	record := extractor.ExtractRecord(card)

	// Name text includes nested inline elements.
	assert.Equal(t, "Heavy-Duty Workbench", record.Name)
	assert.Equal(t, "8675309", record.SKU)
	require.NotNil(t, record.PriceList)
	assert.InDelta(t, 199.99, *record.PriceList, 0.0001)
	require.NotNil(t, record.PriceSale)
	assert.InDelta(t, 149.99, *record.PriceSale, 0.0001)
	require.NotNil(t, record.Rating)
	assert.InDelta(t, 4.5, *record.Rating, 0.0001)
	require.NotNil(t, record.ReviewsCount)
	assert.Equal(t, 12, *record.ReviewsCount)
	assert.Equal(t, "/en/product/8675309", record.ProductURL)
}

func TestExtractRecordSalePriceFallsBackToListPrice(t *testing.T) {
	card := cardFromHTML(t, `
		<div class="cc-product-card" data-oe-item-list-price="$10.00">
			<div class="cc-product-card-title"><span class="cc-text-overflow">Shop Towels</span></div>
		</div>`)

	extractor := NewExtractor(config.DefaultSelectors())
	record := extractor.ExtractRecord(card)

	require.NotNil(t, record.PriceList)
	require.NotNil(t, record.PriceSale)
	assert.InDelta(t, 10.0, *record.PriceList, 0.0001)
	assert.InDelta(t, 10.0, *record.PriceSale, 0.0001)
}

func TestExtractRecordAriaFallbackForRatingAndReviews(t *testing.T) {
	card := cardFromHTML(t, `
		<div class="cc-product-card">
			<div class="cc-product-card-title"><span class="cc-text-overflow">Air Compressor</span></div>
			<a class="bv_main_container" href="#reviews" aria-label="4.6 out of 5 stars, 812 reviews"></a>
		</div>`)

	extractor := NewExtractor(config.DefaultSelectors())
	record := extractor.ExtractRecord(card)

	require.NotNil(t, record.Rating)
	assert.InDelta(t, 4.6, *record.Rating, 0.0001)
	require.NotNil(t, record.ReviewsCount)
	assert.Equal(t, 812, *record.ReviewsCount)
}

func TestExtractRecordPrimaryRatingWinsOverAria(t *testing.T) {
	card := cardFromHTML(t, `
		<div class="cc-product-card">
			<div class="cc-product-card-title"><span class="cc-text-overflow">Air Compressor</span></div>
			<div class="bv_averageRating_component_container"><span class="bv_text">5.0</span></div>
			<a class="bv_main_container" href="#reviews" aria-label="4.6 out of 5 stars, 812 reviews"></a>
		</div>`)

	extractor := NewExtractor(config.DefaultSelectors())
	record := extractor.ExtractRecord(card)

	require.NotNil(t, record.Rating)
	assert.InDelta(t, 5.0, *record.Rating, 0.0001)
	// Reviews still come from the aria blob since no primary count exists.
	require.NotNil(t, record.ReviewsCount)
	assert.Equal(t, 812, *record.ReviewsCount)
}

func TestExtractRecordMissingSKUGetsSentinel(t *testing.T) {
	card := cardFromHTML(t, `
		<div class="cc-product-card">
			<div class="cc-product-card-title"><span class="cc-text-overflow">Mystery Item</span></div>
		</div>`)

	extractor := NewExtractor(config.DefaultSelectors())
	record := extractor.ExtractRecord(card)

	assert.Equal(t, models.UnknownSKU, record.SKU)
}

func TestExtractRecordProductURLPicksFirstMarkedLink(t *testing.T) {
	card := cardFromHTML(t, `
		<div class="cc-product-card">
			<div class="cc-product-card-title"><span class="cc-text-overflow">Tool Chest</span></div>
			<a href="/en/category/storage">category</a>
			<a href="/en/product/555">first product link</a>
			<a href="/en/product/556">second product link</a>
		</div>`)

	extractor := NewExtractor(config.DefaultSelectors())
	record := extractor.ExtractRecord(card)

	assert.Equal(t, "/en/product/555", record.ProductURL)
}

func TestExtractRecordNoQualifyingLink(t *testing.T) {
	card := cardFromHTML(t, `
		<div class="cc-product-card">
			<div class="cc-product-card-title"><span class="cc-text-overflow">Tool Chest</span></div>
			<a href="/en/category/storage">category</a>
		</div>`)

	extractor := NewExtractor(config.DefaultSelectors())
	record := extractor.ExtractRecord(card)

	assert.Empty(t, record.ProductURL)
}

func TestExtractRecordEmptyCardNeverFails(t *testing.T) {
	card := cardFromHTML(t, `<div class="cc-product-card"></div>`)

	extractor := NewExtractor(config.DefaultSelectors())
	record := extractor.ExtractRecord(card)

	assert.Equal(t, models.UnknownSKU, record.SKU)
	assert.Empty(t, record.Name)
	assert.Nil(t, record.PriceList)
	assert.Nil(t, record.PriceSale)
	assert.Nil(t, record.Rating)
	assert.Nil(t, record.ReviewsCount)
	assert.Empty(t, record.ProductURL)
}
