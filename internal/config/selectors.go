package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Selectors describes where each product field lives on a listing card.
//
// A value starting with "@" is an attribute reference read from the card
// element itself (e.g. "@data-oe-item-sale-price"). Any other value is a CSS
// selector scoped to the card whose rendered text is the field value.
type Selectors struct {
	// Top-level card selector on the listing page.
	ProductCard string `yaml:"product_card"`

	ProductName         string `yaml:"product_name"`
	ProductSKU          string `yaml:"product_sku"`
	ProductListPrice    string `yaml:"product_list_price"`
	ProductSalePrice    string `yaml:"product_sale_price"`
	ProductRating       string `yaml:"product_rating"`
	ProductReviewsCount string `yaml:"product_reviews_count"`

	// Fallback element whose aria-label commonly encodes both rating and
	// review count, e.g. "4.6 out of 5 stars, 812 reviews" (Bazaarvoice).
	BVAriaSource string `yaml:"bv_aria_source"`

	// Pagination control.
	NextPageButton string `yaml:"next_page_button"`

	// Substring a card hyperlink must contain to count as the product's
	// deep link. Empty disables product URL extraction.
	ProductLinkMarker string `yaml:"product_link_marker"`
}

// DefaultSelectors matches the retailer layout the pipeline was built for.
func DefaultSelectors() Selectors {
	return Selectors{
		ProductCard:         "div.cc-product-card",
		ProductName:         ".cc-product-card-title .cc-text-overflow",
		ProductSKU:          ".cc-product-sku-container small span:nth-of-type(2)",
		ProductListPrice:    "@data-oe-item-list-price",
		ProductSalePrice:    "@data-oe-item-sale-price",
		ProductRating:       ".bv_averageRating_component_container .bv_text",
		ProductReviewsCount: ".bv_numReviews_component_container .bv_text",
		BVAriaSource:        "a.bv_main_container",
		NextPageButton:      "span.cc-pagination-button.cc-next",
		ProductLinkMarker:   "/product/",
	}
}

// LoadSelectors reads selector overrides from a YAML file on top of the
// defaults. Unrecognized keys are rejected so typos fail loudly instead of
// silently leaving a field on its default.
func LoadSelectors(path string) (Selectors, error) {
	selectors := DefaultSelectors()

	f, err := os.Open(path)
	if err != nil {
		return selectors, fmt.Errorf("failed to open selectors file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&selectors); err != nil {
		return selectors, fmt.Errorf("failed to parse selectors file %s: %w", path, err)
	}

	if err := selectors.Validate(); err != nil {
		return selectors, err
	}

	return selectors, nil
}

func (s Selectors) Validate() error {
	if s.ProductCard == "" {
		return fmt.Errorf("product_card selector cannot be empty")
	}
	if s.NextPageButton == "" {
		return fmt.Errorf("next_page_button selector cannot be empty")
	}
	return nil
}
