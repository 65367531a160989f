package models

// UnknownSKU is the placeholder identifier substituted when no SKU text
// could be extracted from a card. It is intentionally non-empty so that
// extraction never produces an empty identifier; data-quality judgment
// happens later in the validator.
const UnknownSKU = "UNKNOWN"

// ProductRecord is one scraped product observation from a listing card.
// Optional numeric fields are nil when the card carried no parseable value.
type ProductRecord struct {
	SKU          string   `json:"sku"`
	Name         string   `json:"name"`
	PriceList    *float64 `json:"price_list"`
	PriceSale    *float64 `json:"price_sale"`
	Rating       *float64 `json:"rating"`
	ReviewsCount *int     `json:"reviews_count"`
	ProductURL   string   `json:"product_url"`
}

// Float returns a pointer to v. Convenience for building optional fields.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}
