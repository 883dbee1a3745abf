package scrape

import "context"

// RawListing is one listing card as observed on the inventory page.
// Numeric fields are carried as raw text; all parsing and cleanup happens in
// the normalize package so that malformed encodings are handled in one place.
type RawListing struct {
	// VIN is the vehicle identifier extracted from the listing URL.
	VIN         string `json:"vin"`
	Title       string `json:"title"`
	Trim        string `json:"trim"`
	PriceText   string `json:"price_text"`
	MileageText string `json:"mileage_text"`
	ListingURL  string `json:"listing_url"`
	// SourceSiteURL is the scheme+host of the dealership site.
	SourceSiteURL string `json:"source_site_url"`
}

// Producer yields the full set of listings observed in one scrape cycle.
type Producer interface {
	Fetch(ctx context.Context) ([]RawListing, error)
}
