package normalize

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"dealersync/feature/inventory/models"
	"dealersync/feature/inventory/scrape"
)

// ErrMissingIdentifier is returned when a raw listing carries no VIN.
// The record is dropped and counted, never stored.
var ErrMissingIdentifier = errors.New("listing has no vehicle identifier")

// PriceScaleThreshold is the sanity bound for listing prices. Any parsed
// price above it is assumed to be mis-scaled by a factor of 100 (cents parsed
// as whole units) and divided down. Idempotence of the correction relies on
// the threshold sitting far above any plausible real price.
const PriceScaleThreshold = 1_000_000

var (
	yearPattern     = regexp.MustCompile(`(20\d{2})`)
	nonDigit        = regexp.MustCompile(`[^\d]`)
	nonDecimalDigit = regexp.MustCompile(`[^\d.]`)
)

// Listing turns a raw scraped listing into a catalog record candidate.
// Status and the seen timestamps are owned by the catalog upsert, not set here.
func Listing(raw scrape.RawListing) (*models.Vehicle, error) {
	vin := strings.TrimSpace(raw.VIN)
	if vin == "" {
		return nil, ErrMissingIdentifier
	}

	title := strings.TrimSpace(raw.Title)

	return &models.Vehicle{
		VIN:           vin,
		Title:         title,
		Trim:          strings.TrimSpace(raw.Trim),
		Year:          yearFromTitle(title),
		Price:         Price(parsePrice(raw.PriceText)),
		MileageKm:     parseMileage(raw.MileageText),
		ListingURL:    strings.TrimSpace(raw.ListingURL),
		SourceSiteURL: strings.TrimSpace(raw.SourceSiteURL),
	}, nil
}

// Price applies the mis-scale correction to an already-parsed price.
// Values at or below the threshold pass through unchanged, so re-normalizing
// a corrected value never double-divides.
func Price(v int64) int64 {
	if v > PriceScaleThreshold {
		return v / 100
	}
	return v
}

// parsePrice turns a price string like "$33,795.00" into whole units (33795).
// Unparseable or absent prices become 0; callers must not read 0 as a quote.
func parsePrice(text string) int64 {
	cleaned := nonDecimalDigit.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}

// parseMileage strips everything but digits from a mileage string.
func parseMileage(text string) int64 {
	cleaned := nonDigit.ReplaceAllString(text, "")
	if cleaned == "" {
		return 0
	}
	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// yearFromTitle derives the model year from the listing title.
// Returns nil when no 20xx year appears; nil is "unknown", not zero.
func yearFromTitle(title string) *int {
	match := yearPattern.FindString(title)
	if match == "" {
		return nil
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &year
}
