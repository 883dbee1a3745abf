package normalize_test

import (
	"testing"

	"dealersync/feature/inventory/normalize"
	"dealersync/feature/inventory/scrape"

	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		want int64
	}{
		{"CentsMisScaled", 3379500, 33795},
		{"AlreadyNormalized", 33795, 33795},
		{"JustBelowThreshold", 999_999, 999_999},
		{"AtThreshold", 1_000_000, 1_000_000},
		{"JustAboveThreshold", 1_000_001, 10_000},
		{"Zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalize.Price(tt.in))
		})
	}
}

func TestPrice_Idempotent(t *testing.T) {
	// Applying the correction twice must equal applying it once.
	for _, v := range []int64{3379500, 33795, 999_999, 1_000_001} {
		once := normalize.Price(v)
		assert.Equal(t, once, normalize.Price(once), "price %d double-divided", v)
	}
}

func TestListing(t *testing.T) {
	t.Run("FullListing", func(t *testing.T) {
		raw := scrape.RawListing{
			VIN:           "WAUZZZ4G7JN123456",
			Title:         "Audi A4 2021 Progressiv",
			Trim:          " Progressiv ",
			PriceText:     "$33,795.00",
			MileageText:   "45 210 km",
			ListingURL:    "https://dealer.example/vehicle?vehicleId=WAUZZZ4G7JN123456",
			SourceSiteURL: "https://dealer.example",
		}

		v, err := normalize.Listing(raw)
		assert.NoError(t, err)
		assert.Equal(t, "WAUZZZ4G7JN123456", v.VIN)
		assert.Equal(t, "Progressiv", v.Trim)
		assert.Equal(t, int64(33795), v.Price)
		assert.Equal(t, int64(45210), v.MileageKm)
		if assert.NotNil(t, v.Year) {
			assert.Equal(t, 2021, *v.Year)
		}
	})

	t.Run("MisScaledPrice", func(t *testing.T) {
		raw := scrape.RawListing{VIN: "VIN1", PriceText: "3379500"}

		v, err := normalize.Listing(raw)
		assert.NoError(t, err)
		assert.Equal(t, int64(33795), v.Price)
	})

	t.Run("MissingVIN", func(t *testing.T) {
		_, err := normalize.Listing(scrape.RawListing{Title: "Audi Q5 2020"})
		assert.ErrorIs(t, err, normalize.ErrMissingIdentifier)
	})

	t.Run("WhitespaceVIN", func(t *testing.T) {
		_, err := normalize.Listing(scrape.RawListing{VIN: "   "})
		assert.ErrorIs(t, err, normalize.ErrMissingIdentifier)
	})

	t.Run("NoYearInTitle", func(t *testing.T) {
		v, err := normalize.Listing(scrape.RawListing{VIN: "VIN2", Title: "Audi TT"})
		assert.NoError(t, err)
		assert.Nil(t, v.Year)
	})

	t.Run("AbsentNumerics", func(t *testing.T) {
		v, err := normalize.Listing(scrape.RawListing{VIN: "VIN3"})
		assert.NoError(t, err)
		assert.Equal(t, int64(0), v.Price)
		assert.Equal(t, int64(0), v.MileageKm)
	})
}
