package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Selectors for the dealership inventory page. The card container and price
// classes are build-hashed, so we match on the stable part of the class name.
const (
	cardSelector    = "div[class*='CardContainer']"
	titleSelector   = "div[data-testid='model-name']"
	trimSelector    = "div[data-testid='trim-name']"
	mileageSelector = "div[data-testid='model-mileage']"
	priceSelector   = "div[class*='PriceBreakdown-styles__Total']"
	linkSelector    = "a[href*='vehicleId']"
)

// SiteProducer fetches the inventory page over HTTP and extracts listing cards.
type SiteProducer struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewSiteProducer creates a producer for the configured inventory page.
func NewSiteProducer(cfg Config, logger *zap.Logger) *SiteProducer {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 60
	}
	return &SiteProducer{
		url:    cfg.URL,
		client: &http.Client{Timeout: time.Duration(timeout) * time.Second},
		logger: logger,
	}
}

// Fetch downloads the inventory page and returns all parseable listing cards.
// Cards missing a listing URL or VIN are skipped and logged, not failed.
func (p *SiteProducer) Fetch(ctx context.Context) ([]RawListing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build inventory request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch inventory page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("inventory page returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse inventory page: %w", err)
	}

	listings := p.parseDocument(doc)
	p.logger.Info("Scraped inventory page",
		zap.String("url", p.url),
		zap.Int("listings", len(listings)),
	)

	return listings, nil
}

// parseDocument extracts one RawListing per card in the document.
func (p *SiteProducer) parseDocument(doc *goquery.Document) []RawListing {
	site := siteBase(p.url)

	var listings []RawListing
	doc.Find(cardSelector).Each(func(i int, card *goquery.Selection) {
		href, ok := card.Find(linkSelector).First().Attr("href")
		if !ok || href == "" {
			p.logger.Debug("Skipping card without listing link", zap.Int("card", i))
			return
		}

		full := href
		if !strings.HasPrefix(href, "http") {
			full = site + href
		}

		listings = append(listings, RawListing{
			VIN:           extractVIN(full),
			Title:         strings.TrimSpace(card.Find(titleSelector).First().Text()),
			Trim:          strings.TrimSpace(card.Find(trimSelector).First().Text()),
			MileageText:   strings.TrimSpace(card.Find(mileageSelector).First().Text()),
			PriceText:     strings.TrimSpace(card.Find(priceSelector).First().Text()),
			ListingURL:    full,
			SourceSiteURL: site,
		})
	})

	return listings
}

// extractVIN pulls the vehicleId query parameter from a listing URL.
// Returns empty when absent; the normalizer rejects such records.
func extractVIN(listingURL string) string {
	u, err := url.Parse(listingURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("vehicleId")
}

// siteBase reduces the inventory URL to scheme://host.
func siteBase(inventoryURL string) string {
	u, err := url.Parse(inventoryURL)
	if err != nil || u.Host == "" {
		return inventoryURL
	}
	return u.Scheme + "://" + u.Host
}
