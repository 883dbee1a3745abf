// Package scrape produces raw inventory snapshots from the dealership website.
//
// It defines the Producer interface consumed by the reconciliation engine and
// two concrete pieces:
//
//   - SiteProducer: fetches the inventory page over HTTP and extracts one
//     RawListing per vehicle card using goquery selectors. Numeric values are
//     carried as raw text; parsing and correction belong to the normalize
//     package.
//   - Archiver: uploads each fetched snapshot to object storage
//     (snapshots/<timestamp>.json) so a run can be audited or replayed later.
//     Archive failures never fail a reconciliation run.
//
// The VIN is extracted from the vehicleId query parameter of the listing URL.
// Cards without a link are skipped at this stage; cards with a link but no
// vehicleId are passed through with an empty VIN and rejected downstream,
// where the rejection is counted.
package scrape
