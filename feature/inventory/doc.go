// Package inventory implements the used-vehicle inventory feature.
//
// It tracks the vehicles listed on a dealership website, reconciles each
// scraped snapshot against the persisted catalog, and serves the reconciled
// state plus a price estimate over HTTP.
//
// # Components
//
//   - Service: orchestrates scrape, reconciliation, ledger and price model.
//   - Handler: exposes the HTTP endpoints.
//   - Feature: registers the module with the application loader.
//
// The reconciliation semantics live in the sync subpackage; the store
// implementations live in catalog and ledger; listing cleanup lives in
// normalize; snapshot production and archiving live in scrape; the price
// model lives in predict.
//
// # HTTP Endpoints
//
//   - GET  /vehicles              : active vehicles
//   - GET  /vehicles/:vin/predict : price estimate vs listed price
//   - GET  /sync-status           : latest completed sync outcome
//   - POST /trigger-sync          : start a background sync (409 if running)
//   - GET  /report                : inventory, sync and model summary
package inventory
