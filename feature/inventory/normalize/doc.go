// Package normalize cleans raw scraped listings into catalog record candidates.
//
// A listing without a VIN is rejected with ErrMissingIdentifier; everything
// else is best-effort. The price correction heuristic (divide by 100 above
// PriceScaleThreshold) compensates for an upstream formatting bug where cents
// are emitted as whole units. The correction is idempotent only because the
// threshold is far above any plausible real price; a genuine price in that
// range would be corrupted. That is an accepted approximation.
package normalize
