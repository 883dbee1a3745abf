package sync

import (
	"context"
	"errors"
	"time"

	"dealersync/feature/inventory/models"
)

// ErrEmptySnapshot rejects a run whose snapshot contains no usable records.
// Applying such a snapshot would retire the entire catalog, which is far more
// likely an upstream scrape failure than a real clearance sale. No mutation
// and no ledger entry happen; the caller may retry next cycle.
var ErrEmptySnapshot = errors.New("empty snapshot rejected")

// ErrStoreUnavailable wraps catalog store failures. The run aborts; upserts
// already applied for prior keys remain. Individual upserts are idempotent,
// so the next run heals any partial application. No ledger entry is written,
// which lets observers detect the incomplete cycle via a stale last sync.
var ErrStoreUnavailable = errors.New("catalog store unavailable")

// ErrLedgerWrite marks a run whose catalog mutations all succeeded but whose
// ledger entry could not be appended. The catalog state change stands; the
// outcome is still returned alongside this error.
var ErrLedgerWrite = errors.New("sync ledger write failed")

// UpsertResult reports what an upsert did to the catalog.
type UpsertResult struct {
	// WasInsert is true when no prior record with that VIN existed.
	WasInsert bool
	// Changed is true when at least one field actually changed value.
	// A lastSeenAt refresh alone does not set it.
	Changed bool
}

// Catalog is the durable keyed store the engine reconciles against.
type Catalog interface {
	// ListVINs returns the set of known VINs, optionally filtered by status.
	ListVINs(ctx context.Context, statuses ...models.Status) (map[string]struct{}, error)

	// Get returns the record for a VIN or catalog.ErrNotFound.
	Get(ctx context.Context, vin string) (*models.Vehicle, error)

	// Upsert writes the candidate under its VIN, forcing status active and
	// lastSeenAt to runTime. firstSeenAt is set only on insert, never
	// overwritten. Safe to retry.
	Upsert(ctx context.Context, candidate *models.Vehicle, runTime time.Time) (UpsertResult, error)

	// BulkSetStatus transitions the given VINs to the status and returns the
	// number of records that actually changed state.
	BulkSetStatus(ctx context.Context, vins []string, status models.Status) (int64, error)

	// CountByStatus counts records currently in the given status.
	CountByStatus(ctx context.Context, status models.Status) (int64, error)
}

// Ledger records one immutable outcome per completed run.
type Ledger interface {
	Append(ctx context.Context, entry *models.SyncLog) error
}
