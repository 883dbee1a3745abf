// Package sync implements the inventory reconciliation engine.
//
// Given a freshly scraped snapshot and the persisted catalog, the engine
// computes and applies the add/update/retire delta for one run:
//
//  1. Normalize the snapshot; duplicate VINs collapse last-occurrence-wins
//     and rejected records are counted, not raised.
//  2. Upsert every scraped vehicle (status active, lastSeenAt refreshed,
//     firstSeenAt write-once) through a bounded worker pool.
//  3. Retire every previously active vehicle absent from the snapshot.
//  4. Count the active records and append one ledger entry.
//
// An upsert that only refreshes lastSeenAt counts as neither added nor
// updated, keeping the run metrics meaningful. An empty (or fully rejected)
// snapshot aborts the run before any mutation rather than silently wiping the
// catalog.
//
// The ledger entry is written only after all catalog mutations succeed, so
// the presence of an entry is itself evidence that a run fully completed.
//
// The engine assumes at most one concurrent run per catalog; mutual exclusion
// is the caller's responsibility (the service layer holds a file lock).
package sync
