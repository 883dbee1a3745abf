// Package models defines the persisted types of the inventory feature: the
// Vehicle catalog record and the SyncLog ledger entry.
//
// Invariants:
//   - VIN is the sole natural key; the vehicles table enforces uniqueness on it.
//   - FirstSeenAt is write-once and always <= LastSeenAt.
//   - Status is active iff the vehicle appeared in the most recent completed
//     sync; there is no deleted state.
//   - SyncLog rows are append-only and never mutated.
package models
