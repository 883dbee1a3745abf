// Package storage provides the object storage client used to archive scrape
// snapshots.
//
// It wraps the MinIO SDK behind a narrow Client interface so that the archive
// sink can be mocked in tests. Archiving is optional; when disabled in the
// configuration no client is created and runs proceed without it.
package storage
