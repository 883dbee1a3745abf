package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dealersync/core/storage"

	"github.com/minio/minio-go/v7"
)

// Archiver persists raw snapshots to object storage for audit and replay.
type Archiver struct {
	client storage.Client
	bucket string
}

// NewArchiver creates a snapshot archiver writing to the given bucket.
func NewArchiver(client storage.Client, bucket string) *Archiver {
	return &Archiver{client: client, bucket: bucket}
}

// Archive uploads one snapshot as a JSON object keyed by the run timestamp.
// Returns the object name written.
func (a *Archiver) Archive(ctx context.Context, runTime time.Time, listings []RawListing) (string, error) {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return "", fmt.Errorf("failed to check archive bucket: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("failed to create archive bucket: %w", err)
		}
	}

	payload, err := json.MarshalIndent(listings, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	objName := fmt.Sprintf("snapshots/%s.json", runTime.UTC().Format("20060102T150405Z"))
	reader := bytes.NewReader(payload)

	_, err = a.client.PutObject(ctx, a.bucket, objName, reader, int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload snapshot %s: %w", objName, err)
	}

	return objName, nil
}
