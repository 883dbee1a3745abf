// Package ledger persists the append-only per-run sync outcomes.
//
// One entry is written per completed reconciliation run, after all catalog
// mutations succeed. Entries are never mutated or deleted; the presence of an
// entry is evidence the run fully completed.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"dealersync/feature/inventory/models"

	"gorm.io/gorm"
)

// ErrEmpty is returned by Latest when no sync has completed yet.
var ErrEmpty = errors.New("no sync recorded")

// Store is the GORM-backed sync ledger. It implements sync.Ledger.
type Store struct {
	db *gorm.DB
}

// NewStore creates a ledger store over the given database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the sync_logs table.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&models.SyncLog{})
}

// Append writes one run outcome.
func (s *Store) Append(ctx context.Context, entry *models.SyncLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append sync log: %w", err)
	}
	return nil
}

// Latest returns the most recent outcome by timestamp.
func (s *Store) Latest(ctx context.Context) (*models.SyncLog, error) {
	var entry models.SyncLog
	err := s.db.WithContext(ctx).Order("timestamp DESC").First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest sync log: %w", err)
	}
	return &entry, nil
}

// Count returns the number of recorded runs.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.SyncLog{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count sync logs: %w", err)
	}
	return count, nil
}
