package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dealersync/feature/inventory/models"
	"dealersync/feature/inventory/sync"

	"gorm.io/gorm"
)

// ErrNotFound is returned when no record exists for a VIN.
var ErrNotFound = errors.New("vehicle not found")

// Store is the GORM-backed catalog. It implements sync.Catalog.
// Records are never deleted; retirement is a status transition.
type Store struct {
	db *gorm.DB
}

// NewStore creates a catalog store over the given database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the vehicles table.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&models.Vehicle{})
}

// ListVINs returns the set of known VINs, optionally filtered by status.
func (s *Store) ListVINs(ctx context.Context, statuses ...models.Status) (map[string]struct{}, error) {
	query := s.db.WithContext(ctx).Model(&models.Vehicle{})
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}

	var vins []string
	if err := query.Pluck("vin", &vins).Error; err != nil {
		return nil, fmt.Errorf("failed to list vins: %w", err)
	}

	set := make(map[string]struct{}, len(vins))
	for _, vin := range vins {
		set[vin] = struct{}{}
	}
	return set, nil
}

// Get returns the record for a VIN.
func (s *Store) Get(ctx context.Context, vin string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := s.db.WithContext(ctx).First(&vehicle, "vin = ?", vin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load vehicle %s: %w", vin, err)
	}
	return &vehicle, nil
}

// Upsert writes the candidate under its VIN, forcing status active and
// lastSeenAt to runTime. firstSeenAt is set on insert only and never touched
// again, including when an inactive vehicle reappears. Retry-safe: repeating
// the same upsert in the same run converges on the same row.
func (s *Store) Upsert(ctx context.Context, candidate *models.Vehicle, runTime time.Time) (sync.UpsertResult, error) {
	var result sync.UpsertResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Vehicle
		err := tx.First(&existing, "vin = ?", candidate.VIN).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			record := *candidate
			record.Status = models.StatusActive
			record.FirstSeenAt = runTime
			record.LastSeenAt = runTime
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to insert vehicle %s: %w", candidate.VIN, err)
			}
			result = sync.UpsertResult{WasInsert: true}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to look up vehicle %s: %w", candidate.VIN, err)
		}

		updates := substantiveDiff(&existing, candidate)
		changed := len(updates) > 0

		// lastSeenAt and status are always refreshed; first_seen_at is
		// deliberately absent from the map so it can never be overwritten.
		updates["status"] = models.StatusActive
		updates["last_seen_at"] = runTime

		if err := tx.Model(&models.Vehicle{}).Where("vin = ?", candidate.VIN).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update vehicle %s: %w", candidate.VIN, err)
		}

		result = sync.UpsertResult{Changed: changed}
		return nil
	})
	if err != nil {
		return sync.UpsertResult{}, err
	}
	return result, nil
}

// BulkSetStatus transitions the given VINs to the status. Records already in
// that status are excluded from the affected count.
func (s *Store) BulkSetStatus(ctx context.Context, vins []string, status models.Status) (int64, error) {
	if len(vins) == 0 {
		return 0, nil
	}

	res := s.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("vin IN ? AND status <> ?", vins, status).
		Update("status", status)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to bulk set status: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CountByStatus counts records currently in the given status.
func (s *Store) CountByStatus(ctx context.Context, status models.Status) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("status = ?", status).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count by status: %w", err)
	}
	return count, nil
}

// ListByStatus returns full records in the given status, cheapest first.
func (s *Store) ListByStatus(ctx context.Context, status models.Status) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("price ASC").
		Find(&vehicles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return vehicles, nil
}

// substantiveDiff maps the columns whose values actually differ between the
// stored record and the candidate. Seen timestamps and defaults are not part
// of the comparison.
func substantiveDiff(existing, candidate *models.Vehicle) map[string]any {
	updates := make(map[string]any)

	if existing.Title != candidate.Title {
		updates["title"] = candidate.Title
	}
	if existing.Trim != candidate.Trim {
		updates["trim"] = candidate.Trim
	}
	if !equalYear(existing.Year, candidate.Year) {
		updates["year"] = candidate.Year
	}
	if existing.Price != candidate.Price {
		updates["price"] = candidate.Price
	}
	if existing.MileageKm != candidate.MileageKm {
		updates["mileage_km"] = candidate.MileageKm
	}
	if existing.ListingURL != candidate.ListingURL {
		updates["listing_url"] = candidate.ListingURL
	}
	if existing.SourceSiteURL != candidate.SourceSiteURL {
		updates["source_site_url"] = candidate.SourceSiteURL
	}

	return updates
}

func equalYear(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
