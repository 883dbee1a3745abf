package models

import "time"

// Status is the lifecycle state of a vehicle record.
type Status string

const (
	// StatusActive marks a vehicle present in the most recent completed sync.
	StatusActive Status = "active"
	// StatusInactive marks a vehicle absent from the most recent completed sync.
	// Records are never deleted; retirement is this status transition.
	StatusInactive Status = "inactive"
)

// Vehicle is one catalog record, keyed by VIN.
type Vehicle struct {
	// VIN is the sole natural key. Immutable once set.
	VIN   string `gorm:"column:vin;primaryKey;size:64" json:"vin"`
	Title string `gorm:"column:title" json:"title"`
	Trim  string `gorm:"column:trim" json:"trim"`
	// Year is nil when it could not be derived from the listing.
	Year *int `gorm:"column:year" json:"year"`
	// Price is the currency-normalized listing price in whole units.
	Price     int64  `gorm:"column:price" json:"price"`
	MileageKm int64  `gorm:"column:mileage_km" json:"mileage_km"`
	ListingURL    string `gorm:"column:listing_url" json:"listing_url"`
	SourceSiteURL string `gorm:"column:source_site_url" json:"source_site_url"`
	Status        Status `gorm:"column:status;size:16;index" json:"status"`
	// FirstSeenAt is set on insert and never overwritten.
	FirstSeenAt time.Time `gorm:"column:first_seen_at" json:"first_seen_at"`
	// LastSeenAt is refreshed every run the vehicle appears in.
	LastSeenAt time.Time `gorm:"column:last_seen_at" json:"last_seen_at"`
}

// TableName sets the vehicles table name for GORM.
func (Vehicle) TableName() string {
	return "vehicles"
}

// SyncLog is one immutable ledger entry per completed reconciliation run.
type SyncLog struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Timestamp time.Time `gorm:"column:timestamp;index" json:"timestamp"`
	// AddedCount is the number of vehicles inserted this run.
	AddedCount int `gorm:"column:added_count" json:"added"`
	// UpdatedCount is the number of vehicles with substantive field changes.
	// A lastSeenAt refresh alone does not count.
	UpdatedCount int `gorm:"column:updated_count" json:"updated"`
	// RetiredCount is the number of active vehicles transitioned to inactive.
	RetiredCount int `gorm:"column:retired_count" json:"retired"`
	// SkippedCount is the number of raw listings rejected by the normalizer.
	SkippedCount int `gorm:"column:skipped_count" json:"skipped"`
	// TotalActiveAfter is the active record count after all mutations.
	TotalActiveAfter int64 `gorm:"column:total_active_after" json:"total_active"`
}

// TableName sets the ledger table name for GORM.
func (SyncLog) TableName() string {
	return "sync_logs"
}
