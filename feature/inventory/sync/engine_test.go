package sync_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"dealersync/core/database"
	"dealersync/feature/inventory/catalog"
	"dealersync/feature/inventory/ledger"
	"dealersync/feature/inventory/models"
	"dealersync/feature/inventory/scrape"
	"dealersync/feature/inventory/sync"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fixture struct {
	engine  *sync.Engine
	catalog *catalog.Store
	ledger  *ledger.Store
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	assert.NoError(t, err)

	cat := catalog.NewStore(db)
	assert.NoError(t, cat.AutoMigrate())

	led := ledger.NewStore(db)
	assert.NoError(t, led.AutoMigrate())

	engine := sync.NewEngine(cat, led, zap.NewNop(),
		sync.WithWorkers(1),
		sync.WithClock(func() time.Time { return now }),
	)
	return &fixture{engine: engine, catalog: cat, ledger: led}
}

func listing(vin, title, price, mileage string) scrape.RawListing {
	return scrape.RawListing{
		VIN:         vin,
		Title:       title,
		PriceText:   price,
		MileageText: mileage,
	}
}

func TestRun_AddUpdateRetire(t *testing.T) {
	run1 := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	f := newFixture(t, run1)
	ctx := context.Background()

	first, err := f.engine.Run(ctx, []scrape.RawListing{
		listing("VIN-A", "Audi A4 2021", "$33,795", "45,210 km"),
		listing("VIN-B", "Audi Q5 2022", "$51,200", "18,400 km"),
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, first.AddedCount)
	assert.Equal(t, 0, first.UpdatedCount)
	assert.Equal(t, 0, first.RetiredCount)
	assert.Equal(t, int64(2), first.TotalActiveAfter)

	// B changes price, C is new, A disappears.
	second, err := f.engine.Run(ctx, []scrape.RawListing{
		listing("VIN-B", "Audi Q5 2022", "$49,900", "18,400 km"),
		listing("VIN-C", "Audi A3 2023", "$41,300", "9,800 km"),
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, second.AddedCount)
	assert.Equal(t, 1, second.UpdatedCount)
	assert.Equal(t, 1, second.RetiredCount)
	assert.Equal(t, int64(2), second.TotalActiveAfter)

	retired, err := f.catalog.Get(ctx, "VIN-A")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusInactive, retired.Status)

	count, err := f.ledger.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestRun_IdenticalSnapshotIsNoOp(t *testing.T) {
	run1 := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	f := newFixture(t, run1)
	ctx := context.Background()

	snapshot := []scrape.RawListing{
		listing("VIN-A", "Audi A4 2021", "$33,795", "45,210 km"),
		listing("VIN-B", "Audi Q5 2022", "$51,200", "18,400 km"),
	}

	_, err := f.engine.Run(ctx, snapshot)
	assert.NoError(t, err)

	second, err := f.engine.Run(ctx, snapshot)
	assert.NoError(t, err)
	assert.Equal(t, 0, second.AddedCount)
	assert.Equal(t, 0, second.UpdatedCount)
	assert.Equal(t, 0, second.RetiredCount)
	assert.Equal(t, int64(2), second.TotalActiveAfter)
}

func TestRun_EmptySnapshotRejected(t *testing.T) {
	run1 := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	f := newFixture(t, run1)
	ctx := context.Background()

	_, err := f.engine.Run(ctx, []scrape.RawListing{
		listing("VIN-A", "Audi A4 2021", "$33,795", "45,210 km"),
	})
	assert.NoError(t, err)

	outcome, err := f.engine.Run(ctx, nil)
	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, sync.ErrEmptySnapshot)

	// The catalog is untouched and no ledger entry was written.
	stored, err := f.catalog.Get(ctx, "VIN-A")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusActive, stored.Status)

	count, err := f.ledger.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRun_AllRecordsRejectedTreatedAsEmpty(t *testing.T) {
	run1 := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	f := newFixture(t, run1)
	ctx := context.Background()

	_, err := f.engine.Run(ctx, []scrape.RawListing{
		listing("VIN-A", "Audi A4 2021", "$33,795", "45,210 km"),
	})
	assert.NoError(t, err)

	outcome, err := f.engine.Run(ctx, []scrape.RawListing{
		listing("", "Mystery card", "$1", "1 km"),
		listing("   ", "Another mystery", "$2", "2 km"),
	})
	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, sync.ErrEmptySnapshot)

	stored, err := f.catalog.Get(ctx, "VIN-A")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusActive, stored.Status)
}

func TestRun_DuplicateVINLastWins(t *testing.T) {
	run1 := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	f := newFixture(t, run1)
	ctx := context.Background()

	outcome, err := f.engine.Run(ctx, []scrape.RawListing{
		listing("VIN-A", "Audi A4 2021", "$33,795", "45,210 km"),
		listing("VIN-A", "Audi A4 2021", "$32,500", "45,210 km"),
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, outcome.AddedCount)
	assert.Equal(t, int64(1), outcome.TotalActiveAfter)

	stored, err := f.catalog.Get(ctx, "VIN-A")
	assert.NoError(t, err)
	assert.Equal(t, int64(32500), stored.Price)
}

func TestRun_SkippedRecordsCounted(t *testing.T) {
	run1 := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	f := newFixture(t, run1)

	outcome, err := f.engine.Run(context.Background(), []scrape.RawListing{
		listing("VIN-A", "Audi A4 2021", "$33,795", "45,210 km"),
		listing("", "Card without a link", "$10,000", "1 km"),
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, outcome.AddedCount)
	assert.Equal(t, 1, outcome.SkippedCount)
}

func TestRun_ReactivationPreservesFirstSeen(t *testing.T) {
	run1 := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	run2 := run1.Add(24 * time.Hour)
	run3 := run2.Add(24 * time.Hour)
	ctx := context.Background()

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	assert.NoError(t, err)
	cat := catalog.NewStore(db)
	assert.NoError(t, cat.AutoMigrate())
	led := ledger.NewStore(db)
	assert.NoError(t, led.AutoMigrate())

	now := run1
	engine := sync.NewEngine(cat, led, zap.NewNop(),
		sync.WithWorkers(1),
		sync.WithClock(func() time.Time { return now }),
	)

	snapA := []scrape.RawListing{listing("VIN-A", "Audi A4 2021", "$33,795", "45,210 km")}
	snapB := []scrape.RawListing{listing("VIN-B", "Audi Q5 2022", "$51,200", "18,400 km")}

	_, err = engine.Run(ctx, snapA)
	assert.NoError(t, err)

	now = run2
	_, err = engine.Run(ctx, snapB)
	assert.NoError(t, err)

	now = run3
	outcome, err := engine.Run(ctx, snapA)
	assert.NoError(t, err)
	assert.Equal(t, 0, outcome.AddedCount)
	assert.Equal(t, 1, outcome.RetiredCount)

	revived, err := cat.Get(ctx, "VIN-A")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusActive, revived.Status)
	assert.True(t, revived.FirstSeenAt.Equal(run1))
	assert.True(t, revived.LastSeenAt.Equal(run3))
}

// failingCatalog errors on every call past a configured point.
type failingCatalog struct {
	sync.Catalog
	failUpsert bool
}

func (f *failingCatalog) Upsert(ctx context.Context, candidate *models.Vehicle, runTime time.Time) (sync.UpsertResult, error) {
	if f.failUpsert {
		return sync.UpsertResult{}, errors.New("connection reset")
	}
	return f.Catalog.Upsert(ctx, candidate, runTime)
}

type failingLedger struct {
	appends int
}

func (f *failingLedger) Append(ctx context.Context, entry *models.SyncLog) error {
	f.appends++
	return errors.New("disk full")
}

func TestRun_StoreUnavailableAborts(t *testing.T) {
	run1 := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	f := newFixture(t, run1)
	ctx := context.Background()

	broken := &failingCatalog{Catalog: f.catalog, failUpsert: true}
	engine := sync.NewEngine(broken, f.ledger, zap.NewNop(),
		sync.WithWorkers(1),
		sync.WithClock(func() time.Time { return run1 }),
	)

	outcome, err := engine.Run(ctx, []scrape.RawListing{
		listing("VIN-A", "Audi A4 2021", "$33,795", "45,210 km"),
	})
	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, sync.ErrStoreUnavailable)

	// An aborted run leaves no ledger trace.
	count, err := f.ledger.Count(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRun_LedgerWriteFailureKeepsCatalog(t *testing.T) {
	run1 := time.Date(2026, 8, 1, 6, 0, 0, 0, time.UTC)
	ctx := context.Background()

	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	assert.NoError(t, err)
	cat := catalog.NewStore(db)
	assert.NoError(t, cat.AutoMigrate())

	led := &failingLedger{}
	engine := sync.NewEngine(cat, led, zap.NewNop(),
		sync.WithWorkers(1),
		sync.WithClock(func() time.Time { return run1 }),
	)

	outcome, err := engine.Run(ctx, []scrape.RawListing{
		listing("VIN-A", "Audi A4 2021", "$33,795", "45,210 km"),
	})
	assert.ErrorIs(t, err, sync.ErrLedgerWrite)
	assert.Equal(t, 1, led.appends)

	// The catalog mutation stands and the outcome is still reported.
	assert.NotNil(t, outcome)
	assert.Equal(t, 1, outcome.AddedCount)

	stored, err := cat.Get(ctx, "VIN-A")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusActive, stored.Status)
}
