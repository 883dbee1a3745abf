package sync

import (
	"context"
	"fmt"
	"sort"
	gosync "sync"
	"time"

	"dealersync/feature/inventory/models"
	"dealersync/feature/inventory/normalize"
	"dealersync/feature/inventory/scrape"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// defaultWorkers bounds the concurrent per-VIN upserts of one run.
const defaultWorkers = 8

// Engine reconciles a scraped snapshot against the persisted catalog.
//
// It is not safe to invoke concurrently against the same catalog: reading the
// key set and the bulk retire are not one atomic transaction. Callers must
// hold a run lock for the duration of Run; the service layer does this with a
// file lock.
type Engine struct {
	catalog Catalog
	ledger  Ledger
	logger  *zap.Logger
	workers int
	now     func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithWorkers sets the upsert worker pool size.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithClock overrides the run timestamp source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a reconciliation engine over the given capabilities.
func NewEngine(catalog Catalog, ledger Ledger, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		ledger:  ledger,
		logger:  logger,
		workers: defaultWorkers,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes one reconciliation: it normalizes the snapshot, upserts every
// scraped vehicle, retires active vehicles absent from the snapshot, and
// appends one ledger entry.
//
// The returned outcome is nil on any failure except ErrLedgerWrite, where the
// catalog mutations stand and the outcome is returned alongside the error.
func (e *Engine) Run(ctx context.Context, snapshot []scrape.RawListing) (*models.SyncLog, error) {
	runTime := e.now().UTC()

	if len(snapshot) == 0 {
		return nil, fmt.Errorf("%w: snapshot has no records", ErrEmptySnapshot)
	}

	candidates, skipped := e.normalizeSnapshot(snapshot)
	if len(candidates) == 0 {
		// Every record was rejected. Treat like an empty snapshot: applying
		// it would retire the whole catalog.
		return nil, fmt.Errorf("%w: all %d records rejected by normalizer", ErrEmptySnapshot, len(snapshot))
	}

	added, updated, err := e.applyUpserts(ctx, candidates, runTime)
	if err != nil {
		return nil, err
	}

	retired, err := e.retireAbsent(ctx, candidates)
	if err != nil {
		return nil, err
	}

	totalActive, err := e.catalog.CountByStatus(ctx, models.StatusActive)
	if err != nil {
		return nil, fmt.Errorf("%w: count active: %v", ErrStoreUnavailable, err)
	}

	entry := &models.SyncLog{
		Timestamp:        runTime,
		AddedCount:       added,
		UpdatedCount:     updated,
		RetiredCount:     retired,
		SkippedCount:     skipped,
		TotalActiveAfter: totalActive,
	}

	e.logger.Info("Sync complete",
		zap.Int("added", added),
		zap.Int("updated", updated),
		zap.Int("retired", retired),
		zap.Int("skipped", skipped),
		zap.Int64("total_active", totalActive),
	)

	if err := e.ledger.Append(ctx, entry); err != nil {
		e.logger.Error("Ledger append failed after catalog mutation", zap.Error(err))
		return entry, fmt.Errorf("%w: %v", ErrLedgerWrite, err)
	}

	return entry, nil
}

// normalizeSnapshot cleans every raw listing and collapses duplicate VINs,
// last occurrence wins, so the store never sees two conflicting writes for
// the same key in one run. Rejected records are counted, not raised.
func (e *Engine) normalizeSnapshot(snapshot []scrape.RawListing) (map[string]*models.Vehicle, int) {
	candidates := make(map[string]*models.Vehicle, len(snapshot))
	skipped := 0

	for _, raw := range snapshot {
		vehicle, err := normalize.Listing(raw)
		if err != nil {
			skipped++
			e.logger.Debug("Skipping listing", zap.String("title", raw.Title), zap.Error(err))
			continue
		}
		candidates[vehicle.VIN] = vehicle
	}

	return candidates, skipped
}

// applyUpserts writes every candidate through a bounded worker pool.
// VINs are independent keys, so the upserts run concurrently; the counters
// are accumulated under a mutex.
func (e *Engine) applyUpserts(ctx context.Context, candidates map[string]*models.Vehicle, runTime time.Time) (added, updated int, err error) {
	var mu gosync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for vin, candidate := range candidates {
		g.Go(func() error {
			result, err := e.catalog.Upsert(gctx, candidate, runTime)
			if err != nil {
				return fmt.Errorf("%w: upsert %s: %v", ErrStoreUnavailable, vin, err)
			}

			mu.Lock()
			defer mu.Unlock()
			switch {
			case result.WasInsert:
				added++
			case result.Changed:
				updated++
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, 0, err
	}
	return added, updated, nil
}

// retireAbsent transitions every active vehicle missing from the snapshot to
// inactive. It runs only after all upserts are applied, so the retirement set
// is computed against the final scraped key set.
func (e *Engine) retireAbsent(ctx context.Context, candidates map[string]*models.Vehicle) (int, error) {
	activeVins, err := e.catalog.ListVINs(ctx, models.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("%w: list active vins: %v", ErrStoreUnavailable, err)
	}

	var retire []string
	for vin := range activeVins {
		if _, scraped := candidates[vin]; !scraped {
			retire = append(retire, vin)
		}
	}
	if len(retire) == 0 {
		return 0, nil
	}
	sort.Strings(retire)

	affected, err := e.catalog.BulkSetStatus(ctx, retire, models.StatusInactive)
	if err != nil {
		return 0, fmt.Errorf("%w: bulk retire: %v", ErrStoreUnavailable, err)
	}

	return int(affected), nil
}
