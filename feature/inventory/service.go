package inventory

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"dealersync/feature/inventory/catalog"
	"dealersync/feature/inventory/ledger"
	"dealersync/feature/inventory/models"
	"dealersync/feature/inventory/predict"
	"dealersync/feature/inventory/scrape"
	enginesync "dealersync/feature/inventory/sync"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrSyncInProgress is returned when a reconciliation run is already holding
// the run lock. Retries happen on the next trigger, not inside the service.
var ErrSyncInProgress = errors.New("sync already in progress")

// modelTTL bounds how stale a cached price model may get between syncs.
const modelTTL = 15 * time.Minute

// syncTimeout bounds one background scrape+reconcile run.
const syncTimeout = 5 * time.Minute

// Service orchestrates the inventory feature: it owns the catalog, the
// ledger, the reconciliation engine, the snapshot producer and the price
// model cache.
type Service struct {
	catalog  *catalog.Store
	ledger   *ledger.Store
	engine   *enginesync.Engine
	producer scrape.Producer
	archiver *scrape.Archiver
	model    *predict.Cache
	logger   *zap.Logger
	lockPath string
	running  atomic.Bool
}

// NewService wires the inventory service. archiver may be nil when snapshot
// archiving is disabled.
func NewService(db *gorm.DB, producer scrape.Producer, archiver *scrape.Archiver, logger *zap.Logger, lockPath string) *Service {
	cat := catalog.NewStore(db)
	led := ledger.NewStore(db)

	s := &Service{
		catalog:  cat,
		ledger:   led,
		engine:   enginesync.NewEngine(cat, led, logger),
		producer: producer,
		archiver: archiver,
		logger:   logger,
		lockPath: lockPath,
	}
	s.model = predict.NewCache(modelTTL, func(ctx context.Context) (*predict.Model, error) {
		active, err := cat.ListByStatus(ctx, models.StatusActive)
		if err != nil {
			return nil, err
		}
		return predict.Fit(active)
	})
	return s
}

// Migrate creates the catalog and ledger tables.
func (s *Service) Migrate() error {
	if err := s.catalog.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate catalog: %w", err)
	}
	if err := s.ledger.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate ledger: %w", err)
	}
	return nil
}

// ActiveVehicles returns the vehicles present in the last completed sync.
func (s *Service) ActiveVehicles(ctx context.Context) ([]models.Vehicle, error) {
	return s.catalog.ListByStatus(ctx, models.StatusActive)
}

// Vehicle returns one record by VIN, or catalog.ErrNotFound.
func (s *Service) Vehicle(ctx context.Context, vin string) (*models.Vehicle, error) {
	return s.catalog.Get(ctx, vin)
}

// Prediction is the price estimate for one vehicle.
type Prediction struct {
	VIN            string  `json:"vin"`
	ActualPrice    int64   `json:"actual_price"`
	PredictedPrice float64 `json:"predicted_price"`
	Difference     float64 `json:"difference"`
}

// PredictPrice estimates the price of one cataloged vehicle.
// Returns catalog.ErrNotFound for an unknown VIN and
// predict.ErrModelUnavailable when the catalog is too small to fit.
func (s *Service) PredictPrice(ctx context.Context, vin string) (*Prediction, error) {
	vehicle, err := s.catalog.Get(ctx, vin)
	if err != nil {
		return nil, err
	}

	model, err := s.model.Get(ctx)
	if err != nil {
		return nil, err
	}

	predicted := model.Predict(vehicle)
	return &Prediction{
		VIN:            vehicle.VIN,
		ActualPrice:    vehicle.Price,
		PredictedPrice: predicted,
		Difference:     predicted - float64(vehicle.Price),
	}, nil
}

// Model returns the current price model, fitting it if needed.
func (s *Service) Model(ctx context.Context) (*predict.Model, error) {
	return s.model.Get(ctx)
}

// LatestSync returns the most recent ledger entry, or ledger.ErrEmpty.
func (s *Service) LatestSync(ctx context.Context) (*models.SyncLog, error) {
	return s.ledger.Latest(ctx)
}

// RunSync performs one scrape+reconcile cycle. At most one run may touch the
// catalog at a time; an in-process flag plus a cross-process file lock
// enforce that precondition. On enginesync.ErrLedgerWrite the catalog
// mutations stand and the outcome is returned alongside the error.
func (s *Service) RunSync(ctx context.Context) (*models.SyncLog, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	defer s.running.Store(false)

	fl := flock.New(s.lockPath)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock %s: %w", s.lockPath, err)
	}
	if !locked {
		return nil, ErrSyncInProgress
	}
	defer fl.Unlock()

	s.logger.Info("Running inventory sync")

	snapshot, err := s.producer.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("snapshot fetch failed: %w", err)
	}

	if s.archiver != nil && len(snapshot) > 0 {
		if obj, err := s.archiver.Archive(ctx, time.Now().UTC(), snapshot); err != nil {
			// Archiving is best-effort; a run never fails on it.
			s.logger.Warn("Snapshot archive failed", zap.Error(err))
		} else {
			s.logger.Debug("Snapshot archived", zap.String("object", obj))
		}
	}

	outcome, err := s.engine.Run(ctx, snapshot)
	if outcome != nil {
		// Catalog changed; the next prediction must see the fresh state.
		s.model.Invalidate()
	}
	return outcome, err
}

// TriggerSync starts a sync in the background. Returns false when a run is
// already in flight.
func (s *Service) TriggerSync() bool {
	if s.running.Load() {
		return false
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()

		outcome, err := s.RunSync(ctx)
		switch {
		case errors.Is(err, ErrSyncInProgress):
			s.logger.Warn("Sync trigger lost the run lock")
		case errors.Is(err, enginesync.ErrLedgerWrite):
			s.logger.Error("Sync changed the catalog but its ledger entry is missing", zap.Error(err))
		case err != nil:
			s.logger.Error("Sync failed", zap.Error(err))
		default:
			s.logger.Info("Triggered sync finished",
				zap.Int("added", outcome.AddedCount),
				zap.Int("updated", outcome.UpdatedCount),
				zap.Int("retired", outcome.RetiredCount),
			)
		}
	}()
	return true
}
