package inventory

import (
	"errors"

	"dealersync/core/logger"
	"dealersync/feature/inventory/catalog"
	"dealersync/feature/inventory/ledger"
	"dealersync/feature/inventory/models"
	"dealersync/feature/inventory/predict"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for the inventory feature.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the inventory routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/vehicles", h.HandleListVehicles)
	app.Get("/vehicles/:vin/predict", h.HandlePredictPrice)
	app.Get("/sync-status", h.HandleSyncStatus)
	app.Post("/trigger-sync", h.HandleTriggerSync)
	app.Get("/report", h.HandleReport)
}

// HandleListVehicles returns all active vehicles.
func (h *Handler) HandleListVehicles(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	vehicles, err := h.service.ActiveVehicles(c.Context())
	if err != nil {
		l.Error("Vehicle listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(vehicles)
}

// HandlePredictPrice returns the estimated price for one vehicle.
func (h *Handler) HandlePredictPrice(c *fiber.Ctx) error {
	vin := c.Params("vin")
	l := logger.WithRayID(h.logger, c)

	prediction, err := h.service.PredictPrice(c.Context(), vin)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "vehicle not found",
		})
	case errors.Is(err, predict.ErrModelUnavailable):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "price model not available yet; run a sync first",
		})
	case err != nil:
		l.Error("Price prediction failed", zap.String("vin", vin), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(prediction)
}

// HandleSyncStatus returns the latest completed sync outcome.
func (h *Handler) HandleSyncStatus(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	latest, err := h.service.LatestSync(c.Context())
	if errors.Is(err, ledger.ErrEmpty) {
		return c.JSON(fiber.Map{
			"message":   "no sync has been completed yet",
			"last_sync": nil,
		})
	}
	if err != nil {
		l.Error("Sync status lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"last_sync":    latest.Timestamp,
		"added":        latest.AddedCount,
		"updated":      latest.UpdatedCount,
		"retired":      latest.RetiredCount,
		"skipped":      latest.SkippedCount,
		"total_active": latest.TotalActiveAfter,
	})
}

// HandleTriggerSync starts a background scrape+reconcile run.
func (h *Handler) HandleTriggerSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	if !h.service.TriggerSync() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "a sync run is already in progress",
		})
	}

	l.Info("Sync triggered via API")
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "sync started",
	})
}

// ReportVehicle is one vehicle in the inventory report, with the model's
// estimate when one is available.
type ReportVehicle struct {
	models.Vehicle
	PredictedPrice  *float64 `json:"predicted_price"`
	PriceDifference *float64 `json:"price_difference"`
}

// Report aggregates the inventory, the latest sync and the price model.
type Report struct {
	TotalActive int             `json:"total_active"`
	Vehicles    []ReportVehicle `json:"vehicles"`
	LastSync    *models.SyncLog `json:"last_sync"`
	PriceModel  *predict.Model  `json:"price_model"`
}

// HandleReport returns the full inventory report.
func (h *Handler) HandleReport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	ctx := c.Context()

	vehicles, err := h.service.ActiveVehicles(ctx)
	if err != nil {
		l.Error("Report listing failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	// The model is optional report content; a catalog too small to fit one
	// still yields a vehicle listing.
	model, err := h.service.Model(ctx)
	if err != nil && !errors.Is(err, predict.ErrModelUnavailable) {
		l.Error("Report model fit failed", zap.Error(err))
	}

	report := Report{
		TotalActive: len(vehicles),
		Vehicles:    make([]ReportVehicle, 0, len(vehicles)),
		PriceModel:  model,
	}

	for _, v := range vehicles {
		rv := ReportVehicle{Vehicle: v}
		if model != nil {
			predicted := model.Predict(&v)
			diff := predicted - float64(v.Price)
			rv.PredictedPrice = &predicted
			rv.PriceDifference = &diff
		}
		report.Vehicles = append(report.Vehicles, rv)
	}

	if latest, err := h.service.LatestSync(ctx); err == nil {
		report.LastSync = latest
	} else if !errors.Is(err, ledger.ErrEmpty) {
		l.Error("Report sync lookup failed", zap.Error(err))
	}

	return c.JSON(report)
}
