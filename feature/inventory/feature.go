package inventory

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature wires the inventory module into the application loader.
type Feature struct {
	service *Service
	logger  *zap.Logger
}

// NewFeature creates the inventory feature around an assembled service.
func NewFeature(service *Service, logger *zap.Logger) *Feature {
	return &Feature{service: service, logger: logger}
}

// Name returns the feature name.
func (f *Feature) Name() string {
	return "inventory"
}

// IsEnabled reports whether the feature should load. The inventory feature is
// the reason this service exists, so it is always on.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the inventory routes.
func (f *Feature) Load(app fiber.Router) error {
	NewHandler(f.service, f.logger).RegisterRoutes(app)
	return nil
}
