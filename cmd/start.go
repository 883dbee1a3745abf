package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dealersync/core/config"
	"dealersync/core/database"
	"dealersync/core/loader"
	"dealersync/core/logger"
	"dealersync/core/middleware/auth"
	"dealersync/core/middleware/rayid"
	"dealersync/core/storage"
	"dealersync/feature/inventory"
	"dealersync/feature/inventory/scrape"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the inventory server",
	Long:  `Starts the HTTP server, the feature modules and the optional sync scheduler.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Database connection failed", zap.Error(err))
		}
		logg.Info("Connected to catalog database", zap.String("driver", cfg.Database.Driver))

		// 4. Snapshot archive storage (optional)
		var archiver *scrape.Archiver
		if cfg.Storage.Enabled {
			store, err := storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
			archiver = scrape.NewArchiver(store, cfg.Storage.Bucket)
			logg.Info("Snapshot archiving enabled", zap.String("bucket", cfg.Storage.Bucket))
		}

		// 5. Assemble the inventory service
		producer := scrape.NewSiteProducer(cfg.Scrape, logg)
		service := inventory.NewService(db, producer, archiver, logg, cfg.Scrape.LockPath)
		if err := service.Migrate(); err != nil {
			logg.Fatal("Database migration failed", zap.Error(err))
		}

		// 6. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We log our own startup message
		})

		// Middleware Registration
		// RayID must be first so everything downstream is traceable.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 7. Load Features
		mgr := loader.NewManager()
		mgr.Register(inventory.NewFeature(service, logg))
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Sync scheduler (external trigger; the engine itself never retries)
		stopScheduler := make(chan struct{})
		if cfg.Scrape.IntervalHours > 0 {
			interval := time.Duration(cfg.Scrape.IntervalHours) * time.Hour
			logg.Info("Sync scheduler enabled", zap.Duration("interval", interval))
			go func() {
				ticker := time.NewTicker(interval)
				defer ticker.Stop()
				for {
					select {
					case <-ticker.C:
						if !service.TriggerSync() {
							logg.Warn("Scheduled sync skipped: previous run still in progress")
						}
					case <-stopScheduler:
						return
					}
				}
			}()
		}

		// 9. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 10. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		close(stopScheduler)
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
