package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"modaudit/core/config"
	"modaudit/core/database"
	"modaudit/core/logger"
	"modaudit/core/middleware/auth"
	"modaudit/core/middleware/rayid"
	"modaudit/feature/index"
	"modaudit/feature/report"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only query API over an existing store",
	Long: `Starts the HTTP query API the reporting layer consumes. The store must have
been built beforehand; the server never mutates it.`,
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

		// 3. Open the store (required) and verify its schema before
		// answering any query.
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to open store", zap.Error(err))
		}
		service := report.NewService(index.New(db), logg, cfg.Scan.ValueCompare)
		if err := service.VerifyStore(); err != nil {
			logg.Fatal("Store verification failed; run 'modaudit build' first", zap.Error(err))
		}

		// 4. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We log our own startup message
		})

		// RayID must be first to trace everything
		app.Use(rayid.New())

		// Request logging with Zap + RayID
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

		// Auth (protects the whole API when a key is configured)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		handler := report.NewHandler(service, logg)
		handler.RegisterRoutes(app)

		// 5. Start Server
		go func() {
			logg.Info("Starting query API", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 6. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c

		logg.Info("Shutting down query API")
		if err := app.Shutdown(); err != nil {
			logg.Error("Shutdown failed", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
