package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/weather-update/internal/api/http"
	"github.com/i474232898/weather-update/internal/config"
	"github.com/i474232898/weather-update/internal/scheduler"
	"github.com/i474232898/weather-update/internal/store"
	"github.com/i474232898/weather-update/internal/timezone"
	"github.com/i474232898/weather-update/internal/weather"
	"github.com/i474232898/weather-update/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger)

	coords, err := cfg.Coordinates()
	if err != nil {
		log.Fatalf("invalid locations: %v", err)
	}

	// Snapshot store, memory or SQLite.
	var snapshots weather.Store
	switch cfg.Store.Driver {
	case "memory":
		snapshots = store.NewMemoryStore(cfg.Store.MaxHistory)
	default:
		db, err := store.NewSQLite(cfg.Store.Path, cfg.Store.MaxHistory, logger)
		if err != nil {
			log.Fatalf("failed to open snapshot store: %v", err)
		}
		defer db.Close()
		snapshots = db
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.Provider.Timeout,
	}

	var provider weather.Provider
	switch cfg.Provider.Name {
	case "openmeteo":
		provider = providers.NewOpenMeteoProvider(httpClient, cfg.Provider.BaseURL)
	default:
		if cfg.Provider.APIKey != "" {
			provider = providers.NewDarkSkyProvider(httpClient, cfg.Provider.BaseURL, cfg.Provider.APIKey)
		} else {
			logger.Warn("no provider api key configured; serving stored snapshots only")
		}
	}

	var geocoder weather.Geocoder
	if cfg.Geocoder.APIKey != "" {
		var zones providers.ZoneLookup
		if finder, err := timezone.Shared(); err != nil {
			logger.Warn("timezone lookup disabled", "error", err)
		} else {
			zones = finder
		}
		geocoder = providers.NewGoogleGeocoder(cfg.Geocoder.APIKey, zones)
	}

	service := weather.NewService(snapshots, provider, geocoder, logger)

	if provider != nil {
		sched := scheduler.New(coords, cfg.Scheduler.Interval, service, logger)
		if err := sched.Start(); err != nil {
			log.Fatalf("failed to start scheduler: %v", err)
		}
		defer sched.Stop()
	}

	app := fiber.New(fiber.Config{
		AppName:               "weather-update",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-update",
		})
	})

	httpapi.RegisterRoutes(app, service)

	go func() {
		slog.Info("starting server", "addr", cfg.GetServerAddr())
		if err := app.Listen(cfg.GetServerAddr()); err != nil {
			slog.Error("fiber server stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("error during shutdown", "error", err)
	}
}
