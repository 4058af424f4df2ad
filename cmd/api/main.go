package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/campuskit/localguide/internal/adapters/http"
	natsadapter "github.com/campuskit/localguide/internal/adapters/nats"
	"github.com/campuskit/localguide/internal/adapters/osrm"
	"github.com/campuskit/localguide/internal/adapters/postgres"
	"github.com/campuskit/localguide/internal/adapters/valkey"
	"github.com/campuskit/localguide/internal/cache"
	"github.com/campuskit/localguide/internal/core/domain"
	"github.com/campuskit/localguide/internal/core/ports"
	"github.com/campuskit/localguide/internal/core/usecases"
	"github.com/campuskit/localguide/internal/pkg/config"
	"github.com/campuskit/localguide/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	kv, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer kv.Close()
	}

	// NATS
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer nc.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Repos
	placeRepo := postgres.NewPlaceRepo(db)
	categoryRepo := postgres.NewCategoryRepo(db)

	// Route cache, bounded and TTL'd
	routeCache, err := cache.New(cfg.RouteCache.Capacity, cfg.RouteCache.TTL(), cfg.RouteCache.Precision)
	if err != nil {
		log.Fatalf("route cache: %v", err)
	}

	// Routing provider
	provider := osrm.NewClient(cfg.Provider.BaseURL, cfg.Provider.Timeout(), cfg.Provider.MaxRetries, cfg.Provider.Backoff())

	// Use cases
	var kvSvc ports.CacheService
	if kv != nil {
		kvSvc = kv
	}
	catalogSvc := usecases.NewCatalogService(placeRepo, categoryRepo, kvSvc)

	defaults := make([]domain.TransportProfile, 0, len(cfg.Routing.Profiles))
	for _, name := range cfg.Routing.Profiles {
		p, err := domain.ParseProfile(name)
		if err != nil {
			log.Fatalf("routing.profiles: %v", err)
		}
		defaults = append(defaults, p)
	}

	// A typed-nil publisher must not reach the aggregator's interface field.
	var events ports.EventPublisher
	if nc != nil {
		events = nc
	}
	aggregator := usecases.NewRouteAggregator(provider, routeCache, events, cfg.Routing.Deadline())
	guideSvc := usecases.NewGuideService(catalogSvc, aggregator, defaults)

	deps := &http.Dependencies{
		Catalog: catalogSvc,
		Guide:   guideSvc,
		NATS:    natsConn,
		DB:      db,
		Cache:   kv,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Local Guide API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
