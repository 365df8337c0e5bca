package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"batstats/internal/caching"
	"batstats/internal/client"
	"batstats/internal/config"
	"batstats/internal/filter"
	"batstats/internal/handlers"
	"batstats/internal/jobs/background"
	"batstats/internal/middleware"
	"batstats/internal/services"
	"batstats/internal/store"
	"batstats/internal/views"
	"batstats/internal/websocket"
)

const version = "1.0.0"

func main() {
	configPath := os.Getenv("BATSTATS_CONFIG")
	if configPath == "" {
		configPath = "config.toml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Session state
	var sessions caching.SessionStore
	if cfg.Redis.Enabled {
		sessions = caching.NewRedisSessionStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	} else {
		log.Printf("DEBUG: Redis disabled, keeping sessions in memory")
		sessions = caching.NewMemorySessionStore()
	}

	secret := cfg.Session.Secret
	if secret == "" {
		secret = random.String(32) // sessions do not survive a restart
		log.Printf("WARN: SESSION_SECRET not set, using a generated session secret")
	}

	api := client.NewAPIClient(cfg.API.BaseURL, cfg.API.Timeout())
	st := store.NewStore(sessions, cfg.Session.TTL(), filter.Strategy(cfg.Dashboard.SearchStrategy))

	hub := websocket.NewHub()
	go hub.Run(ctx)

	scheduler, err := background.NewJobScheduler(hub, cfg.Dashboard.RefreshInterval(), cfg.Session.SweepInterval(), cfg.API.Timeout())
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}

	dashboardSvc := services.NewDashboardService(api, st, filter.NewDebouncer(cfg.Dashboard.SearchDebounce()), scheduler, services.Options{
		SearchMinLength: cfg.Dashboard.SearchMinLength,
		ReconcileDelay:  cfg.Dashboard.ReconcileDelay(),
		BannerTTL:       cfg.Dashboard.BannerTTL(),
	})
	if err := scheduler.Start(dashboardSvc); err != nil {
		log.Fatalf("Failed to start job scheduler: %v", err)
	}

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Renderer = views.MustRenderer()

	// Global middleware
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Pre(echoMiddleware.RemoveTrailingSlash())

	handlers.RegisterRoutes(e,
		handlers.NewDashboardHandlers(dashboardSvc, hub),
		handlers.NewHealthHandlers(sessions),
		middleware.NewSessions(secret, cfg.Session.TTL(), false),
	)

	go func() {
		log.Printf("BatStats dashboard v%s starting on port %d (backend %s)", version, cfg.Server.Port, cfg.API.BaseURL)
		if err := e.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: server shutdown: %v", err)
	}
	if err := scheduler.Stop(); err != nil {
		log.Printf("ERROR: scheduler shutdown: %v", err)
	}
}
