package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"upiqr/internal/api"
	"upiqr/internal/api/handlers"
	"upiqr/internal/api/middleware"
	"upiqr/internal/engine/analytics"
	"upiqr/internal/engine/links"
	"upiqr/internal/engine/redirect"
	"upiqr/internal/engine/render"
	"upiqr/internal/engine/webhooks"
	"upiqr/internal/pkg/logger"
	"upiqr/internal/platform/auth"
	"upiqr/internal/platform/config"
	"upiqr/internal/platform/database"
	"upiqr/internal/platform/metrics"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	migrate := flag.Bool("migrate", true, "Apply pending migrations on start")
	flag.Parse()

	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	lg := logger.Init(cfg.Logging, "upiqr-server")

	db, err := database.NewDB(cfg.Database)
	if err != nil {
		lg.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	if *migrate {
		applied, err := database.Migrate(db, cfg.Database.MigrationsDir)
		if err != nil {
			lg.Fatal().Err(err).Msg("failed to apply migrations")
		}
		lg.Info().Strs("applied", applied).Msg("migrations up to date")
	}

	m := metrics.New()
	builder := links.NewBuilder()
	composer, err := render.FromConfig(cfg.Render, render.WithBuilder(builder), render.WithLogger(lg.With().Str("component", "render").Logger()))
	if err != nil {
		lg.Fatal().Err(err).Msg("invalid render config")
	}

	// Repositories and services
	linkRepo := links.NewRepository(db)
	linkSvc := links.NewService(linkRepo, builder)
	analyticsSvc := analytics.NewService(analytics.NewRepository(db))
	cache := redirect.NewLinkCache(cfg.Cache.LinkTTL)
	tokenSvc := auth.NewTokenService(cfg.JWT)

	scanLogger := redirect.NewScanLogger(analyticsSvc, linkRepo)
	if d := webhooks.NewDispatcher(cfg.Webhooks); d != nil {
		scanLogger.Notifier = d
	}

	// Handlers
	linkHandler := handlers.NewLinkHandler(linkSvc, composer, cache, m, cfg.Domains.ShortDomain)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit)

	deps := &api.Dependencies{
		UPIHandler:       handlers.NewUPIHandler(composer, builder, m),
		LinkHandler:      linkHandler,
		AnalyticsHandler: handlers.NewAnalyticsHandler(analyticsSvc, linkHandler),
		RedirectHandler:  handlers.NewRedirectHandler(linkSvc, cache, scanLogger, m),
		HealthHandler:    handlers.NewHealthHandler(db, composer),
		MetricsHandler:   handlers.NewMetricsHandler(m),
		AuthMiddleware:   middleware.NewAuthMiddleware(tokenSvc),
		RateLimiter:      rateLimiter,
	}

	stop := make(chan struct{})
	go rateLimiter.Cleanup(stop)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		lg.Info().Str("addr", srv.Addr).Str("render_backend", composer.Backend()).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal().Err(err).Msg("server failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	lg.Info().Msg("shutting down")
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Error().Err(err).Msg("graceful shutdown failed")
	}
}
