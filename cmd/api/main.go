package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/glowbot/spa-widget-platform/internal/api/router"
	appconfig "github.com/glowbot/spa-widget-platform/internal/config"
	"github.com/glowbot/spa-widget-platform/internal/embed"
	"github.com/glowbot/spa-widget-platform/internal/leads"
	"github.com/glowbot/spa-widget-platform/internal/notify"
	"github.com/glowbot/spa-widget-platform/internal/observability/metrics"
	"github.com/glowbot/spa-widget-platform/internal/spas"
	"github.com/glowbot/spa-widget-platform/internal/widget"
	"github.com/glowbot/spa-widget-platform/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting spa-widget-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize repositories
	pool := connectPostgresPool(ctx, cfg.DatabaseURL, logger)
	if pool != nil {
		defer pool.Close()
	}
	spaRepo, leadRepo := setupRepositories(cfg, pool, logger)

	// Lead notifications (optional). The nil check keeps a typed-nil
	// service out of the Notifier interface.
	var notifier leads.Notifier
	if svc := setupNotifier(cfg, logger); svc != nil {
		notifier = svc
	}

	// Widget sessions
	sessions := widget.NewSessionStore(cfg.SessionIdleTimeout, logger)
	sessions.StartJanitor(ctx, time.Minute)

	sender := widget.NewRepositoryLeadSender(leadRepo)
	if notifier != nil {
		sender = sender.WithNotifier(spaRepo, notifier)
	}
	resolver := widget.NewResolver(widget.NewRepositoryFetcher(spaRepo), logger)
	widgetHandler := widget.NewHandler(resolver, sender, sessions, widget.Options{
		TypingDelay:  cfg.WidgetTypingDelay,
		SuccessReset: cfg.WidgetSuccessReset,
	}, logger)

	scriptHandler, err := embed.NewScriptHandler(logger)
	if err != nil {
		logger.Error("failed to build loader script", "error", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(nil, func() float64 {
		return float64(sessions.Len())
	})

	// Setup router
	routerCfg := &router.Config{
		Logger:             logger,
		SpaHandler:         spas.NewHandler(spaRepo, logger),
		LeadsHandler:       leads.NewHandler(leadRepo, spaRepo, notifier, logger),
		WidgetHandler:      widgetHandler,
		ScriptHandler:      scriptHandler,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: splitOrigins(cfg.CORSAllowedOrigins),
		LeadRatePerSecond:  cfg.RateLimitPerSecond,
		LeadRateBurst:      cfg.RateLimitBurst,
		HTTPMetrics:        httpMetrics,
		MetricsHandler:     promhttp.Handler(),
	}
	r := router.New(routerCfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// connectPostgresPool returns nil when no database is configured, leaving the
// server on in-memory repositories.
func connectPostgresPool(ctx context.Context, databaseURL string, logger *logging.Logger) *pgxpool.Pool {
	if strings.TrimSpace(databaseURL) == "" {
		return nil
	}

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		os.Exit(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		logger.Error("failed to ping postgres", "error", err)
		os.Exit(1)
	}

	logger.Info("connected to postgres")
	return pool
}

// setupRepositories selects Postgres or in-memory backends and layers the
// optional Redis config cache over the spa repository.
func setupRepositories(cfg *appconfig.Config, pool *pgxpool.Pool, logger *logging.Logger) (spas.Repository, leads.Repository) {
	var spaRepo spas.Repository
	var leadRepo leads.Repository

	if pool != nil {
		spaRepo = spas.NewPostgresRepository(pool)
		// The Postgres lead repository bumps total_leads inside its own
		// transaction, so it must not be wrapped in CountingRepository.
		leadRepo = leads.NewPostgresRepository(pool)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory repositories")
		memSpas := spas.NewInMemoryRepository()
		spaRepo = memSpas
		leadRepo = leads.NewCountingRepository(leads.NewInMemoryRepository(), memSpas)
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		spaRepo = spas.NewCachedRepository(spaRepo, client, cfg.ConfigCacheTTL, logger)
		logger.Info("spa config cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.ConfigCacheTTL)
	}

	return spaRepo, leadRepo
}

// setupNotifier wires SendGrid lead notifications; returns nil when either
// the API key or the recipient is missing.
func setupNotifier(cfg *appconfig.Config, logger *logging.Logger) *notify.Service {
	if cfg.LeadNotifyEmail == "" {
		return nil
	}
	sender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger)
	if sender == nil {
		logger.Warn("LEAD_NOTIFY_EMAIL set but SendGrid is not configured, notifications disabled")
		return nil
	}
	return notify.NewService(sender, cfg.LeadNotifyEmail, logger)
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
