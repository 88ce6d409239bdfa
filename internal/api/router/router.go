package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/glowbot/spa-widget-platform/internal/embed"
	httpmiddleware "github.com/glowbot/spa-widget-platform/internal/http/middleware"
	"github.com/glowbot/spa-widget-platform/internal/leads"
	"github.com/glowbot/spa-widget-platform/internal/observability/metrics"
	"github.com/glowbot/spa-widget-platform/internal/spas"
	"github.com/glowbot/spa-widget-platform/internal/widget"
	"github.com/glowbot/spa-widget-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger        *logging.Logger
	SpaHandler    *spas.Handler
	LeadsHandler  *leads.Handler
	WidgetHandler *widget.Handler
	ScriptHandler *embed.ScriptHandler

	AdminAuthSecret    string
	CORSAllowedOrigins []string

	// Lead submission throttling (per IP). Zero rate disables the limiter.
	LeadRatePerSecond float64
	LeadRateBurst     int

	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.HTTPMetrics != nil {
		r.Use(cfg.HTTPMetrics.Middleware())
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (health, embed loader, metrics)
	r.Get("/health", handleHealth)
	if cfg.ScriptHandler != nil {
		r.Get("/bot.js", cfg.ScriptHandler.HandleScript)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Widget-facing API routes
	r.Route("/api", func(api chi.Router) {
		api.Use(spaTenancy)

		if cfg.SpaHandler != nil {
			api.Get("/spas/config/{spaID}", cfg.SpaHandler.GetConfig)
		}

		if cfg.LeadsHandler != nil {
			if cfg.LeadRatePerSecond > 0 {
				limited := httpmiddleware.RateLimit(cfg.LeadRatePerSecond, cfg.LeadRateBurst)
				api.With(limited).Post("/leads", cfg.LeadsHandler.CreateLead)
			} else {
				api.Post("/leads", cfg.LeadsHandler.CreateLead)
			}
		}

		if cfg.WidgetHandler != nil {
			api.Route("/widget/sessions", func(sessions chi.Router) {
				sessions.Post("/", cfg.WidgetHandler.CreateSession)
				sessions.Route("/{sessionID}", func(s chi.Router) {
					s.Get("/", cfg.WidgetHandler.GetSession)
					s.Delete("/", cfg.WidgetHandler.DeleteSession)
					s.Post("/events", cfg.WidgetHandler.HandleEvent)
				})
			})
		}

		// Admin routes (protected by HMAC-signed JWT)
		if cfg.AdminAuthSecret != "" {
			api.Route("/admin", func(admin chi.Router) {
				admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
				if cfg.SpaHandler != nil {
					admin.Get("/spas", cfg.SpaHandler.ListSpas)
					admin.Post("/spas", cfg.SpaHandler.CreateSpa)
					admin.Route("/spas/{spaID}", func(spa chi.Router) {
						spa.Get("/", cfg.SpaHandler.GetSpa)
						spa.Put("/", cfg.SpaHandler.UpdateSpa)
						spa.Delete("/", cfg.SpaHandler.DeleteSpa)
						if cfg.LeadsHandler != nil {
							spa.Get("/leads", cfg.LeadsHandler.ListLeads)
						}
					})
				}
			})
		}
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"version": embed.Version,
	})
}
