package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/glowbot/spa-widget-platform/internal/spas"
	"github.com/glowbot/spa-widget-platform/internal/tenancy"
	"github.com/glowbot/spa-widget-platform/pkg/logging"
)

// Notifier is told about each captured lead. Implemented by the notify
// package; a nil Notifier disables notifications.
type Notifier interface {
	NotifyNewLead(ctx context.Context, spa *spas.Spa, lead *Lead) error
}

// Handler handles HTTP requests for leads
type Handler struct {
	repo     Repository
	spas     spas.Repository
	notifier Notifier
	logger   *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(repo Repository, spaRepo spas.Repository, notifier Notifier, logger *logging.Logger) *Handler {
	return &Handler{
		repo:     repo,
		spas:     spaRepo,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateLead handles POST /api/leads requests from the widget.
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := tenancy.WithSpaID(r.Context(), req.SpaID)

	spa, err := h.spas.GetBySpaID(ctx, req.SpaID)
	if err != nil {
		if errors.Is(err, spas.ErrSpaNotFound) {
			http.Error(w, "spa not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to resolve spa for lead", "error", err, "spa_id", req.SpaID)
		http.Error(w, "failed to create lead", http.StatusInternalServerError)
		return
	}
	if !spa.IsActive {
		http.Error(w, "spa is not active", http.StatusForbidden)
		return
	}

	lead, err := h.repo.Create(ctx, req.ToLead())
	if err != nil {
		h.logger.Error("failed to create lead", "error", err, "spa_id", req.SpaID)
		http.Error(w, "failed to create lead", http.StatusInternalServerError)
		return
	}

	h.logger.Info("lead created", "id", lead.ID, "spa_id", lead.SpaID, "name", lead.Name)

	if h.notifier != nil {
		go h.notify(spa, lead)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(lead)
}

// notify runs outside the request lifecycle so a slow email provider never
// delays the widget's success screen.
func (h *Handler) notify(spa *spas.Spa, lead *Lead) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := h.notifier.NotifyNewLead(ctx, spa, lead); err != nil {
		h.logger.Error("lead notification failed", "error", err, "lead_id", lead.ID, "spa_id", lead.SpaID)
	}
}

// ListLeadsResponse is the response for listing leads
type ListLeadsResponse struct {
	Leads []*Lead `json:"leads"`
	Count int     `json:"count"`
}

// ListLeads handles GET /api/admin/spas/{spaID}/leads requests.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	spaID := chi.URLParam(r, "spaID")
	if spaID == "" {
		http.Error(w, "missing spa id", http.StatusBadRequest)
		return
	}

	list, err := h.repo.ListBySpa(r.Context(), spaID)
	if err != nil {
		h.logger.Error("failed to list leads", "error", err, "spa_id", spaID)
		http.Error(w, "failed to list leads", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListLeadsResponse{Leads: list, Count: len(list)})
}
