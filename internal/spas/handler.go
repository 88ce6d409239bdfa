package spas

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/glowbot/spa-widget-platform/internal/tenancy"
	"github.com/glowbot/spa-widget-platform/pkg/logging"
)

// Handler serves the public widget config endpoint and the admin CRUD API.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a new spas handler
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// GetConfig handles GET /api/spas/config/{spaID}. This is the endpoint every
// embedded widget calls exactly once at boot, so it returns the full tenant
// config in one round trip.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	spaID := chi.URLParam(r, "spaID")
	if spaID == "" {
		http.Error(w, "missing spa id", http.StatusBadRequest)
		return
	}

	ctx := tenancy.WithSpaID(r.Context(), spaID)

	spa, err := h.repo.GetBySpaID(ctx, spaID)
	if err != nil {
		if errors.Is(err, ErrSpaNotFound) {
			http.Error(w, "spa not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load spa config", "error", err, "spa_id", spaID)
		http.Error(w, "failed to load spa config", http.StatusInternalServerError)
		return
	}

	if !spa.IsActive {
		http.Error(w, "spa is not active", http.StatusForbidden)
		return
	}

	writeJSON(w, http.StatusOK, spa)
}

// ListSpasResponse is the response for listing spas
type ListSpasResponse struct {
	Spas  []*Spa `json:"spas"`
	Count int    `json:"count"`
}

// ListSpas handles GET /api/admin/spas requests.
func (h *Handler) ListSpas(w http.ResponseWriter, r *http.Request) {
	spas, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list spas", "error", err)
		http.Error(w, "failed to list spas", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, ListSpasResponse{Spas: spas, Count: len(spas)})
}

// GetSpa handles GET /api/admin/spas/{spaID}. Unlike GetConfig it also
// returns inactive spas, so the dashboard can show them for reactivation.
func (h *Handler) GetSpa(w http.ResponseWriter, r *http.Request) {
	spaID := chi.URLParam(r, "spaID")
	if spaID == "" {
		http.Error(w, "missing spa id", http.StatusBadRequest)
		return
	}

	spa, err := h.repo.GetBySpaID(r.Context(), spaID)
	if err != nil {
		if errors.Is(err, ErrSpaNotFound) {
			http.Error(w, "spa not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to get spa", "error", err, "spa_id", spaID)
		http.Error(w, "failed to get spa", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, spa)
}

// CreateSpa handles POST /api/admin/spas requests.
func (h *Handler) CreateSpa(w http.ResponseWriter, r *http.Request) {
	var req UpsertSpaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	spa, err := h.repo.Create(r.Context(), req.ToSpa())
	if err != nil {
		if errors.Is(err, ErrDuplicateSpaID) {
			http.Error(w, "spa id already exists", http.StatusConflict)
			return
		}
		h.logger.Error("failed to create spa", "error", err, "spa_id", req.SpaID)
		http.Error(w, "failed to create spa", http.StatusInternalServerError)
		return
	}

	h.logger.Info("spa created", "spa_id", spa.SpaID, "spa_name", spa.SpaName)

	writeJSON(w, http.StatusCreated, spa)
}

// UpdateSpa handles PUT /api/admin/spas/{spaID} requests. The path id wins
// over any id in the body.
func (h *Handler) UpdateSpa(w http.ResponseWriter, r *http.Request) {
	spaID := chi.URLParam(r, "spaID")
	if spaID == "" {
		http.Error(w, "missing spa id", http.StatusBadRequest)
		return
	}

	var req UpsertSpaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	req.SpaID = spaID

	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	spa, err := h.repo.Update(r.Context(), req.ToSpa())
	if err != nil {
		if errors.Is(err, ErrSpaNotFound) {
			http.Error(w, "spa not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to update spa", "error", err, "spa_id", spaID)
		http.Error(w, "failed to update spa", http.StatusInternalServerError)
		return
	}

	h.logger.Info("spa updated", "spa_id", spa.SpaID)

	writeJSON(w, http.StatusOK, spa)
}

// DeleteSpa handles DELETE /api/admin/spas/{spaID} requests.
func (h *Handler) DeleteSpa(w http.ResponseWriter, r *http.Request) {
	spaID := chi.URLParam(r, "spaID")
	if spaID == "" {
		http.Error(w, "missing spa id", http.StatusBadRequest)
		return
	}

	if err := h.repo.Delete(r.Context(), spaID); err != nil {
		if errors.Is(err, ErrSpaNotFound) {
			http.Error(w, "spa not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete spa", "error", err, "spa_id", spaID)
		http.Error(w, "failed to delete spa", http.StatusInternalServerError)
		return
	}

	h.logger.Info("spa deleted", "spa_id", spaID)

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "spaId": spaID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
