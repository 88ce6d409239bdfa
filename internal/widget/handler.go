package widget

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/glowbot/spa-widget-platform/internal/spas"
	"github.com/glowbot/spa-widget-platform/internal/tenancy"
	"github.com/glowbot/spa-widget-platform/pkg/logging"
)

// Handler exposes the widget session API consumed by the iframe application.
// The iframe holds no business logic of its own; every user interaction is an
// event posted here and the returned snapshot is what it renders.
type Handler struct {
	resolver *Resolver
	sender   LeadSender
	sessions *SessionStore
	opts     Options
	logger   *logging.Logger
}

// NewHandler creates a widget session handler.
func NewHandler(resolver *Resolver, sender LeadSender, sessions *SessionStore, opts Options, logger *logging.Logger) *Handler {
	return &Handler{
		resolver: resolver,
		sender:   sender,
		sessions: sessions,
		opts:     opts,
		logger:   logger,
	}
}

// CreateSessionRequest starts a widget session for a tenant.
type CreateSessionRequest struct {
	SpaID string `json:"spaId"`
}

// CreateSessionResponse returns the session id and the initial state.
type CreateSessionResponse struct {
	SessionID string   `json:"sessionId"`
	State     Snapshot `json:"state"`
}

// CreateSession handles POST /api/widget/sessions. Config resolution happens
// here, once per widget load.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx := tenancy.WithSpaID(r.Context(), req.SpaID)

	cfg, err := h.resolver.Resolve(ctx, req.SpaID)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingTenantID):
			http.Error(w, "missing spa id", http.StatusBadRequest)
		case errors.Is(err, spas.ErrSpaNotFound):
			http.Error(w, "spa not found", http.StatusNotFound)
		case errors.Is(err, spas.ErrSpaInactive):
			http.Error(w, "spa is not active", http.StatusForbidden)
		default:
			h.logger.Error("widget session config fetch failed", "error", err, "spa_id", req.SpaID)
			http.Error(w, "spa config unavailable", http.StatusBadGateway)
		}
		return
	}

	conv := NewConversation(cfg, h.sender, h.opts, h.logger)
	session := h.sessions.Create(cfg.SpaID, conv)

	h.logger.Info("widget session created", "session_id", session.ID, "spa_id", cfg.SpaID)

	writeJSON(w, http.StatusCreated, CreateSessionResponse{
		SessionID: session.ID,
		State:     conv.Snapshot(),
	})
}

// GetSession handles GET /api/widget/sessions/{sessionID}.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, session.Conversation.Snapshot())
}

// Event types accepted by HandleEvent.
const (
	EventOpen             = "open"
	EventClose            = "close"
	EventAction           = "action"
	EventToggleService    = "toggle_service"
	EventConfirmSelection = "confirm_selection"
	EventBack             = "back"
	EventUpdateDraft      = "update_draft"
	EventSubmit           = "submit"
)

// EventRequest is one user interaction relayed from the iframe.
type EventRequest struct {
	Type      string        `json:"type"`
	Action    string        `json:"action,omitempty"`
	ServiceID string        `json:"serviceId,omitempty"`
	Draft     *BookingDraft `json:"draft,omitempty"`
}

// HandleEvent handles POST /api/widget/sessions/{sessionID}/events. Submit
// outcomes, including validation failures and the in-flight no-op, are
// reported through the snapshot's status field rather than HTTP errors, so
// the form UI can render them inline.
func (h *Handler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	conv := session.Conversation
	ctx := tenancy.WithSpaID(r.Context(), session.SpaID)

	var evtErr error
	switch req.Type {
	case EventOpen:
		conv.Open()
	case EventClose:
		conv.Close()
	case EventAction:
		evtErr = conv.Action(req.Action)
	case EventToggleService:
		evtErr = conv.ToggleService(req.ServiceID)
	case EventConfirmSelection:
		evtErr = conv.ConfirmSelection()
	case EventBack:
		evtErr = conv.Back()
	case EventUpdateDraft:
		if req.Draft == nil {
			http.Error(w, "missing draft", http.StatusBadRequest)
			return
		}
		conv.UpdateDraft(*req.Draft)
	case EventSubmit:
		switch err := conv.Submit(ctx); {
		case err == nil,
			errors.Is(err, ErrMissingFields),
			errors.Is(err, ErrInvalidPhone),
			errors.Is(err, ErrSubmitFailed),
			errors.Is(err, ErrSubmitInFlight):
			// Reflected in the snapshot status.
		default:
			evtErr = err
		}
	default:
		http.Error(w, "unknown event type", http.StatusBadRequest)
		return
	}

	if evtErr != nil {
		http.Error(w, evtErr.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, conv.Snapshot())
}

// DeleteSession handles DELETE /api/widget/sessions/{sessionID}.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}
	h.sessions.Delete(sessionID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return nil, false
	}
	session, err := h.sessions.Get(sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
