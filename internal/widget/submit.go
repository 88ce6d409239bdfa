package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/glowbot/spa-widget-platform/internal/leads"
	"github.com/glowbot/spa-widget-platform/internal/spas"
)

// BookingDraft is the mutable scratch state bound to the booking form.
type BookingDraft struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Services string `json:"services"`
	Message  string `json:"message"`
}

// LeadSender delivers a validated booking to the backend. Implemented
// in-process by the leads repository wiring and over HTTP by APILeadSender.
type LeadSender interface {
	SendLead(ctx context.Context, req *leads.CreateLeadRequest) error
}

// BuildLeadRequest assembles the submission payload. Validation order is
// fixed: blank name or phone first, then the phone format check on the
// whitespace-stripped value. Dashes and other punctuation are not stripped
// and fail the format check.
func BuildLeadRequest(spaID string, draft BookingDraft, selection []spas.Service) (*leads.CreateLeadRequest, error) {
	name := strings.TrimSpace(draft.Name)
	phone := strings.TrimSpace(draft.Phone)
	if name == "" || phone == "" {
		return nil, ErrMissingFields
	}

	normalized := leads.NormalizePhone(draft.Phone)
	if !leads.ValidPhone(normalized) {
		return nil, ErrInvalidPhone
	}

	var services []string
	if len(selection) > 0 {
		for _, svc := range selection {
			services = append(services, svc.Title)
		}
	} else {
		text := strings.TrimSpace(draft.Services)
		if text == "" {
			text = leads.DefaultService
		}
		services = []string{text}
	}

	return &leads.CreateLeadRequest{
		SpaID:    spaID,
		Name:     name,
		Phone:    normalized,
		Services: services,
		Message:  strings.TrimSpace(draft.Message),
	}, nil
}

// APILeadSender posts leads to the backend over HTTP.
type APILeadSender struct {
	baseURL string
	client  *http.Client
}

// NewAPILeadSender creates a sender against baseURL.
func NewAPILeadSender(baseURL string, client *http.Client) *APILeadSender {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &APILeadSender{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// SendLead issues POST {base}/api/leads. Both 200 and 201 count as success.
func (s *APILeadSender) SendLead(ctx context.Context, req *leads.CreateLeadRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("widget: marshal lead: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/leads", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("widget: build lead request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("widget: lead submit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("widget: lead submit returned status %d", resp.StatusCode)
	}
	return nil
}

// RepositoryLeadSender stores leads directly, for deployments where the
// widget session API and the lead store share a process.
type RepositoryLeadSender struct {
	repo     leads.Repository
	spas     spas.Repository
	notifier leads.Notifier
}

// NewRepositoryLeadSender wraps a leads repository as a LeadSender.
func NewRepositoryLeadSender(repo leads.Repository) *RepositoryLeadSender {
	return &RepositoryLeadSender{repo: repo}
}

// WithNotifier makes the sender announce each stored lead, matching the
// behaviour of the public lead endpoint. Requires a spa repository to
// resolve the tenant for the notification.
func (s *RepositoryLeadSender) WithNotifier(spaRepo spas.Repository, notifier leads.Notifier) *RepositoryLeadSender {
	s.spas = spaRepo
	s.notifier = notifier
	return s
}

// SendLead validates and stores the lead.
func (s *RepositoryLeadSender) SendLead(ctx context.Context, req *leads.CreateLeadRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	lead, err := s.repo.Create(ctx, req.ToLead())
	if err != nil {
		return err
	}
	if s.notifier != nil && s.spas != nil {
		if spa, err := s.spas.GetBySpaID(ctx, lead.SpaID); err == nil {
			go func() {
				nctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				_ = s.notifier.NotifyNewLead(nctx, spa, lead)
			}()
		}
	}
	return nil
}
