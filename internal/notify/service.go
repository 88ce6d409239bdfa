package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/glowbot/spa-widget-platform/internal/leads"
	"github.com/glowbot/spa-widget-platform/internal/spas"
	"github.com/glowbot/spa-widget-platform/pkg/logging"
)

// Service emails the operator about each lead the widget captures.
type Service struct {
	email   EmailSender
	toEmail string
	logger  *logging.Logger
}

// NewService creates a notification service. A blank toEmail disables
// notifications.
func NewService(email EmailSender, toEmail string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		email:   email,
		toEmail: toEmail,
		logger:  logger,
	}
}

// NotifyNewLead sends the new lead email.
func (s *Service) NotifyNewLead(ctx context.Context, spa *spas.Spa, lead *leads.Lead) error {
	if s.email == nil || s.toEmail == "" {
		s.logger.Debug("notify: email not configured, skipping lead notification", "lead_id", lead.ID)
		return nil
	}

	subject := fmt.Sprintf("New booking lead for %s", spa.SpaName)

	var b strings.Builder
	fmt.Fprintf(&b, "New booking request from the chat widget.\n\n")
	fmt.Fprintf(&b, "Spa: %s (%s)\n", spa.SpaName, spa.SpaID)
	fmt.Fprintf(&b, "Name: %s\n", lead.Name)
	fmt.Fprintf(&b, "Phone: %s\n", lead.Phone)
	fmt.Fprintf(&b, "Services: %s\n", strings.Join(lead.Services, ", "))
	if lead.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", lead.Message)
	}
	fmt.Fprintf(&b, "Received: %s\n", lead.CreatedAt.Format("January 2, 2006 at 3:04 PM"))

	msg := EmailMessage{
		To:      s.toEmail,
		Subject: subject,
		Body:    b.String(),
	}
	if err := s.email.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: lead email: %w", err)
	}

	s.logger.Info("lead notification sent", "lead_id", lead.ID, "spa_id", lead.SpaID)
	return nil
}
