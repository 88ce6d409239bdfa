package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowbot/spa-widget-platform/internal/leads"
	"github.com/glowbot/spa-widget-platform/internal/spas"
	"github.com/glowbot/spa-widget-platform/pkg/logging"
)

type capturingSender struct {
	sent []EmailMessage
}

func (c *capturingSender) Send(ctx context.Context, msg EmailMessage) error {
	c.sent = append(c.sent, msg)
	return nil
}

func TestNotifyNewLead(t *testing.T) {
	sender := &capturingSender{}
	svc := NewService(sender, "owner@serenityspa.example", logging.New("error"))

	spa := &spas.Spa{SpaID: "serenity-spa", SpaName: "Serenity Day Spa"}
	lead := &leads.Lead{
		ID:        "lead-1",
		SpaID:     "serenity-spa",
		Name:      "Asha",
		Phone:     "9876543210",
		Services:  []string{"HydraFacial", "Laser Hair Removal"},
		Message:   "evening slot please",
		CreatedAt: time.Date(2026, 8, 30, 18, 30, 0, 0, time.UTC),
	}

	require.NoError(t, svc.NotifyNewLead(context.Background(), spa, lead))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "owner@serenityspa.example", msg.To)
	assert.Equal(t, "New booking lead for Serenity Day Spa", msg.Subject)
	assert.Contains(t, msg.Body, "Asha")
	assert.Contains(t, msg.Body, "9876543210")
	assert.Contains(t, msg.Body, "HydraFacial, Laser Hair Removal")
	assert.Contains(t, msg.Body, "evening slot please")
}

func TestNotifyNewLeadDisabled(t *testing.T) {
	sender := &capturingSender{}
	svc := NewService(sender, "", logging.New("error"))

	err := svc.NotifyNewLead(context.Background(), &spas.Spa{SpaID: "s"}, &leads.Lead{ID: "lead-1"})
	require.NoError(t, err)
	assert.Empty(t, sender.sent)

	svc = NewService(nil, "owner@serenityspa.example", logging.New("error"))
	err = svc.NotifyNewLead(context.Background(), &spas.Spa{SpaID: "s"}, &leads.Lead{ID: "lead-1"})
	require.NoError(t, err)
}
