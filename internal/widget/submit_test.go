package widget

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowbot/spa-widget-platform/internal/leads"
	"github.com/glowbot/spa-widget-platform/internal/spas"
)

func TestBuildLeadRequestValidationOrder(t *testing.T) {
	_, err := BuildLeadRequest("serenity-spa", BookingDraft{Phone: "9876543210"}, nil)
	assert.ErrorIs(t, err, ErrMissingFields, "blank name fails before phone format")

	_, err = BuildLeadRequest("serenity-spa", BookingDraft{Name: "Asha"}, nil)
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = BuildLeadRequest("serenity-spa", BookingDraft{Name: "Asha", Phone: "987-654-3210"}, nil)
	assert.ErrorIs(t, err, ErrInvalidPhone, "dashes are not stripped")

	_, err = BuildLeadRequest("serenity-spa", BookingDraft{Name: "Asha", Phone: "1234567890"}, nil)
	assert.ErrorIs(t, err, ErrInvalidPhone)

	_, err = BuildLeadRequest("serenity-spa", BookingDraft{Name: "Asha", Phone: "98765432100"}, nil)
	assert.ErrorIs(t, err, ErrInvalidPhone)
}

func TestBuildLeadRequestWhitespaceTolerantPhone(t *testing.T) {
	req, err := BuildLeadRequest("serenity-spa", BookingDraft{Name: "Asha", Phone: " 98765 43210 "}, nil)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", req.Phone)
}

func TestBuildLeadRequestServices(t *testing.T) {
	draft := BookingDraft{Name: "Asha", Phone: "9876543210"}

	selection := []spas.Service{
		{ID: "hydra", Title: "HydraFacial"},
		{ID: "laser", Title: "Laser Hair Removal"},
	}
	req, err := BuildLeadRequest("serenity-spa", draft, selection)
	require.NoError(t, err)
	assert.Equal(t, []string{"HydraFacial", "Laser Hair Removal"}, req.Services)

	draft.Services = "20% OFF on HydraFacial"
	req, err = BuildLeadRequest("serenity-spa", draft, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"20% OFF on HydraFacial"}, req.Services)

	draft.Services = "  "
	req, err = BuildLeadRequest("serenity-spa", draft, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{leads.DefaultService}, req.Services)
}

type chanNotifier struct {
	notified chan string
}

func (n *chanNotifier) NotifyNewLead(_ context.Context, _ *spas.Spa, lead *leads.Lead) error {
	n.notified <- lead.SpaID
	return nil
}

func TestRepositoryLeadSenderNotifies(t *testing.T) {
	spaRepo := spas.NewInMemoryRepository()
	_, err := spaRepo.Create(context.Background(), &spas.Spa{
		SpaID:    "serenity-spa",
		SpaName:  "Serenity Spa",
		IsActive: true,
	})
	require.NoError(t, err)

	notifier := &chanNotifier{notified: make(chan string, 1)}
	sender := NewRepositoryLeadSender(leads.NewInMemoryRepository()).WithNotifier(spaRepo, notifier)

	req, err := BuildLeadRequest("serenity-spa", BookingDraft{Name: "Asha", Phone: "9876543210"}, nil)
	require.NoError(t, err)
	require.NoError(t, sender.SendLead(context.Background(), req))

	select {
	case spaID := <-notifier.notified:
		assert.Equal(t, "serenity-spa", spaID)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a notification for the stored lead")
	}
}
