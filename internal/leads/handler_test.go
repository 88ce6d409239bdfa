package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowbot/spa-widget-platform/internal/spas"
	"github.com/glowbot/spa-widget-platform/pkg/logging"
)

type recordingNotifier struct {
	mu    sync.Mutex
	leads []*Lead
	done  chan struct{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{done: make(chan struct{}, 8)}
}

func (n *recordingNotifier) NotifyNewLead(ctx context.Context, spa *spas.Spa, lead *Lead) error {
	n.mu.Lock()
	n.leads = append(n.leads, lead)
	n.mu.Unlock()
	n.done <- struct{}{}
	return nil
}

func (n *recordingNotifier) wait(t *testing.T) *Lead {
	t.Helper()
	select {
	case <-n.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was not called")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.leads[len(n.leads)-1]
}

func newLeadFixture(t *testing.T) (*Handler, *spas.InMemoryRepository, *recordingNotifier) {
	t.Helper()

	spaRepo := spas.NewInMemoryRepository()
	_, err := spaRepo.Create(context.Background(), &spas.Spa{
		SpaID:    "serenity-spa",
		SpaName:  "Serenity Day Spa",
		IsActive: true,
	})
	require.NoError(t, err)

	notifier := newRecordingNotifier()
	repo := NewCountingRepository(NewInMemoryRepository(), spaRepo)
	return NewHandler(repo, spaRepo, notifier, logging.New("error")), spaRepo, notifier
}

func postLead(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/leads", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	h.CreateLead(rec, req)
	return rec
}

func TestCreateLead(t *testing.T) {
	h, spaRepo, notifier := newLeadFixture(t)

	rec := postLead(t, h, `{
		"spaId": "serenity-spa",
		"name": "Asha",
		"phone": "98765 43210",
		"services": ["HydraFacial"]
	}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var lead Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, "9876543210", lead.Phone)
	assert.Equal(t, []string{"HydraFacial"}, lead.Services)

	notified := notifier.wait(t)
	assert.Equal(t, lead.ID, notified.ID)

	spa, err := spaRepo.GetBySpaID(context.Background(), "serenity-spa")
	require.NoError(t, err)
	assert.Equal(t, 1, spa.TotalLeads)
}

func TestCreateLeadDefaultsServices(t *testing.T) {
	h, _, notifier := newLeadFixture(t)

	rec := postLead(t, h, `{"spaId": "serenity-spa", "name": "Asha", "phone": "9876543210"}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var lead Lead
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	assert.Equal(t, []string{DefaultService}, lead.Services)
	notifier.wait(t)
}

func TestCreateLeadValidation(t *testing.T) {
	h, _, _ := newLeadFixture(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing name", `{"spaId": "serenity-spa", "phone": "9876543210"}`},
		{"missing phone", `{"spaId": "serenity-spa", "name": "Asha"}`},
		{"dashed phone", `{"spaId": "serenity-spa", "name": "Asha", "phone": "987-654-3210"}`},
		{"bad leading digit", `{"spaId": "serenity-spa", "name": "Asha", "phone": "1876543210"}`},
		{"missing spa id", `{"name": "Asha", "phone": "9876543210"}`},
		{"malformed json", `{not json`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := postLead(t, h, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateLeadUnknownSpa(t *testing.T) {
	h, _, _ := newLeadFixture(t)

	rec := postLead(t, h, `{"spaId": "no-such-spa", "name": "Asha", "phone": "9876543210"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateLeadInactiveSpa(t *testing.T) {
	h, spaRepo, _ := newLeadFixture(t)

	_, err := spaRepo.Create(context.Background(), &spas.Spa{SpaID: "dormant-spa", SpaName: "Dormant", IsActive: false})
	require.NoError(t, err)

	rec := postLead(t, h, `{"spaId": "dormant-spa", "name": "Asha", "phone": "9876543210"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateLeadWithoutNotifier(t *testing.T) {
	spaRepo := spas.NewInMemoryRepository()
	_, err := spaRepo.Create(context.Background(), &spas.Spa{SpaID: "serenity-spa", SpaName: "Serenity", IsActive: true})
	require.NoError(t, err)

	h := NewHandler(NewInMemoryRepository(), spaRepo, nil, logging.New("error"))

	rec := postLead(t, h, `{"spaId": "serenity-spa", "name": "Asha", "phone": "9876543210"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
