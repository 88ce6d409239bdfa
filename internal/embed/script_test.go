package embed

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowbot/spa-widget-platform/pkg/logging"
)

func TestScriptHandlerServesLoader(t *testing.T) {
	h, err := NewScriptHandler(logging.New("error"))
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.HandleScript(rec, httptest.NewRequest(http.MethodGet, "/bot.js", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/javascript", rec.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	body := rec.Body.String()
	assert.Contains(t, body, "__SPA_BOT_LOADED", "double init guard")
	assert.Contains(t, body, ContainerID)
	assert.Contains(t, body, GlobalTenantID)
	assert.Contains(t, body, "version: '"+Version+"'")
	assert.Contains(t, body, "'z-index': '2147483647'")
	assert.Contains(t, body, "attachShadow")
	assert.Contains(t, body, "MutationObserver")
	assert.Contains(t, body, "setInterval(ensureTopPosition, 2000)")
	assert.NotContains(t, body, "{{", "template fully rendered")
}
