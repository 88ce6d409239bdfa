package router

import (
	"net/http"
	"strings"

	"github.com/glowbot/spa-widget-platform/internal/tenancy"
)

const spaHeader = "X-Spa-Id"

// spaTenancy propagates the spa id header into the request context. The
// widget also carries the spa id in request bodies and paths, so a missing
// header is not an error here.
func spaTenancy(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		spaID := strings.TrimSpace(r.Header.Get(spaHeader))
		if spaID != "" {
			r = r.WithContext(tenancy.WithSpaID(r.Context(), spaID))
		}
		next.ServeHTTP(w, r)
	})
}

// spaIDFromRequest exposes the spa id for local handlers.
func spaIDFromRequest(r *http.Request) (string, bool) {
	return tenancy.SpaIDFromContext(r.Context())
}
