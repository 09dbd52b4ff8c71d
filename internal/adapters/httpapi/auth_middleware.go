package httpapi

import (
	"net/http"
	"strings"

	"github.com/meridian-travel/itinerary-api/internal/platform/auth"
)

// NewAuthMiddleware enforces Authorization: Bearer <JWT> for advisor
// endpoints. On success it stores the authenticated advisor id (JWT `sub`)
// in the request context.
func NewAuthMiddleware(a *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authz := r.Header.Get("Authorization")
			if authz == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing Authorization header", nil)
				return
			}
			const prefix = "Bearer "
			if !strings.HasPrefix(authz, prefix) {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "malformed Authorization header", nil)
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, prefix))
			if raw == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", nil)
				return
			}

			advisor, err := a.Verify(raw)
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAdvisor(r.Context(), advisor)))
		})
	}
}

// NewDevAuthMiddleware is a local/dev-only auth shim.
//
// It accepts an explicit advisor id via X-Debug-Advisor and stores it in the
// request context, falling back to defaultAdvisor when the header is absent.
// Do NOT use this in production deployments.
func NewDevAuthMiddleware(defaultAdvisor string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			advisor := strings.TrimSpace(r.Header.Get("X-Debug-Advisor"))
			if advisor == "" {
				advisor = strings.TrimSpace(defaultAdvisor)
			}
			if advisor == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing advisor (set X-Debug-Advisor)", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAdvisor(r.Context(), advisor)))
		})
	}
}
