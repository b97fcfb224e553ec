package httpx

import (
	"net/http"
	"slices"

	"github.com/aussiebroadwan/sessiond/pkg/slogx"
)

// RequireRole lets the request through only if the caller's role is one of
// the given roles. Must run after AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := RoleFromContext(r.Context())
			if role == "" || !slices.Contains(roles, role) {
				slogx.FromContext(r.Context()).Warn("role check failed",
					"role", role,
					"required", roles,
				)
				WriteError(w, http.StatusForbidden, "access_denied", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
