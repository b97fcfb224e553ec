package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/sessiond/pkg/jwtx"
	"github.com/aussiebroadwan/sessiond/pkg/slogx"
)

// AccessVerifier validates an access token against the binding secret that
// was issued with it.
type AccessVerifier interface {
	VerifyAccess(token, bindingSecret string) (jwtx.Claims, error)
}

// AuthnMiddleware requires a bearer access token plus the binding cookie.
// Every failure gets the same response; the reason only goes to the log.
func AuthnMiddleware(v AccessVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := BearerToken(r)
			if !ok {
				WriteUnauthorized(w)
				return
			}

			claims, err := v.VerifyAccess(raw, CookieValue(r, CookieBinding))
			if err != nil {
				log.Warn("access token rejected", "err", err)
				WriteUnauthorized(w)
				return
			}

			slogx.AddRequestAttrs(ctx, "user_id", claims.Subject)
			next.ServeHTTP(w, r.WithContext(ContextWithClaims(ctx, claims)))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(authz, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// WriteUnauthorized sends the generic 401 used for every auth failure.
func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	WriteError(w, http.StatusUnauthorized, "unauthorized", UnauthorizedDescription)
}
