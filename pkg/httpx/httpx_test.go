package httpx_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessiond/pkg/httpx"
	"github.com/aussiebroadwan/sessiond/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}), mark("a"), mark("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestClientIP(t *testing.T) {
	req := fromIP(http.MethodGet, "/", "192.168.1.1", nil)
	require.Equal(t, "192.168.1.1", httpx.ClientIP(req))

	// X-Real-IP is not trusted.
	req.Header.Set("X-Real-IP", "203.0.113.2")
	require.Equal(t, "192.168.1.1", httpx.ClientIP(req))

	req.Header.Set("X-Forwarded-For", " , 10.0.0.1")
	require.Equal(t, "192.168.1.1", httpx.ClientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
	require.Equal(t, "203.0.113.1", httpx.ClientIP(req))
}

func TestClientSignalsFromRequest(t *testing.T) {
	req := fromIP(http.MethodGet, "/", "10.1.2.3", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Accept-Language", "en-AU")

	sig := httpx.ClientSignalsFromRequest(req)
	require.Equal(t, "Mozilla/5.0", sig.UserAgent)
	require.Equal(t, "10.1.2.3", sig.IP)
	require.Equal(t, "en-AU", sig.AcceptLanguage)
}

func TestAuthCookies(t *testing.T) {
	opts := httpx.CookieOptions{Secure: true}

	rec := httptest.NewRecorder()
	httpx.SetAuthCookie(rec, opts, httpx.CookieRefresh, "secret", httpx.RefreshCookiePath, time.Hour)
	httpx.ClearAuthCookie(rec, opts, httpx.CookieBinding, "")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)

	set := cookies[0]
	require.Equal(t, httpx.CookieRefresh, set.Name)
	require.Equal(t, "secret", set.Value)
	require.Equal(t, "/v1/auth", set.Path)
	require.True(t, set.HttpOnly)
	require.True(t, set.Secure)
	require.Equal(t, http.SameSiteStrictMode, set.SameSite)
	require.Equal(t, 3600, set.MaxAge)

	cleared := cookies[1]
	require.Equal(t, httpx.CookieBinding, cleared.Name)
	require.Empty(t, cleared.Value)
	require.Equal(t, -1, cleared.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: httpx.CookieFingerprint, Value: "fp"})
	require.Equal(t, "fp", httpx.CookieValue(req, httpx.CookieFingerprint))
	require.Empty(t, httpx.CookieValue(req, httpx.CookieRefresh))
}

type stubVerifier struct {
	claims  jwtx.Claims
	token   string
	binding string
}

func (s stubVerifier) VerifyAccess(token, binding string) (jwtx.Claims, error) {
	if token != s.token || binding != s.binding {
		return jwtx.Claims{}, errors.New("nope")
	}
	return s.claims, nil
}

func TestAuthnAndRole(t *testing.T) {
	claims := jwtx.NewAccessClaims("user-1", "admin", "h", time.Minute, "iss", time.Now())
	v := stubVerifier{claims: claims, token: "tok", binding: "bind"}

	var gotUser, gotRole string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = httpx.UserIDFromContext(r.Context())
		gotRole = httpx.RoleFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	request := func(token, binding string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		if binding != "" {
			req.AddCookie(&http.Cookie{Name: httpx.CookieBinding, Value: binding})
		}
		return req
	}

	t.Run("accepts token with binding", func(t *testing.T) {
		rec := httptest.NewRecorder()
		httpx.Chain(inner, httpx.AuthnMiddleware(v), httpx.RequireRole("admin")).ServeHTTP(rec, request("tok", "bind"))
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, "user-1", gotUser)
		require.Equal(t, "admin", gotRole)
	})

	t.Run("every failure looks the same", func(t *testing.T) {
		h := httpx.Chain(inner, httpx.AuthnMiddleware(v))
		var bodies []string
		for _, req := range []*http.Request{
			request("", ""),
			request("tok", ""),
			request("tok", "other"),
			request("bad", "bind"),
		} {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			bodies = append(bodies, rec.Body.String())
		}
		for _, b := range bodies[1:] {
			require.Equal(t, bodies[0], b)
		}
	})

	t.Run("role mismatch is forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		httpx.Chain(inner, httpx.AuthnMiddleware(v), httpx.RequireRole("super_admin")).ServeHTTP(rec, request("tok", "bind"))
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Contains(t, rec.Body.String(), "access_denied")
	})
}
