package httpx

import (
	"net/http"
	"time"
)

// Cookie names for the material issued alongside an access token.
const (
	CookieBinding     = "__Secure-Fgp1"
	CookieFingerprint = "__Secure-Fgp2"
	CookieRefresh     = "__Secure-Rft"
)

// RefreshCookiePath scopes the refresh cookie to the auth endpoints.
const RefreshCookiePath = "/v1/auth"

// CookieOptions controls attributes shared by every auth cookie.
type CookieOptions struct {
	Secure bool
	Domain string
}

// SetAuthCookie writes an HttpOnly, SameSite=Strict cookie that expires
// after ttl.
func SetAuthCookie(w http.ResponseWriter, opts CookieOptions, name, value, path string, ttl time.Duration) {
	if path == "" {
		path = "/"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Domain:   opts.Domain,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		Secure:   opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearAuthCookie expires a cookie previously set with SetAuthCookie.
func ClearAuthCookie(w http.ResponseWriter, opts CookieOptions, name, path string) {
	if path == "" {
		path = "/"
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Domain:   opts.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// CookieValue returns the named cookie's value or "".
func CookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
