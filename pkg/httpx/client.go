package httpx

import (
	"net"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/sessiond/pkg/cryptox"
)

// ClientIP returns the caller address: the first X-Forwarded-For hop, else
// the connection's remote address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ClientSignalsFromRequest collects the inputs for a client fingerprint.
func ClientSignalsFromRequest(r *http.Request) cryptox.ClientSignals {
	return cryptox.ClientSignals{
		UserAgent:      r.UserAgent(),
		IP:             ClientIP(r),
		AcceptLanguage: r.Header.Get("Accept-Language"),
	}
}
