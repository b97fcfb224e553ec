// Package metrics holds the Prometheus collectors for the auth service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sessiond"

var (
	Logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "logins_total", Help: "Login attempts by result."},
		[]string{"result"},
	)
	Rotations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "refresh_rotations_total", Help: "Refresh credential rotations by result."},
		[]string{"result"},
	)
	AccessVerifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "access_verifications_total", Help: "Access token verifications by result."},
		[]string{"result"},
	)
	SessionsEnded = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "sessions_ended_total", Help: "Sessions removed or logged out, by reason."},
		[]string{"reason"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by route, method and status."},
		[]string{"route", "method", "code"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// Result labels shared by the counters above.
const (
	ResultSuccess             = "success"
	ResultInvalidCredentials  = "invalid_credentials"
	ResultNotFound            = "not_found"
	ResultFingerprintMismatch = "fingerprint_mismatch"
	ResultExpired             = "expired"
	ResultBadSignature        = "bad_signature"
	ResultContextMismatch     = "context_mismatch"
	ResultError               = "error"
)

// Reasons for SessionsEnded.
const (
	ReasonUser   = "user"
	ReasonAll    = "all"
	ReasonLogout = "logout"
	ReasonSweep  = "sweep"
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(
		Logins,
		Rotations,
		AccessVerifications,
		SessionsEnded,
		HTTPRequests,
		HTTPDuration,
	)
}

// HTTPMiddleware records request counts and latency. It must wrap the
// ServeMux so the matched route pattern is known once the handler returns.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(rw.status)).Inc()
		HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
