package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/sessiond/internal/auth/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { metrics.RegisterCollectors(reg) })

	// A second registry must accept the same collectors.
	require.NotPanics(t, func() { metrics.RegisterCollectors(prometheus.NewRegistry()) })
}

func TestHTTPMiddlewareUsesRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	h := metrics.HTTPMiddleware(mux)
	before := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET /v1/things/{id}", "GET", "202"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/things/42", nil))

	after := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET /v1/things/{id}", "GET", "202"))
	require.Equal(t, before+1, after)
}
