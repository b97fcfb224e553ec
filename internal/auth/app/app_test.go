package app

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sessiond/internal/auth/domain"
	"github.com/aussiebroadwan/sessiond/pkg/jwtx"
	"github.com/aussiebroadwan/sessiond/pkg/slogx"
)

func TestNew(t *testing.T) {
	cfg := testConfig(t)

	app, err := New(cfg, WithLogger(slogx.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	// The pepper is generated on first start.
	b, err := os.ReadFile(cfg.PepperFile)
	require.NoError(t, err)
	require.NotEmpty(t, b)

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWTSecret = ""

	_, err := New(cfg, WithLogger(slogx.Discard()))
	require.Error(t, err)
}

func TestInitAuthKeys_AcceptsRetiredSecret(t *testing.T) {
	cfg := testConfig(t)

	_, verifier, err := InitAuthKeys(cfg, slogx.Discard())
	require.NoError(t, err)

	retired, err := jwtx.NewSignerHS256([]byte(secretC))
	require.NoError(t, err)
	token, err := retired.Sign(jwtx.NewAccessClaims("u1", domain.RoleUser.String(), "ctx", jwtx.DefaultAccessTokenTTL, cfg.Issuer, time.Now()))
	require.NoError(t, err)

	claims, err := verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
}
