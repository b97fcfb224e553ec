package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sessiond/internal/auth/app"
	"github.com/aussiebroadwan/sessiond/pkg/authsdk"
	"github.com/aussiebroadwan/sessiond/pkg/httpx"
	"github.com/aussiebroadwan/sessiond/pkg/slogx"
)

const (
	rootEmail    = "root@example.com"
	testPassword = "correct-horse"
)

// TestMain lifts the rate limits so flows that log in many times are not
// throttled. Limits themselves are covered in httpx.
func TestMain(m *testing.M) {
	relaxed := httpx.RateLimitConfig{RequestsPerWindow: 10000, Window: time.Minute, Burst: 10000}
	httpx.StrictLimit = relaxed
	httpx.ModerateLimit = relaxed
	httpx.LenientLimit = relaxed

	os.Exit(m.Run())
}

type testServer struct {
	URL    string
	client *authsdk.SDKClient
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()

	cfg := app.Config{
		Env:                  "test",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
		DatabaseDriver:       app.DriverSQLite,
		DatabaseURL:          filepath.Join(dir, "sessiond.db"),
		Issuer:               "sessiond-test",
		JWTSecret:            "access-secret-0123456789abcdef0123456789",
		JWTRefreshSecret:     "refresh-secret-0123456789abcdef012345678",
		AccessTokenTTL:       15 * time.Minute,
		RefreshTokenTTL:      7 * 24 * time.Hour,
		PepperFile:           filepath.Join(dir, "pepper"),
		CookieSecure:         true,
		BootstrapAdminEmails: []string{rootEmail},
	}

	a, err := app.New(cfg, app.WithLogger(slogx.Discard()))
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		srv.Close()
		_ = a.Close()
	})

	return &testServer{URL: srv.URL, client: authsdk.NewSDKClient(srv.URL)}
}

func (s *testServer) register(t *testing.T, email, username string) *authsdk.UserResponse {
	t.Helper()
	u, err := s.client.Register(context.Background(), authsdk.RegisterRequest{
		Email:     email,
		Password:  testPassword,
		Username:  username,
		FirstName: "Test",
		LastName:  "User",
	})
	require.NoError(t, err)
	return u
}

func (s *testServer) login(t *testing.T, email string) *authsdk.Session {
	t.Helper()
	sess, _, err := s.client.Login(context.Background(), authsdk.LoginRequest{
		Email:    email,
		Password: testPassword,
	})
	require.NoError(t, err)
	return sess
}

type rawResponse struct {
	Status  int
	Cookies []*http.Cookie
	Body    []byte
}

func (r rawResponse) errorBody(t *testing.T) httpx.ErrorBody {
	t.Helper()
	var body httpx.ErrorBody
	require.NoError(t, json.Unmarshal(r.Body, &body))
	return body
}

func (r rawResponse) cookie(name string) *http.Cookie {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// do sends a request without going through the SDK, for the negative paths
// the SDK never produces.
func (s *testServer) do(t *testing.T, method, path string, body any, bearer string, cookies ...*http.Cookie) rawResponse {
	t.Helper()

	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.URL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)

	return rawResponse{Status: resp.StatusCode, Cookies: resp.Cookies(), Body: buf.Bytes()}
}

func cookie(name, value string) *http.Cookie {
	return &http.Cookie{Name: name, Value: value}
}

func requireGenericUnauthorized(t *testing.T, r rawResponse) {
	t.Helper()
	require.Equal(t, http.StatusUnauthorized, r.Status)
	body := r.errorBody(t)
	require.Equal(t, authsdk.ErrorCodeUnauthorized, body.Error)
	require.Equal(t, httpx.UnauthorizedDescription, body.ErrorDescription)
}
