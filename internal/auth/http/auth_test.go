package http_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/sessiond/pkg/authsdk"
	"github.com/aussiebroadwan/sessiond/pkg/httpx"
)

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	live, err := srv.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := srv.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Signer)
}

func TestSignUp(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	u := srv.register(t, "Alice@Example.com", "alice")
	require.Equal(t, "alice@example.com", u.Email)
	require.Equal(t, "Test User", u.FullName)
	require.Equal(t, "user", u.Role)
	require.True(t, u.IsActive)
	require.False(t, u.IsVerified)

	root := srv.register(t, rootEmail, "root")
	require.Equal(t, "super_admin", root.Role)

	_, err := srv.client.Register(ctx, authsdk.RegisterRequest{
		Email: "alice@example.com", Password: testPassword, Username: "alice2", FirstName: "A", LastName: "B",
	})
	require.ErrorIs(t, err, authsdk.ErrAccountExists)

	_, err = srv.client.Register(ctx, authsdk.RegisterRequest{
		Email: "bob@example.com", Password: "short", Username: "bob", FirstName: "B", LastName: "C",
	})
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, authsdk.ErrorCodeInvalidRequest, apiErr.Code)
	require.Contains(t, apiErr.Description, "password")

	resp := srv.do(t, http.MethodPost, "/v1/auth/sign-up", map[string]any{"email": "x@example.com", "unknown": true}, "")
	require.Equal(t, http.StatusBadRequest, resp.Status)
}

func TestLogin_SetsCookies(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "alice@example.com", "alice")

	resp := srv.do(t, http.MethodPost, "/v1/auth/login", authsdk.LoginRequest{
		Email:    "alice@example.com",
		Password: testPassword,
		Location: "Perth",
		Metadata: []byte(`{"device":"laptop"}`),
	}, "")
	require.Equal(t, http.StatusOK, resp.Status)
	require.Contains(t, string(resp.Body), `"sessionData"`)
	require.Contains(t, string(resp.Body), `"tokenType":"Bearer"`)

	binding := resp.cookie(httpx.CookieBinding)
	fingerprint := resp.cookie(httpx.CookieFingerprint)
	refresh := resp.cookie(httpx.CookieRefresh)
	for _, c := range []*http.Cookie{binding, fingerprint, refresh} {
		require.NotNil(t, c)
		require.NotEmpty(t, c.Value)
		require.True(t, c.HttpOnly)
		require.True(t, c.Secure)
		require.Equal(t, http.SameSiteStrictMode, c.SameSite)
	}
	require.Equal(t, httpx.RefreshCookiePath, refresh.Path)
	require.Equal(t, httpx.RefreshCookiePath, fingerprint.Path)
	require.Len(t, binding.Value, 64)

	sess := srv.login(t, "alice@example.com")
	list, err := sess.ListSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, list.Sessions, 2)
	require.Equal(t, sess.SessionID(), list.Sessions[0].ID)
	require.Equal(t, "Perth", list.Sessions[1].Location)
	require.JSONEq(t, `{"device":"laptop"}`, string(list.Sessions[1].Metadata))
	require.NotContains(t, strings.ToLower(string(resp.Body)), "fingerprint")

	bad := srv.do(t, http.MethodPost, "/v1/auth/login", map[string]any{
		"email": "alice@example.com", "password": testPassword, "metadata": []int{1},
	}, "")
	require.Equal(t, http.StatusBadRequest, bad.Status)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "alice@example.com", "alice")

	wrongPassword := srv.do(t, http.MethodPost, "/v1/auth/login",
		authsdk.LoginRequest{Email: "alice@example.com", Password: "wrong-password"}, "")
	unknownEmail := srv.do(t, http.MethodPost, "/v1/auth/login",
		authsdk.LoginRequest{Email: "nobody@example.com", Password: testPassword}, "")

	requireGenericUnauthorized(t, wrongPassword)
	requireGenericUnauthorized(t, unknownEmail)
	require.Equal(t, wrongPassword.Body, unknownEmail.Body)
	require.Nil(t, wrongPassword.cookie(httpx.CookieRefresh))
}

func TestAccess_RequiresBindingSecret(t *testing.T) {
	srv := newTestServer(t)
	srv.register(t, "alice@example.com", "alice")
	first := srv.login(t, "alice@example.com")
	second := srv.login(t, "alice@example.com")

	ok := srv.do(t, http.MethodGet, "/v1/auth/sessions", nil, first.AccessToken(),
		cookie(httpx.CookieBinding, first.BindingSecret()))
	require.Equal(t, http.StatusOK, ok.Status)

	noBinding := srv.do(t, http.MethodGet, "/v1/auth/sessions", nil, first.AccessToken())
	requireGenericUnauthorized(t, noBinding)

	wrongBinding := srv.do(t, http.MethodGet, "/v1/auth/sessions", nil, first.AccessToken(),
		cookie(httpx.CookieBinding, second.BindingSecret()))
	requireGenericUnauthorized(t, wrongBinding)

	noToken := srv.do(t, http.MethodGet, "/v1/auth/sessions", nil, "",
		cookie(httpx.CookieBinding, first.BindingSecret()))
	requireGenericUnauthorized(t, noToken)

	forged := srv.do(t, http.MethodGet, "/v1/auth/sessions", nil, first.AccessToken()+"x",
		cookie(httpx.CookieBinding, first.BindingSecret()))
	requireGenericUnauthorized(t, forged)

	require.Equal(t, noBinding.Body, wrongBinding.Body)
	require.Equal(t, noBinding.Body, forged.Body)
}

func TestRefresh_Rotation(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	srv.register(t, "alice@example.com", "alice")
	sess := srv.login(t, "alice@example.com")

	oldRefresh := sess.RefreshToken()
	oldFingerprint := sess.Fingerprint()
	oldAccess := sess.AccessToken()
	sessionID := sess.SessionID()

	require.NoError(t, sess.Refresh(ctx))
	require.NotEqual(t, oldRefresh, sess.RefreshToken())
	require.NotEqual(t, oldAccess, sess.AccessToken())
	require.NotEqual(t, oldFingerprint, sess.Fingerprint())
	require.Equal(t, sessionID, sess.SessionID())

	// The consumed secret cannot be replayed.
	replay := srv.do(t, http.MethodPost, "/v1/auth/refresh", nil, "",
		cookie(httpx.CookieRefresh, oldRefresh),
		cookie(httpx.CookieFingerprint, oldFingerprint))
	requireGenericUnauthorized(t, replay)

	// A wrong fingerprint fails the same way and leaves the secret usable.
	mismatch := srv.do(t, http.MethodPost, "/v1/auth/refresh", nil, "",
		cookie(httpx.CookieRefresh, sess.RefreshToken()),
		cookie(httpx.CookieFingerprint, oldFingerprint))
	requireGenericUnauthorized(t, mismatch)
	require.Equal(t, replay.Body, mismatch.Body)

	// Refresh secret in the body rather than a cookie.
	viaBody := srv.do(t, http.MethodPost, "/v1/auth/refresh",
		authsdk.RefreshRequest{RefreshToken: sess.RefreshToken()}, "",
		cookie(httpx.CookieFingerprint, sess.Fingerprint()))
	require.Equal(t, http.StatusOK, viaBody.Status)
	require.NotNil(t, viaBody.cookie(httpx.CookieRefresh))
	require.NotNil(t, viaBody.cookie(httpx.CookieBinding))

	// The SDK session still holds the secret consumed above.
	err := sess.Refresh(ctx)
	require.ErrorIs(t, err, authsdk.ErrUnauthorized)

	list, err := srv.login(t, "alice@example.com").ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list.Sessions, 2)
}

func TestSessions_EndSession(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	srv.register(t, "alice@example.com", "alice")
	srv.register(t, "bob@example.com", "bob")
	alice := srv.login(t, "alice@example.com")
	aliceOther := srv.login(t, "alice@example.com")
	bob := srv.login(t, "bob@example.com")

	err := alice.EndSession(ctx, bob.SessionID())
	require.ErrorIs(t, err, authsdk.ErrAccessDenied)

	err = alice.EndSession(ctx, "01JUNKNOWNSESSION000000000")
	require.ErrorIs(t, err, authsdk.ErrAccessDenied)

	require.NoError(t, bob.Refresh(ctx))

	require.NoError(t, alice.EndSession(ctx, aliceOther.SessionID()))
	require.ErrorIs(t, aliceOther.Refresh(ctx), authsdk.ErrUnauthorized)

	list, err := alice.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list.Sessions, 1)
	require.EqualValues(t, 2, list.LoginCount)
	require.EqualValues(t, 1, list.TotalActiveLogin)
}

func TestLogout(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	srv.register(t, "alice@example.com", "alice")
	sess := srv.login(t, "alice@example.com")

	secret := sess.RefreshToken()
	fingerprint := sess.Fingerprint()

	require.NoError(t, sess.Logout(ctx))

	replay := srv.do(t, http.MethodPost, "/v1/auth/refresh", nil, "",
		cookie(httpx.CookieRefresh, secret),
		cookie(httpx.CookieFingerprint, fingerprint))
	requireGenericUnauthorized(t, replay)

	list, err := srv.login(t, "alice@example.com").ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list.Sessions, 2)
	require.EqualValues(t, 1, list.TotalActiveLogin)
	require.NotNil(t, list.Sessions[1].LogoutAt)
}

func TestChangePassword(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	srv.register(t, "alice@example.com", "alice")
	first := srv.login(t, "alice@example.com")
	second := srv.login(t, "alice@example.com")
	secret, fingerprint := first.RefreshToken(), first.Fingerprint()

	_, err := second.ChangePassword(ctx, "wrong-password", "new-password-1")
	require.ErrorIs(t, err, authsdk.ErrUnauthorized)

	out, err := second.ChangePassword(ctx, testPassword, "new-password-1")
	require.NoError(t, err)
	require.EqualValues(t, 2, out.SessionsEnded)

	replay := srv.do(t, http.MethodPost, "/v1/auth/refresh", nil, "",
		cookie(httpx.CookieRefresh, secret),
		cookie(httpx.CookieFingerprint, fingerprint))
	requireGenericUnauthorized(t, replay)

	_, _, err = srv.client.Login(ctx, authsdk.LoginRequest{Email: "alice@example.com", Password: "new-password-1"})
	require.NoError(t, err)
}

func TestAdmin(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()
	alice := srv.register(t, "alice@example.com", "alice")
	bob := srv.register(t, "bob@example.com", "bob")
	srv.register(t, rootEmail, "root")

	aliceSess := srv.login(t, "alice@example.com")
	srv.login(t, "bob@example.com")
	root := srv.login(t, rootEmail)

	_, err := aliceSess.ListUserSessions(ctx, bob.ID)
	require.ErrorIs(t, err, authsdk.ErrAccessDenied)
	require.ErrorIs(t, aliceSess.SetUserRole(ctx, alice.ID, "super_admin"), authsdk.ErrAccessDenied)

	list, err := root.ListUserSessions(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, list.Sessions, 1)

	_, err = root.ListUserSessions(ctx, "01JUNKNOWNUSER000000000000")
	require.ErrorIs(t, err, authsdk.ErrNotFound)

	_, err = root.EndUserSessions(ctx, "01JUNKNOWNUSER000000000000")
	require.ErrorIs(t, err, authsdk.ErrNotFound)

	require.ErrorIs(t, root.SetUserRole(ctx, alice.ID, "emperor"), authsdk.ErrInvalidRequest)
	require.NoError(t, root.SetUserRole(ctx, alice.ID, "admin"))

	// The new role shows up in tokens issued after the change.
	aliceAdmin := srv.login(t, "alice@example.com")
	list, err = aliceAdmin.ListUserSessions(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, list.Sessions, 1)

	ended, err := aliceAdmin.EndUserSessions(ctx, bob.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, ended.SessionsEnded)

	// Admins cannot change roles.
	require.ErrorIs(t, aliceAdmin.SetUserRole(ctx, bob.ID, "admin"), authsdk.ErrAccessDenied)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)
	_, err := srv.client.GetLiveness(context.Background())
	require.NoError(t, err)

	resp := srv.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, resp.Status)
	require.Contains(t, string(resp.Body), "sessiond_http_requests_total")
	require.Contains(t, string(resp.Body), `route="GET /livez"`)
}
