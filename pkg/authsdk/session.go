package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/aussiebroadwan/sessiond/pkg/httpx"
)

// Session is one logged-in client. It holds the access token, the binding
// secret it is bound to, the session fingerprint and the refresh secret, and
// refreshes the access token when it expires.
type Session struct {
	client *SDKClient

	mu            sync.RWMutex
	accessToken   string
	bindingSecret string
	fingerprint   string
	refreshToken  string
	sessionID     string
	expiresAt     time.Time
}

// update replaces the session's credentials after login or refresh.
// Caller must hold mu or own s exclusively.
func (s *Session) update(data SessionData, cookies []*http.Cookie) {
	s.accessToken = data.AccessToken
	s.refreshToken = data.RefreshToken
	s.sessionID = data.SessionID

	// Refresh 30 seconds before the access token actually expires.
	s.expiresAt = time.Now().Add(time.Duration(data.ExpiresIn)*time.Second - 30*time.Second)

	for _, ck := range cookies {
		switch ck.Name {
		case httpx.CookieBinding:
			s.bindingSecret = ck.Value
		case httpx.CookieFingerprint:
			s.fingerprint = ck.Value
		case httpx.CookieRefresh:
			if ck.Value != "" {
				s.refreshToken = ck.Value
			}
		}
	}
}

// getValidToken returns the access token and binding secret, refreshing
// first when the token has expired.
func (s *Session) getValidToken(ctx context.Context) (string, string, error) {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		token, binding := s.accessToken, s.bindingSecret
		s.mu.RUnlock()
		return token, binding, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another goroutine may have refreshed already.
	if time.Now().Before(s.expiresAt) {
		return s.accessToken, s.bindingSecret, nil
	}
	if err := s.refreshLocked(ctx); err != nil {
		return "", "", fmt.Errorf("failed to refresh token: %w", err)
	}
	return s.accessToken, s.bindingSecret, nil
}

// Refresh rotates the refresh secret and replaces every credential the
// session holds. A failed refresh must not be retried with the same secret;
// log in again instead.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) error {
	if s.refreshToken == "" {
		return errors.New("no refresh token available")
	}

	resp, err := s.client.doRequest(ctx, http.MethodPost, "/v1/auth/refresh", nil, nil,
		&http.Cookie{Name: httpx.CookieRefresh, Value: s.refreshToken},
		&http.Cookie{Name: httpx.CookieFingerprint, Value: s.fingerprint},
	)
	if err != nil {
		return err
	}
	cookies := resp.Cookies()

	var out RefreshResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return err
	}
	s.update(out.SessionData, cookies)
	return nil
}

// Logout ends this session. The access token stays valid until it expires.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.RLock()
	refresh := s.refreshToken
	s.mu.RUnlock()

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/auth/logout",
		jsonBody(LogoutRequest{RefreshToken: refresh}), jsonHeaders)
	if err != nil {
		return err
	}
	if err := checkStatusNoContent(resp); err != nil {
		return err
	}

	s.mu.Lock()
	s.refreshToken = ""
	s.mu.Unlock()
	return nil
}

// ListSessions lists the caller's sessions, newest first.
func (s *Session) ListSessions(ctx context.Context) (*SessionsResponse, error) {
	return s.getSessions(ctx, "/v1/auth/sessions")
}

// EndSession ends one of the caller's sessions.
func (s *Session) EndSession(ctx context.Context, sessionID string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/auth/sessions/"+url.PathEscape(sessionID), nil, nil)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

// ChangePassword changes the caller's password. Every session of the
// account is ended, this one included.
func (s *Session) ChangePassword(ctx context.Context, current, next string) (*EndSessionsResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/v1/auth/password",
		jsonBody(ChangePasswordRequest{CurrentPassword: current, NewPassword: next}), jsonHeaders)
	if err != nil {
		return nil, err
	}

	var out EndSessionsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUserSessions lists another user's sessions. Requires an admin role.
func (s *Session) ListUserSessions(ctx context.Context, userID string) (*SessionsResponse, error) {
	return s.getSessions(ctx, "/v1/admin/users/"+url.PathEscape(userID)+"/sessions")
}

// EndUserSessions ends every session of another user. Requires an admin role.
func (s *Session) EndUserSessions(ctx context.Context, userID string) (*EndSessionsResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodDelete, "/v1/admin/users/"+url.PathEscape(userID)+"/sessions", nil, nil)
	if err != nil {
		return nil, err
	}

	var out EndSessionsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetUserRole changes another user's role. Requires super_admin.
func (s *Session) SetUserRole(ctx context.Context, userID, role string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, "/v1/admin/users/"+url.PathEscape(userID)+"/role",
		jsonBody(SetRoleRequest{Role: role}), jsonHeaders)
	if err != nil {
		return err
	}
	return checkStatusNoContent(resp)
}

func (s *Session) getSessions(ctx context.Context, path string) (*SessionsResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var out SessionsResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// AccessToken returns the current access token without checking expiration.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// BindingSecret returns the secret the access token is bound to.
func (s *Session) BindingSecret() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bindingSecret
}

// RefreshToken returns the current refresh secret.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

func (s *Session) Fingerprint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fingerprint
}

func (s *Session) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

func jsonBody(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}
