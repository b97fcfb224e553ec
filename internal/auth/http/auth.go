package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/aussiebroadwan/sessiond/internal/auth/service"
	"github.com/aussiebroadwan/sessiond/pkg/authsdk"
	"github.com/aussiebroadwan/sessiond/pkg/cryptox"
	"github.com/aussiebroadwan/sessiond/pkg/httpx"
)

// AuthHandler serves the credential endpoints under /v1/auth.
type AuthHandler struct {
	Auth    *service.AuthService
	Refresh *service.RefreshService

	Cookies    httpx.CookieOptions
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// HandleSignUp godoc
//
//	@Summary		Register an account
//	@Description	Creates an active, unverified account with role "user".
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"Account details"
//	@Success		201		{object}	authsdk.UserResponse
//	@Failure		400		{object}	authsdk.APIError	"invalid_request"
//	@Failure		409		{object}	authsdk.APIError	"account_exists"
//	@Failure		429		{object}	authsdk.APIError	"rate_limit_exceeded"
//	@Router			/v1/auth/sign-up [post]
func (h *AuthHandler) HandleSignUp(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w)
		return
	}

	user, err := h.Auth.Register(r.Context(), service.Registration{
		Email:     req.Email,
		Password:  req.Password,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.PhoneNumber,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleLogin godoc
//
//	@Summary		Log in with email and password
//	@Description	Opens a new session. The access token is returned in the body; the binding
//	@Description	secret (__Secure-Fgp1), session fingerprint (__Secure-Fgp2) and refresh secret
//	@Description	(__Secure-Rft) are set as HttpOnly cookies.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	authsdk.LoginResponse
//	@Failure		400		{object}	authsdk.APIError	"invalid_request"
//	@Failure		401		{object}	authsdk.APIError	"unauthorized"
//	@Failure		429		{object}	authsdk.APIError	"rate_limit_exceeded"
//	@Router			/v1/auth/login [post]
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w)
		return
	}
	metadata, ok := normalizeMetadata(req.Metadata)
	if !ok {
		authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "metadata must be a JSON object").WriteError(w)
		return
	}

	res, err := h.Auth.Login(r.Context(), service.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		Signals:  httpx.ClientSignalsFromRequest(r),
		Location: req.Location,
		Metadata: metadata,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.setSessionCookies(w, res.Access.BindingSecret, res.Login.Fingerprint, res.Login.RefreshSecret)
	httpx.WriteJSON(w, http.StatusOK, authsdk.LoginResponse{
		UserResponse: toUserResponse(res.User),
		SessionData:  h.sessionData(res.Access, res.Login.RefreshSecret, res.Login.SessionID),
	})
}

// HandleRefresh godoc
//
//	@Summary		Rotate the refresh secret
//	@Description	Exchanges the refresh secret (body or __Secure-Rft cookie) together with the
//	@Description	session fingerprint (__Secure-Fgp2 cookie) for a new access token, binding
//	@Description	secret, fingerprint and refresh secret. The presented secret is consumed; a
//	@Description	failed refresh must not be retried.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	false	"Refresh secret, if not sent as a cookie"
//	@Success		200		{object}	authsdk.RefreshResponse
//	@Failure		401		{object}	authsdk.APIError	"unauthorized"
//	@Failure		429		{object}	authsdk.APIError	"rate_limit_exceeded"
//	@Router			/v1/auth/refresh [post]
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RefreshRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeBadBody(w)
		return
	}

	secret := req.RefreshToken
	if secret == "" {
		secret = httpx.CookieValue(r, httpx.CookieRefresh)
	}
	presentedFingerprint := httpx.CookieValue(r, httpx.CookieFingerprint)
	nextFingerprint := cryptox.ClientFingerprint(httpx.ClientSignalsFromRequest(r))

	rot, err := h.Refresh.Rotate(r.Context(), secret, presentedFingerprint, nextFingerprint)
	if err != nil {
		if service.IsAuthFailure(err) {
			h.clearSessionCookies(w)
		}
		writeServiceError(w, r, err)
		return
	}

	h.setSessionCookies(w, rot.Access.BindingSecret, rot.Fingerprint, rot.RefreshSecret)
	httpx.WriteJSON(w, http.StatusOK, authsdk.RefreshResponse{
		SessionData: h.sessionData(rot.Access, rot.RefreshSecret, rot.SessionID),
	})
}

// HandleLogout godoc
//
//	@Summary		End the current session
//	@Description	Drops the refresh secret (body or __Secure-Rft cookie) and marks its session
//	@Description	logged out. Issued access tokens stay valid until they expire.
//	@Tags			Auth
//	@Accept			json
//	@Param			request	body	authsdk.LogoutRequest	false	"Refresh secret, if not sent as a cookie"
//	@Success		204
//	@Failure		401	{object}	authsdk.APIError	"unauthorized"
//	@Failure		403	{object}	authsdk.APIError	"access_denied"
//	@Security		BearerAuth
//	@Router			/v1/auth/logout [post]
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LogoutRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeBadBody(w)
		return
	}

	secret := req.RefreshToken
	if secret == "" {
		secret = httpx.CookieValue(r, httpx.CookieRefresh)
	}

	if err := h.Refresh.Logout(r.Context(), httpx.UserIDFromContext(r.Context()), secret); err != nil {
		writeRevocationError(w, r, err)
		return
	}

	h.clearSessionCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleChangePassword godoc
//
//	@Summary		Change password
//	@Description	Verifies the current password, stores the new one and ends every session of
//	@Description	the account, including the caller's.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	authsdk.EndSessionsResponse
//	@Failure		400		{object}	authsdk.APIError	"invalid_request"
//	@Failure		401		{object}	authsdk.APIError	"unauthorized"
//	@Security		BearerAuth
//	@Router			/v1/auth/password [post]
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w)
		return
	}

	n, err := h.Auth.ChangePassword(r.Context(), httpx.UserIDFromContext(r.Context()), req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.clearSessionCookies(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.EndSessionsResponse{SessionsEnded: n})
}

func (h *AuthHandler) sessionData(grant service.AccessGrant, refreshSecret, sessionID string) authsdk.SessionData {
	return authsdk.SessionData{
		AccessToken:  grant.Token,
		RefreshToken: refreshSecret,
		SessionID:    sessionID,
		TokenType:    "Bearer",
		ExpiresIn:    int(time.Until(grant.ExpiresAt).Round(time.Second).Seconds()),
	}
}

func (h *AuthHandler) setSessionCookies(w http.ResponseWriter, binding, fingerprint, refresh string) {
	httpx.SetAuthCookie(w, h.Cookies, httpx.CookieBinding, binding, "/", h.AccessTTL)
	httpx.SetAuthCookie(w, h.Cookies, httpx.CookieFingerprint, fingerprint, httpx.RefreshCookiePath, h.RefreshTTL)
	httpx.SetAuthCookie(w, h.Cookies, httpx.CookieRefresh, refresh, httpx.RefreshCookiePath, h.RefreshTTL)
}

func (h *AuthHandler) clearSessionCookies(w http.ResponseWriter) {
	httpx.ClearAuthCookie(w, h.Cookies, httpx.CookieBinding, "/")
	httpx.ClearAuthCookie(w, h.Cookies, httpx.CookieFingerprint, httpx.RefreshCookiePath)
	httpx.ClearAuthCookie(w, h.Cookies, httpx.CookieRefresh, httpx.RefreshCookiePath)
}

// decodeOptionalJSON accepts an empty body.
func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	if err := httpx.DecodeJSON(w, r, v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// normalizeMetadata accepts a JSON object, null or nothing.
func normalizeMetadata(raw json.RawMessage) (json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, true
	}
	var obj map[string]json.RawMessage
	if raw[0] != '{' || json.Unmarshal(raw, &obj) != nil {
		return nil, false
	}
	return raw, true
}
