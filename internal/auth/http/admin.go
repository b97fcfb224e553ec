package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/sessiond/internal/auth/domain"
	"github.com/aussiebroadwan/sessiond/internal/auth/service"
	"github.com/aussiebroadwan/sessiond/pkg/authsdk"
	"github.com/aussiebroadwan/sessiond/pkg/httpx"
	"github.com/aussiebroadwan/sessiond/pkg/slogx"
)

// AdminHandler serves /v1/admin. Role checks happen in middleware.
type AdminHandler struct {
	Auth     *service.AuthService
	Sessions *service.SessionService
}

// HandleListUserSessions godoc
//
//	@Summary		List a user's sessions
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	authsdk.SessionsResponse
//	@Failure		401	{object}	authsdk.APIError	"unauthorized"
//	@Failure		403	{object}	authsdk.APIError	"access_denied"
//	@Failure		404	{object}	authsdk.APIError	"not_found"
//	@Security		BearerAuth
//	@Router			/v1/admin/users/{id}/sessions [get]
func (h *AdminHandler) HandleListUserSessions(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Sessions.ListSessions(r.Context(), r.PathValue("id"))
	if errors.Is(err, service.ErrNotFound) {
		authsdk.ErrNotFound.WriteError(w)
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSessionsResponse(overview))
}

// HandleEndUserSessions godoc
//
//	@Summary		End all of a user's sessions
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path		string	true	"User ID"
//	@Success		200	{object}	authsdk.EndSessionsResponse
//	@Failure		401	{object}	authsdk.APIError	"unauthorized"
//	@Failure		403	{object}	authsdk.APIError	"access_denied"
//	@Failure		404	{object}	authsdk.APIError	"not_found"
//	@Security		BearerAuth
//	@Router			/v1/admin/users/{id}/sessions [delete]
func (h *AdminHandler) HandleEndUserSessions(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")
	n, err := h.Sessions.EndUserSessions(r.Context(), userID)
	if errors.Is(err, service.ErrNotFound) {
		authsdk.ErrNotFound.WriteError(w)
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	slogx.FromContext(r.Context()).Info("admin ended user sessions",
		"admin_id", httpx.UserIDFromContext(r.Context()),
		"user_id", userID,
		"sessions_ended", n,
	)
	httpx.WriteJSON(w, http.StatusOK, authsdk.EndSessionsResponse{SessionsEnded: n})
}

// HandleSetRole godoc
//
//	@Summary		Change a user's role
//	@Description	Takes effect on the user's next login or refresh.
//	@Tags			Admin
//	@Accept			json
//	@Param			id		path	string					true	"User ID"
//	@Param			request	body	authsdk.SetRoleRequest	true	"New role"
//	@Success		204
//	@Failure		400	{object}	authsdk.APIError	"invalid_request"
//	@Failure		401	{object}	authsdk.APIError	"unauthorized"
//	@Failure		403	{object}	authsdk.APIError	"access_denied"
//	@Failure		404	{object}	authsdk.APIError	"not_found"
//	@Security		BearerAuth
//	@Router			/v1/admin/users/{id}/role [put]
func (h *AdminHandler) HandleSetRole(w http.ResponseWriter, r *http.Request) {
	var req authsdk.SetRoleRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadBody(w)
		return
	}

	err := h.Auth.SetRole(r.Context(), r.PathValue("id"), domain.Role(req.Role))
	if errors.Is(err, service.ErrNotFound) {
		authsdk.ErrNotFound.WriteError(w)
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
