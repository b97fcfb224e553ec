package http

import (
	"net/http"

	"github.com/aussiebroadwan/sessiond/internal/auth/service"
	"github.com/aussiebroadwan/sessiond/pkg/httpx"
)

// SessionsHandler lets a user see and end their own sessions.
type SessionsHandler struct {
	Sessions *service.SessionService
}

// HandleList godoc
//
//	@Summary		List my sessions
//	@Description	Returns the caller's sessions, newest first, with login statistics.
//	@Tags			Sessions
//	@Produce		json
//	@Success		200	{object}	authsdk.SessionsResponse
//	@Failure		401	{object}	authsdk.APIError	"unauthorized"
//	@Security		BearerAuth
//	@Router			/v1/auth/sessions [get]
func (h *SessionsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	overview, err := h.Sessions.ListSessions(r.Context(), httpx.UserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toSessionsResponse(overview))
}

// HandleDelete godoc
//
//	@Summary		End one of my sessions
//	@Description	Deletes the session and its refresh secret. Unknown sessions and sessions
//	@Description	owned by someone else both answer 403.
//	@Tags			Sessions
//	@Param			id	path	string	true	"Session ID"
//	@Success		204
//	@Failure		401	{object}	authsdk.APIError	"unauthorized"
//	@Failure		403	{object}	authsdk.APIError	"access_denied"
//	@Security		BearerAuth
//	@Router			/v1/auth/sessions/{id} [delete]
func (h *SessionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.Sessions.EndSession(r.Context(), httpx.UserIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeRevocationError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
