package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/sessiond/internal/auth/service"
	"github.com/aussiebroadwan/sessiond/pkg/authsdk"
	"github.com/aussiebroadwan/sessiond/pkg/httpx"
	"github.com/aussiebroadwan/sessiond/pkg/slogx"
)

// writeServiceError maps a service error onto the wire. Auth failures all
// collapse into the same 401; the precise reason is only logged.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	switch {
	case service.IsAuthFailure(err):
		log.Info("request unauthorized", "reason", err.Error())
		httpx.WriteUnauthorized(w)
	case errors.Is(err, service.ErrInvalidRequest):
		desc := strings.TrimPrefix(err.Error(), service.ErrInvalidRequest.Error()+": ")
		authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, desc).WriteError(w)
	case errors.Is(err, service.ErrAccountExists):
		authsdk.ErrAccountExists.WriteError(w)
	default:
		log.Error("request failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

// writeRevocationError is used where a missing and a foreign session must
// look the same to the caller.
func writeRevocationError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrNotFound) || errors.Is(err, service.ErrNotOwner) {
		authsdk.ErrAccessDenied.WriteError(w)
		return
	}
	writeServiceError(w, r, err)
}

func writeBadBody(w http.ResponseWriter) {
	authsdk.NewAPIError(http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest, "invalid JSON body").WriteError(w)
}
