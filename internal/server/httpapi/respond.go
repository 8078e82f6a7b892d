package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/recipebook/internal/common"
)

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, map[string]string{"error": message})
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// statusFor maps service errors to an HTTP status and the message shown
// to the client. Internal details never leave the server.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrDuplicateIdentity):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrStaleToken),
		errors.Is(err, common.ErrUnknownIdentity),
		errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrStorageDisabled):
		return http.StatusServiceUnavailable, "image storage is not configured"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

// rejectReason names a token rejection for the logs.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, common.ErrStaleToken):
		return "stale_token"
	case errors.Is(err, common.ErrUnknownIdentity):
		return "unknown_identity"
	case errors.Is(err, common.ErrorUnauthorized):
		return "missing_token"
	default:
		return "error"
	}
}
