package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	domerrors "github.com/ngjiaxun/platter/internal/domain/errors"
)

// writeErr sends JSON { "error": message, "code": errCode } with a
// default code derived from the HTTP status.
func writeErr(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message, "code": defaultErrCode(code)})
}

func defaultErrCode(httpCode int) string {
	switch httpCode {
	case http.StatusBadRequest:
		return ErrCodeInvalidRequest
	case http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case http.StatusForbidden:
		return ErrCodeForbidden
	case http.StatusNotFound:
		return ErrCodeNotFound
	case http.StatusConflict:
		return ErrCodeConflict
	case http.StatusInternalServerError:
		return ErrCodeInternal
	default:
		return ErrCodeInternal
	}
}

// writeDomainErr maps the core's sentinel errors to HTTP statuses.
func writeDomainErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domerrors.ErrForbidden):
		writeErr(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domerrors.ErrEntityNotFound),
		errors.Is(err, domerrors.ErrInvitationNotFound),
		errors.Is(err, domerrors.ErrGroupNotFound),
		errors.Is(err, domerrors.ErrUserNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domerrors.ErrAlreadyAccepted):
		writeErr(w, http.StatusConflict, err.Error())
	case errors.Is(err, domerrors.ErrInvalidHierarchy),
		errors.Is(err, domerrors.ErrUnknownEntityType),
		errors.Is(err, domerrors.ErrUnknownRole):
		writeErr(w, http.StatusBadRequest, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
