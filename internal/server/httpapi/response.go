package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dsmirnov/bookshelf/internal/common"
)

// errorResponse is the uniform error envelope. Error is a string for simple
// failures and a field→message map for validation failures.
type errorResponse struct {
	Error any `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP statuses. All authentication failures
// share one generic 401 body, so a client cannot tell a taken email from a
// wrong password.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrAlreadyRegistered),
		errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Unauthorized"})
	case errors.Is(err, common.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not Found"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
	}
}

// writeValidationError reports per-field validation messages with status 400.
func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: fields})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
