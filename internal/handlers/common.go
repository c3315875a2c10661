package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/solacejournal/solace-backend/internal/services"
)

// ErrorResponse is the body for every non-2xx reply.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Success: false, Message: message})
}

// writeServiceError maps the service layer's sentinel errors onto HTTP
// statuses. Existence is checked before permission in the service layer, so
// a 404 here never leaks whether the caller was allowed to see the resource.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "You do not have permission to do that")
	case errors.Is(err, services.ErrInviteUsed):
		writeError(w, http.StatusConflict, "This invite has already been used")
	case errors.Is(err, services.ErrInviteExpired):
		writeError(w, http.StatusGone, "This invite has expired")
	case errors.Is(err, services.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "Service temporarily unavailable")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
