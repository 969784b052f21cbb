package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"millbooks/internal/core"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeDomainError maps the service error kinds onto HTTP statuses. Store
// failures are logged with the request id and hide their detail; everything
// the caller can fix passes its message through.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	if !core.IsClientError(err) {
		log.Printf("[%s] internal error: %v", requestIDFromContext(r.Context()), err)
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}
	switch {
	case errors.Is(err, core.ErrValidation):
		writeError(w, r, err.Error(), "VALIDATION_FAILED", http.StatusBadRequest)
	case errors.Is(err, core.ErrNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrConflict):
		writeError(w, r, err.Error(), "CONFLICT", http.StatusConflict)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeCreated writes a JSON response with status 201.
func writeCreated(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(v)
}
