package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/templui/sfss/internal/expiry"
	"github.com/templui/sfss/internal/repository"
	"github.com/templui/sfss/internal/service"
	"github.com/templui/sfss/internal/validation"
)

const maxBodyBytes = 1 << 20

type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(response{Success: status < 400, Data: data, Message: message})
	if err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, nil, message)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// handleServiceError maps service errors to HTTP status codes.
// Download denials all look the same from outside.
func handleServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrDenied):
		writeError(w, http.StatusNotFound, service.ErrDenied.Error())
	case errors.Is(err, validation.ErrInvalid),
		errors.Is(err, expiry.ErrInvalidDuration),
		errors.Is(err, service.ErrInvalidStorageKey):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrShareNotFound),
		errors.Is(err, service.ErrForbidden):
		// Someone else's share looks the same as a missing one
		writeError(w, http.StatusNotFound, "share not found")
	case errors.Is(err, service.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "share is not awaiting upload")
	case errors.Is(err, service.ErrStorageUnavailable):
		log.Error("storage unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "storage temporarily unavailable")
	default:
		log.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// NotFound is the JSON fallback for unmatched routes
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "route not found")
}
