package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"rental-engine-backend/internal/domain"
	"rental-engine-backend/internal/logger"
)

type errorResponse struct {
	Error     string                         `json:"error"`
	Field     string                         `json:"field,omitempty"`
	Shortfall *domain.InsufficientStockError `json:"shortfall,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps domain errors onto HTTP statuses. Anything unrecognized is
// logged and reported as a 500 without leaking its message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		notFound   *domain.NotFoundError
		shortfall  *domain.InsufficientStockError
		validation *domain.ValidationError
		invalid    *domain.InvalidStateError
	)
	switch {
	case errors.As(err, &shortfall):
		writeJSON(w, http.StatusConflict, errorResponse{Error: shortfall.Error(), Shortfall: shortfall})
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: validation.Error(), Field: validation.Field})
	case errors.As(err, &invalid):
		writeJSONError(w, http.StatusConflict, invalid.Error())
	case errors.As(err, &notFound):
		writeJSONError(w, http.StatusNotFound, notFound.Error())
	default:
		logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
	}
}
