package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"media-favorites/internal/core/domain/auth"
	"media-favorites/internal/core/domain/favorites"
)

// Error codes carried in every error body.
const (
	codeValidation   = "validation"
	codeConflict     = "conflict"
	codeUnauthorized = "unauthorized"
	codeNotFound     = "not_found"
	codeInternal     = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// classify maps a domain error onto an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, errInvalidBody),
		errors.Is(err, favorites.ErrValidation),
		errors.Is(err, auth.ErrValidation):
		return http.StatusBadRequest, codeValidation
	case errors.Is(err, favorites.ErrConflict),
		errors.Is(err, auth.ErrDuplicate):
		return http.StatusBadRequest, codeConflict
	case errors.Is(err, auth.ErrUnauthorized),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrPasswordMismatch):
		return http.StatusUnauthorized, codeUnauthorized
	case errors.Is(err, auth.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	}
	return http.StatusInternalServerError, codeInternal
}

func respondJSON(w http.ResponseWriter, logger *slog.Logger, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to write response", "error", err)
	}
}

// respondError writes the error body. Internal failures are logged and replaced
// with a generic message so store details never reach the caller.
func respondError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code, kind := classify(err)
	msg := err.Error()
	switch {
	case code == http.StatusInternalServerError:
		logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal server error"
	case code == http.StatusUnauthorized && !errors.Is(err, auth.ErrPasswordMismatch):
		if errors.Is(err, auth.ErrInvalidCredentials) {
			msg = auth.ErrInvalidCredentials.Error()
		} else {
			msg = auth.ErrUnauthorized.Error()
		}
	}
	respondJSON(w, logger, code, errorResponse{Error: msg, Code: kind})
}
