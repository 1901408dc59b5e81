package app

import (
	"errors"

	"media-favorites/internal/client/backend"
	"media-favorites/internal/core/domain/auth"
	"media-favorites/internal/core/domain/catalog"
	"media-favorites/internal/core/domain/favorites"
)

// Describe turns an operation error into the message shown to the user.
func Describe(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSignedOut):
		return "Please log in first."
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, auth.ErrPasswordMismatch):
		return auth.ErrPasswordMismatch.Error()
	case errors.Is(err, auth.ErrUnauthorized):
		return "Your session has expired. Please log in again."
	case errors.Is(err, favorites.ErrConflict):
		return "Already in your favorites."
	case errors.Is(err, favorites.ErrValidation),
		errors.Is(err, auth.ErrValidation),
		errors.Is(err, auth.ErrDuplicate):
		return err.Error()
	case errors.Is(err, catalog.ErrNotFound):
		return "That item is not in the catalog."
	case errors.Is(err, catalog.ErrUnavailable):
		return "Could not reach the catalog. Check your connection and try again."
	case errors.Is(err, backend.ErrUnavailable):
		return "Could not reach the server. Check your connection and try again."
	}

	var apiErr *backend.Error
	if errors.As(err, &apiErr) {
		return "Server error: " + apiErr.Message
	}
	return "Something went wrong: " + err.Error()
}
