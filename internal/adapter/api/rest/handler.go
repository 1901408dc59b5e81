package rest

import (
	"log/slog"
	"net/http"

	"media-favorites/internal/core/domain/auth"
	"media-favorites/internal/core/ports"
)

type Handler struct {
	service ports.FavoriteService
	logger  *slog.Logger
}

func NewHandler(service ports.FavoriteService, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// List handles GET /api/favorites
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		respondError(w, r, h.logger, auth.ErrUnauthorized)
		return
	}

	cols, err := h.service.List(r.Context(), userID)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, cols)
}

// AddMovie handles POST /api/favorites/movies
func (h *Handler) AddMovie(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		respondError(w, r, h.logger, auth.ErrUnauthorized)
		return
	}

	var req addMovieRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	movies, err := h.service.AddMovie(r.Context(), userID, req.entry())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, movies)
}

// RemoveMovie handles DELETE /api/favorites/movies/{movieId}
func (h *Handler) RemoveMovie(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		respondError(w, r, h.logger, auth.ErrUnauthorized)
		return
	}

	movies, err := h.service.RemoveMovie(r.Context(), userID, r.PathValue("movieId"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, movies)
}

// AddTrack handles POST /api/favorites/tracks
func (h *Handler) AddTrack(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		respondError(w, r, h.logger, auth.ErrUnauthorized)
		return
	}

	var req addTrackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	tracks, err := h.service.AddTrack(r.Context(), userID, req.entry())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, tracks)
}

// RemoveTrack handles DELETE /api/favorites/tracks/{trackId}
func (h *Handler) RemoveTrack(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFrom(r.Context())
	if !ok {
		respondError(w, r, h.logger, auth.ErrUnauthorized)
		return
	}

	tracks, err := h.service.RemoveTrack(r.Context(), userID, r.PathValue("trackId"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, tracks)
}
