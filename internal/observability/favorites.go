package observability

import (
	"context"
	"errors"

	"media-favorites/internal/core/domain/favorites"
	"media-favorites/internal/core/ports"
)

// InstrumentedFavoriteService counts favorites operations by outcome.
type InstrumentedFavoriteService struct {
	inner ports.FavoriteService
}

var _ ports.FavoriteService = (*InstrumentedFavoriteService)(nil)

func NewInstrumentedFavoriteService(inner ports.FavoriteService) *InstrumentedFavoriteService {
	return &InstrumentedFavoriteService{inner: inner}
}

func (s *InstrumentedFavoriteService) List(ctx context.Context, userID string) (favorites.Collections, error) {
	cols, err := s.inner.List(ctx, userID)
	record("all", "list", err)
	return cols, err
}

func (s *InstrumentedFavoriteService) AddMovie(ctx context.Context, userID string, entry favorites.MovieEntry) ([]favorites.MovieEntry, error) {
	movies, err := s.inner.AddMovie(ctx, userID, entry)
	record(favorites.KindMovies, "add", err)
	return movies, err
}

func (s *InstrumentedFavoriteService) RemoveMovie(ctx context.Context, userID, movieID string) ([]favorites.MovieEntry, error) {
	movies, err := s.inner.RemoveMovie(ctx, userID, movieID)
	record(favorites.KindMovies, "remove", err)
	return movies, err
}

func (s *InstrumentedFavoriteService) AddTrack(ctx context.Context, userID string, entry favorites.TrackEntry) ([]favorites.TrackEntry, error) {
	tracks, err := s.inner.AddTrack(ctx, userID, entry)
	record(favorites.KindTracks, "add", err)
	return tracks, err
}

func (s *InstrumentedFavoriteService) RemoveTrack(ctx context.Context, userID, trackID string) ([]favorites.TrackEntry, error) {
	tracks, err := s.inner.RemoveTrack(ctx, userID, trackID)
	record(favorites.KindTracks, "remove", err)
	return tracks, err
}

func record[K ~string](kind K, op string, err error) {
	favoriteOperations.WithLabelValues(string(kind), op, outcome(err)).Inc()
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, favorites.ErrConflict):
		return "conflict"
	case errors.Is(err, favorites.ErrValidation):
		return "invalid"
	}
	return "error"
}
