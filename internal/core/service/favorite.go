package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"media-favorites/internal/core/domain/favorites"
	"media-favorites/internal/core/ports"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("internal/core/service")

const cacheKeyPrefix = "favorites:user:"

type Service struct {
	repo   ports.FavoriteRepository
	cache  ports.Cache
	events ports.EventPublisher
	logger *slog.Logger
}

func NewService(repo ports.FavoriteRepository, cache ports.Cache, events ports.EventPublisher, logger *slog.Logger) *Service {
	s := &Service{
		repo:   repo,
		cache:  cache,
		events: events,
		logger: logger,
	}

	return s
}

func cacheKey(userID string) string {
	return cacheKeyPrefix + userID
}

// List returns both collections of the caller, served from the snapshot cache when possible.
func (s *Service) List(ctx context.Context, userID string) (favorites.Collections, error) {
	ctx, span := tracer.Start(ctx, "Service.List", trace.WithAttributes(
		attribute.String("user.id", userID),
	))
	defer span.End()

	data, err := s.cache.Get(ctx, cacheKey(userID))
	switch {
	case err == nil:
		var cols favorites.Collections
		if err := json.Unmarshal(data, &cols); err == nil {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cols, nil
		}
		s.logger.WarnContext(ctx, "discarding unreadable favorites snapshot", "user_id", userID)
	case !errors.Is(err, ports.ErrCacheMiss):
		s.logger.WarnContext(ctx, "failed to read favorites snapshot", "user_id", userID, "error", err)
	}

	movies, err := s.movies(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return favorites.Collections{}, err
	}
	tracks, err := s.tracks(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return favorites.Collections{}, err
	}

	cols := favorites.Collections{Movies: movies, Tracks: tracks}
	s.updateCache(ctx, userID, cols)
	return cols, nil
}

func (s *Service) AddMovie(ctx context.Context, userID string, entry favorites.MovieEntry) ([]favorites.MovieEntry, error) {
	entry.MovieID = favorites.NormalizeKey(entry.MovieID)
	if err := s.add(ctx, userID, entry); err != nil {
		return nil, err
	}
	return s.movies(ctx, userID)
}

func (s *Service) RemoveMovie(ctx context.Context, userID, movieID string) ([]favorites.MovieEntry, error) {
	if err := s.remove(ctx, userID, favorites.KindMovies, favorites.NormalizeKey(movieID)); err != nil {
		return nil, err
	}
	return s.movies(ctx, userID)
}

func (s *Service) AddTrack(ctx context.Context, userID string, entry favorites.TrackEntry) ([]favorites.TrackEntry, error) {
	entry.TrackID = favorites.NormalizeKey(entry.TrackID)
	if err := s.add(ctx, userID, entry); err != nil {
		return nil, err
	}
	return s.tracks(ctx, userID)
}

func (s *Service) RemoveTrack(ctx context.Context, userID, trackID string) ([]favorites.TrackEntry, error) {
	if err := s.remove(ctx, userID, favorites.KindTracks, favorites.NormalizeKey(trackID)); err != nil {
		return nil, err
	}
	return s.tracks(ctx, userID)
}

func (s *Service) add(ctx context.Context, userID string, entry favorites.Entry) error {
	ctx, span := tracer.Start(ctx, "Service.Add", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("favorite.kind", string(entry.Kind())),
		attribute.String("favorite.id", entry.Key()),
	))
	defer span.End()

	s.logger.InfoContext(ctx, "adding favorite", "user_id", userID, "kind", entry.Kind(), "id", entry.Key())

	// 1. Validate
	if err := entry.Validate(); err != nil {
		span.RecordError(err)
		return err
	}

	// 2. Atomic set-add; a duplicate surfaces as ErrConflict from the store
	if err := s.repo.Add(ctx, userID, entry); err != nil {
		span.RecordError(err)
		if errors.Is(err, favorites.ErrConflict) {
			return err
		}
		span.SetStatus(codes.Error, "store failure")
		return fmt.Errorf("failed to save favorite: %w", err)
	}

	s.afterWrite(ctx, favorites.NewEvent(favorites.EventAdded, userID, entry.Kind(), entry.Key()))
	return nil
}

func (s *Service) remove(ctx context.Context, userID string, kind favorites.Kind, key string) error {
	ctx, span := tracer.Start(ctx, "Service.Remove", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.String("favorite.kind", string(kind)),
		attribute.String("favorite.id", key),
	))
	defer span.End()

	s.logger.InfoContext(ctx, "removing favorite", "user_id", userID, "kind", kind, "id", key)

	removed, err := s.repo.Remove(ctx, userID, kind, key)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "store failure")
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	span.SetAttributes(attribute.Bool("favorite.removed", removed))
	if !removed {
		return nil
	}

	s.afterWrite(ctx, favorites.NewEvent(favorites.EventRemoved, userID, kind, key))
	return nil
}

// afterWrite drops the caller's snapshot and announces the change.
// Neither step can fail the request: the store already holds the new state.
func (s *Service) afterWrite(ctx context.Context, event favorites.Event) {
	if err := s.cache.Invalidate(ctx, cacheKey(event.UserID)); err != nil {
		s.logger.ErrorContext(ctx, "failed to invalidate favorites snapshot", "user_id", event.UserID, "error", err)
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish favorite event", "type", event.Type, "user_id", event.UserID, "error", err)
	}
}

func (s *Service) updateCache(ctx context.Context, userID string, cols favorites.Collections) {
	data, err := json.Marshal(cols)
	if err != nil {
		s.logger.Error("failed to marshal favorites for cache", "error", err)
		return
	}
	if err := s.cache.Set(ctx, cacheKey(userID), data); err != nil {
		s.logger.ErrorContext(ctx, "failed to set favorites snapshot", "user_id", userID, "error", err)
	}
}

// Helpers

func (s *Service) movies(ctx context.Context, userID string) ([]favorites.MovieEntry, error) {
	seq, err := s.repo.FindByUser(ctx, userID, favorites.KindMovies)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorite movies: %w", err)
	}

	movies := make([]favorites.MovieEntry, 0)
	for entry, err := range seq {
		if err != nil {
			return nil, fmt.Errorf("failed to load favorite movies: %w", err)
		}
		m, ok := entry.(favorites.MovieEntry)
		if !ok {
			return nil, fmt.Errorf("unexpected entry type %T in movies", entry)
		}
		movies = append(movies, m)
	}
	return movies, nil
}

func (s *Service) tracks(ctx context.Context, userID string) ([]favorites.TrackEntry, error) {
	seq, err := s.repo.FindByUser(ctx, userID, favorites.KindTracks)
	if err != nil {
		return nil, fmt.Errorf("failed to load favorite tracks: %w", err)
	}

	tracks := make([]favorites.TrackEntry, 0)
	for entry, err := range seq {
		if err != nil {
			return nil, fmt.Errorf("failed to load favorite tracks: %w", err)
		}
		t, ok := entry.(favorites.TrackEntry)
		if !ok {
			return nil, fmt.Errorf("unexpected entry type %T in tracks", entry)
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}
