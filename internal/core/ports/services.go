package ports

import (
	"context"
	"errors"

	"media-favorites/internal/core/domain/auth"
	"media-favorites/internal/core/domain/favorites"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

// AuthService defines signup, login and token verification.
type AuthService interface {
	SignUp(ctx context.Context, username, email, password string) (auth.User, error)
	Login(ctx context.Context, email, password string) (token string, user auth.User, err error)
	Verify(ctx context.Context, token string) (userID string, err error)
}

// Profile is the caller's own user record together with their favorites.
type Profile struct {
	User      auth.User
	Favorites favorites.Collections
}

// UserService defines profile management for an authenticated user.
type UserService interface {
	Profile(ctx context.Context, userID string) (Profile, error)
	UpdateProfile(ctx context.Context, userID, username, email string) (auth.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

// FavoriteService defines the favorites application logic.
type FavoriteService interface {
	List(ctx context.Context, userID string) (favorites.Collections, error)
	AddMovie(ctx context.Context, userID string, entry favorites.MovieEntry) ([]favorites.MovieEntry, error)
	RemoveMovie(ctx context.Context, userID, movieID string) ([]favorites.MovieEntry, error)
	AddTrack(ctx context.Context, userID string, entry favorites.TrackEntry) ([]favorites.TrackEntry, error)
	RemoveTrack(ctx context.Context, userID, trackID string) ([]favorites.TrackEntry, error)
}

// Cache defines the caching operations.
// We keep it simple and tailored to our needs: one serialized snapshot per key.
type Cache interface {
	// Get returns the cached bytes or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores the bytes under key with the adapter's TTL.
	Set(ctx context.Context, key string, data []byte) error

	// Invalidate removes the key.
	Invalidate(ctx context.Context, key string) error
}

// EventPublisher emits favorites change events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event favorites.Event) error
}
