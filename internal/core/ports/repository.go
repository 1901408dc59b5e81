package ports

import (
	"context"
	"iter"

	"media-favorites/internal/core/domain/auth"
	"media-favorites/internal/core/domain/favorites"
)

// UserRepository defines storage for users.
type UserRepository interface {
	Save(ctx context.Context, user auth.User) error
	FindByID(ctx context.Context, id string) (auth.User, error)
	FindByEmail(ctx context.Context, email string) (auth.User, error)
	FindByUsername(ctx context.Context, username string) (auth.User, error)

	// UpdateProfile changes username and email and returns the stored record.
	UpdateProfile(ctx context.Context, id, username, email string) (auth.User, error)

	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// FavoriteRepository stores the per-user favorite collections.
// Add and Remove are single-element operations; they never rewrite a whole collection.
type FavoriteRepository interface {
	// Add inserts the entry unless one with the same kind and key exists,
	// in which case it returns an error wrapping favorites.ErrConflict.
	Add(ctx context.Context, userID string, entry favorites.Entry) error

	// Remove deletes the entry if present and reports whether a row was deleted.
	// Removing a missing key is not an error.
	Remove(ctx context.Context, userID string, kind favorites.Kind, key string) (bool, error)

	// FindByUser streams a user's entries of one kind in insertion order.
	FindByUser(ctx context.Context, userID string, kind favorites.Kind) (iter.Seq2[favorites.Entry, error], error)
}
