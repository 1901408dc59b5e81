package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"media-favorites/internal/core/domain/favorites"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository implements ports.FavoriteRepository using PostgreSQL.
// Each favorite is its own row keyed by (user_id, kind, item_id), so concurrent
// adds and removes of different items never overwrite each other.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new postgres repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Add inserts the entry; an existing row for the same key is left alone and reported as a conflict.
func (r *Repository) Add(ctx context.Context, userID string, entry favorites.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}

	query := `
		INSERT INTO favorites (user_id, kind, item_id, entry_data)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, kind, item_id) DO NOTHING
	`
	cmdTag, err := r.db.Exec(ctx, query, userID, string(entry.Kind()), entry.Key(), data)
	if err != nil {
		return fmt.Errorf("failed to insert favorite: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return favorites.ConflictError(entry)
	}
	return nil
}

// Remove deletes one entry. Zero affected rows is success with removed=false.
func (r *Repository) Remove(ctx context.Context, userID string, kind favorites.Kind, key string) (bool, error) {
	query := `DELETE FROM favorites WHERE user_id = $1 AND kind = $2 AND item_id = $3`
	cmdTag, err := r.db.Exec(ctx, query, userID, string(kind), key)
	if err != nil {
		return false, fmt.Errorf("failed to delete favorite: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// FindByUser returns an iterator over the user's entries of one kind, oldest first.
func (r *Repository) FindByUser(ctx context.Context, userID string, kind favorites.Kind) (iter.Seq2[favorites.Entry, error], error) {
	query := `
		SELECT entry_data
		FROM favorites
		WHERE user_id = $1 AND kind = $2
		ORDER BY seq ASC
	`
	rows, err := r.db.Query(ctx, query, userID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}

	return func(yield func(favorites.Entry, error) bool) {
		defer rows.Close()
		for rows.Next() {
			var data []byte
			if err := rows.Scan(&data); err != nil {
				yield(nil, fmt.Errorf("scan error: %w", err))
				return
			}
			entry, err := unmarshalEntry(kind, data)
			if err != nil {
				yield(nil, fmt.Errorf("unmarshal error: %w", err))
				return
			}
			if !yield(entry, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}, nil
}

// unmarshalEntry is a helper to deserialize JSON into the concrete type of the collection.
func unmarshalEntry(kind favorites.Kind, data []byte) (favorites.Entry, error) {
	switch kind {
	case favorites.KindMovies:
		var m favorites.MovieEntry
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case favorites.KindTracks:
		var t favorites.TrackEntry
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, fmt.Errorf("unknown favorites kind: %s", kind)
}
