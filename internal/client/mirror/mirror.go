// Package mirror keeps the client's locally persisted copy of favorite catalog records.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"media-favorites/internal/client/store"
	"media-favorites/internal/core/domain/catalog"
)

// Storage keys of the two mirrors.
const (
	MoviesKey = "favoriteMovies"
	TracksKey = "favoriteTracks"
)

// Storage is the persistence the mirror writes through to.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Mirror holds one kind of favorite: the full records in insertion order plus an
// id set for membership checks. Every change is written through to storage and
// only becomes visible once the write succeeded.
type Mirror[T catalog.Item] struct {
	mu    sync.Mutex
	key   string
	store Storage
	items []T
	ids   map[string]struct{}
}

func New[T catalog.Item](s Storage, key string) *Mirror[T] {
	return &Mirror[T]{key: key, store: s, ids: map[string]struct{}{}}
}

func NewMovies(s Storage) *Mirror[catalog.Movie] { return New[catalog.Movie](s, MoviesKey) }
func NewTracks(s Storage) *Mirror[catalog.Track] { return New[catalog.Track](s, TracksKey) }

// Load replaces the in-memory state with what is persisted. A missing key is an empty mirror.
func (m *Mirror[T]) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.store.Get(ctx, m.key)
	if errors.Is(err, store.ErrNotFound) {
		m.items, m.ids = nil, map[string]struct{}{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", m.key, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("failed to decode %s: %w", m.key, err)
	}
	m.items, m.ids = dedupe(items)
	return nil
}

// Toggle removes item if it is present and appends it otherwise.
// It reports whether the item is a favorite afterwards.
func (m *Mirror[T]) Toggle(ctx context.Context, item T) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := item.FavoriteKey()
	if _, ok := m.ids[id]; ok {
		return false, m.commit(ctx, without(m.items, id))
	}
	next := append(slices.Clip(m.items), item)
	return true, m.commit(ctx, next)
}

// Remove drops the item with the given id. It reports whether anything was removed.
func (m *Mirror[T]) Remove(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ids[id]; !ok {
		return false, nil
	}
	return true, m.commit(ctx, without(m.items, id))
}

// Replace swaps the whole list in one write. Duplicate ids keep their first occurrence.
func (m *Mirror[T]) Replace(ctx context.Context, items []T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	deduped, _ := dedupe(items)
	return m.commit(ctx, deduped)
}

func (m *Mirror[T]) Contains(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ids[id]
	return ok
}

// Items returns a copy of the records in insertion order.
func (m *Mirror[T]) Items() []T {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.items)
}

func (m *Mirror[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// commit persists next and only then swaps it in. Callers hold mu.
func (m *Mirror[T]) commit(ctx context.Context, next []T) error {
	if next == nil {
		next = []T{}
	}
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", m.key, err)
	}
	if err := m.store.Set(ctx, m.key, data); err != nil {
		return fmt.Errorf("failed to save %s: %w", m.key, err)
	}
	m.items, m.ids = dedupe(next)
	return nil
}

func without[T catalog.Item](items []T, id string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if it.FavoriteKey() != id {
			out = append(out, it)
		}
	}
	return out
}

func dedupe[T catalog.Item](items []T) ([]T, map[string]struct{}) {
	ids := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		id := it.FavoriteKey()
		if _, seen := ids[id]; seen {
			continue
		}
		ids[id] = struct{}{}
		out = append(out, it)
	}
	return out, ids
}
