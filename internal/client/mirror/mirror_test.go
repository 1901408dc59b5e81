package mirror

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"

	"media-favorites/internal/client/store"
	"media-favorites/internal/core/domain/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStorage is an in-memory Storage whose writes can be made to fail.
type memStorage struct {
	mu     sync.Mutex
	data   map[string][]byte
	failOn error
	writes int
}

func newMemStorage() *memStorage {
	return &memStorage{data: map[string][]byte{}}
}

func (s *memStorage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return v, nil
}

func (s *memStorage) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != nil {
		return s.failOn
	}
	s.writes++
	s.data[key] = value
	return nil
}

var (
	inception = catalog.Movie{
		ID: 27205, Title: "Inception", PosterPath: "https://img/inc.jpg",
		ReleaseDate: "2010-07-15", VoteAverage: 8.4, Overview: "dreams",
		GenreIDs: []int{28, 878}, TrailerKey: "YoHD9XEInc0",
	}
	darkKnight   = catalog.Movie{ID: 155, Title: "The Dark Knight", VoteAverage: 8.5}
	interstellar = catalog.Movie{ID: 157336, Title: "Interstellar"}
)

func TestMirror_ToggleTwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	s := newMemStorage()
	m := NewMovies(s)
	require.NoError(t, m.Load(ctx))

	_, err := m.Toggle(ctx, darkKnight)
	require.NoError(t, err)
	before := m.Items()

	added, err := m.Toggle(ctx, inception)
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, m.Contains("27205"))

	added, err = m.Toggle(ctx, inception)
	require.NoError(t, err)
	assert.False(t, added)
	assert.False(t, m.Contains("27205"))

	assert.Equal(t, before, m.Items())
}

func TestMirror_ToggleParity(t *testing.T) {
	ctx := context.Background()
	pool := []catalog.Movie{inception, darkKnight, interstellar, {ID: 1}, {ID: 2}}
	rng := rand.New(rand.NewPCG(42, 7))

	for round := 0; round < 50; round++ {
		m := NewMovies(newMemStorage())
		counts := map[string]int{}

		for i := 0; i < 1+rng.IntN(40); i++ {
			mv := pool[rng.IntN(len(pool))]
			_, err := m.Toggle(ctx, mv)
			require.NoError(t, err)
			counts[mv.FavoriteKey()]++
		}

		for _, mv := range pool {
			id := mv.FavoriteKey()
			assert.Equal(t, counts[id]%2 == 1, m.Contains(id), "round %d id %s", round, id)
		}
		var odd int
		for _, c := range counts {
			odd += c % 2
		}
		assert.Equal(t, odd, m.Len())
	}
}

func TestMirror_LoadReturnsRecordsAsAdded(t *testing.T) {
	ctx := context.Background()
	s := newMemStorage()

	m := NewMovies(s)
	require.NoError(t, m.Load(ctx))
	for _, mv := range []catalog.Movie{inception, darkKnight, interstellar} {
		_, err := m.Toggle(ctx, mv)
		require.NoError(t, err)
	}
	removed, err := m.Remove(ctx, darkKnight.FavoriteKey())
	require.NoError(t, err)
	assert.True(t, removed)

	fresh := NewMovies(s)
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, []catalog.Movie{inception, interstellar}, fresh.Items())
	assert.True(t, fresh.Contains("157336"))
	assert.False(t, fresh.Contains("155"))
}

func TestMirror_FailedWriteLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	s := newMemStorage()
	m := NewMovies(s)
	_, err := m.Toggle(ctx, inception)
	require.NoError(t, err)

	boom := errors.New("disk full")
	s.failOn = boom

	tests := []struct {
		name string
		op   func() error
	}{
		{"toggle add", func() error { _, err := m.Toggle(ctx, darkKnight); return err }},
		{"toggle remove", func() error { _, err := m.Toggle(ctx, inception); return err }},
		{"remove", func() error { _, err := m.Remove(ctx, "27205"); return err }},
		{"replace", func() error { return m.Replace(ctx, nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, []catalog.Movie{inception}, m.Items())
			assert.True(t, m.Contains("27205"))
			assert.False(t, m.Contains("155"))
		})
	}
}

func TestMirror_RemoveAbsentDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	s := newMemStorage()
	m := NewTracks(s)

	removed, err := m.Remove(ctx, "3135556")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Zero(t, s.writes)
}

func TestMirror_ReplaceDropsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := newMemStorage()
	m := NewMovies(s)

	require.NoError(t, m.Replace(ctx, []catalog.Movie{inception, darkKnight, {ID: 27205, Title: "dup"}}))
	assert.Equal(t, []catalog.Movie{inception, darkKnight}, m.Items())
	assert.Equal(t, 1, s.writes)
}

func TestMirror_LoadErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("corrupt payload", func(t *testing.T) {
		s := newMemStorage()
		s.data[TracksKey] = []byte(`{not json`)
		m := NewTracks(s)
		assert.Error(t, m.Load(ctx))
	})

	t.Run("empty after replace with nil persists an empty list", func(t *testing.T) {
		s := newMemStorage()
		m := NewTracks(s)
		require.NoError(t, m.Replace(ctx, nil))
		assert.Equal(t, []byte(`[]`), s.data[TracksKey])
	})
}

func TestMirror_ConcurrentTogglesAreSerialized(t *testing.T) {
	ctx := context.Background()
	s := newMemStorage()
	m := NewTracks(s)

	var wg sync.WaitGroup
	for i := int64(1); i <= 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Toggle(ctx, catalog.Track{ID: i})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 40, m.Len())

	fresh := NewTracks(s)
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, 40, fresh.Len())
}

func TestMirror_WithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	harder := catalog.Track{
		ID: 3135556, Title: "Harder, Better, Faster, Stronger", Duration: 224,
		Artist: catalog.Artist{ID: 27, Name: "Daft Punk"},
		Album:  catalog.TrackAlbum{ID: 302127, Title: "Discovery", CoverMedium: "c.jpg"},
	}
	m := NewTracks(s)
	require.NoError(t, m.Load(ctx))
	_, err = m.Toggle(ctx, harder)
	require.NoError(t, err)

	fresh := NewTracks(s)
	require.NoError(t, fresh.Load(ctx))
	assert.Equal(t, []catalog.Track{harder}, fresh.Items())
}
