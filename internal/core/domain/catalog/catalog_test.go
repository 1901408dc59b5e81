package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-favorites/internal/core/domain/favorites"
)

func TestMovie_Entry(t *testing.T) {
	movie := Movie{
		ID:          27205,
		Title:       "Inception",
		PosterPath:  "https://image.tmdb.org/t/p/w500/inception.jpg",
		ReleaseDate: "2010-07-15",
		VoteAverage: 8.4,
		Overview:    "A thief who steals corporate secrets...",
		TrailerKey:  "YoHD9XEInc0",
	}

	entry := movie.Entry()
	assert.Equal(t, favorites.MovieEntry{
		MovieID:     "27205",
		Title:       "Inception",
		PosterPath:  "https://image.tmdb.org/t/p/w500/inception.jpg",
		VoteAverage: 8.4,
		ReleaseDate: "2010-07-15",
	}, entry)
	assert.NoError(t, entry.Validate())
}

func TestMovieFromEntry(t *testing.T) {
	t.Run("round trip keeps identity", func(t *testing.T) {
		movie := Movie{ID: 27205, Title: "Inception", VoteAverage: 8.4}
		back, err := MovieFromEntry(movie.Entry())
		require.NoError(t, err)
		assert.Equal(t, movie.FavoriteKey(), back.FavoriteKey())
		assert.Equal(t, movie.Title, back.Title)
	})

	t.Run("non numeric id", func(t *testing.T) {
		_, err := MovieFromEntry(favorites.MovieEntry{MovieID: "tt1375666"})
		assert.True(t, errors.Is(err, favorites.ErrValidation))
	})
}

func TestTrack_Entry(t *testing.T) {
	track := Track{
		ID:     3135556,
		Title:  "Harder, Better, Faster, Stronger",
		Artist: Artist{ID: 27, Name: "Daft Punk"},
		Album:  TrackAlbum{ID: 302127, Title: "Discovery", CoverMedium: "https://cdn/cover.jpg"},
	}

	entry := track.Entry()
	assert.Equal(t, "3135556", entry.TrackID)
	assert.Equal(t, "Daft Punk", entry.Artist)
	assert.Equal(t, "https://cdn/cover.jpg", entry.Album.CoverMedium)

	back, err := TrackFromEntry(entry)
	require.NoError(t, err)
	assert.Equal(t, track.FavoriteKey(), back.FavoriteKey())
	assert.Equal(t, "Daft Punk", back.Artist.Name)
}
