package favorites

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation is the sentinel error for validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when an entry with the same key already exists in a collection.
	ErrConflict = errors.New("already in favorites")
)

// Kind identifies one of the two favorite collections.
type Kind string

const (
	KindMovies Kind = "movies"
	KindTracks Kind = "tracks"
)

// Valid reports whether k names a known collection.
func (k Kind) Valid() bool {
	return k == KindMovies || k == KindTracks
}

// Entry is a sealed interface for items stored in a user's favorite collections.
type Entry interface {
	Validate() error
	Key() string
	Kind() Kind
	isEntry()
}

// MovieEntry is the slim server-side shape of a favorited movie.
type MovieEntry struct {
	MovieID     string  `json:"movieId"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	ReleaseDate string  `json:"release_date"`
}

func (m MovieEntry) Key() string { return m.MovieID }
func (m MovieEntry) Kind() Kind  { return KindMovies }
func (m MovieEntry) isEntry()    {}

// Validate implements the Entry interface.
func (m MovieEntry) Validate() error {
	if strings.TrimSpace(m.MovieID) == "" {
		return fmt.Errorf("%w: movieId is required", ErrValidation)
	}
	return nil
}

// Album holds the album artwork kept with a favorited track.
type Album struct {
	CoverMedium string `json:"cover_medium"`
}

// TrackEntry is the slim server-side shape of a favorited track.
type TrackEntry struct {
	TrackID string `json:"trackId"`
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Album   Album  `json:"album"`
}

func (t TrackEntry) Key() string { return t.TrackID }
func (t TrackEntry) Kind() Kind  { return KindTracks }
func (t TrackEntry) isEntry()    {}

// Validate implements the Entry interface.
func (t TrackEntry) Validate() error {
	if strings.TrimSpace(t.TrackID) == "" {
		return fmt.Errorf("%w: trackId is required", ErrValidation)
	}
	return nil
}

// Collections is the pair of favorite lists owned by one user.
type Collections struct {
	Movies []MovieEntry `json:"movies"`
	Tracks []TrackEntry `json:"tracks"`
}

// ConflictError builds the duplicate error reported for an entry.
func ConflictError(e Entry) error {
	switch e.Kind() {
	case KindMovies:
		return fmt.Errorf("%w: movie %s", ErrConflict, e.Key())
	case KindTracks:
		return fmt.Errorf("%w: track %s", ErrConflict, e.Key())
	}
	return ErrConflict
}
