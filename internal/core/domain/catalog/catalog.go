package catalog

import (
	"errors"

	"media-favorites/internal/core/domain/favorites"
)

var (
	// ErrUnavailable wraps transport failures and error responses from a catalog provider.
	ErrUnavailable = errors.New("catalog provider unavailable")

	// ErrNotFound is returned when the provider has no record for the requested id.
	ErrNotFound = errors.New("not found in catalog")
)

// Item is a full catalog record that can be mirrored as a favorite.
type Item interface {
	FavoriteKey() string
}

// Movie is a TMDB movie as shown in browse lists.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	PosterPath  string  `json:"poster_path"`
	ReleaseDate string  `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
	Overview    string  `json:"overview,omitempty"`
	GenreIDs    []int   `json:"genre_ids,omitempty"`
	TrailerKey  string  `json:"trailer_key,omitempty"`
}

func (m Movie) FavoriteKey() string { return favorites.MovieKey(m.ID) }

// Entry converts the record into the slim shape stored by the favorites service.
func (m Movie) Entry() favorites.MovieEntry {
	return favorites.MovieEntry{
		MovieID:     m.FavoriteKey(),
		Title:       m.Title,
		PosterPath:  m.PosterPath,
		VoteAverage: m.VoteAverage,
		ReleaseDate: m.ReleaseDate,
	}
}

// MovieFromEntry rebuilds a browse record from a stored favorite.
// Fields the favorites service does not keep are left empty.
func MovieFromEntry(e favorites.MovieEntry) (Movie, error) {
	id, err := favorites.ParseKey(e.MovieID)
	if err != nil {
		return Movie{}, err
	}
	return Movie{
		ID:          id,
		Title:       e.Title,
		PosterPath:  e.PosterPath,
		ReleaseDate: e.ReleaseDate,
		VoteAverage: e.VoteAverage,
	}, nil
}

// Genre is a named TMDB genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CastMember is a billed performer.
type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
}

// Video is a trailer, teaser or clip attached to a movie.
type Video struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Site string `json:"site"`
	Type string `json:"type"`
}

// MovieDetail is the detail-screen view of a movie.
type MovieDetail struct {
	Movie
	Runtime int          `json:"runtime"`
	Tagline string       `json:"tagline,omitempty"`
	Status  string       `json:"status,omitempty"`
	Genres  []Genre      `json:"genres,omitempty"`
	Cast    []CastMember `json:"cast,omitempty"`
	Videos  []Video      `json:"videos,omitempty"`
}

// Artist is the performer of a track.
type Artist struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	PictureMedium string `json:"picture_medium,omitempty"`
}

// TrackAlbum is the album a track belongs to.
type TrackAlbum struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	CoverMedium string `json:"cover_medium"`
}

// Track is a Deezer track as shown in browse lists.
type Track struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	TitleShort     string     `json:"title_short,omitempty"`
	Duration       int        `json:"duration"`
	Preview        string     `json:"preview,omitempty"`
	Link           string     `json:"link,omitempty"`
	Rank           int        `json:"rank,omitempty"`
	ExplicitLyrics bool       `json:"explicit_lyrics,omitempty"`
	Artist         Artist     `json:"artist"`
	Album          TrackAlbum `json:"album"`
}

func (t Track) FavoriteKey() string { return favorites.TrackKey(t.ID) }

// Entry converts the record into the slim shape stored by the favorites service.
func (t Track) Entry() favorites.TrackEntry {
	return favorites.TrackEntry{
		TrackID: t.FavoriteKey(),
		Title:   t.Title,
		Artist:  t.Artist.Name,
		Album:   favorites.Album{CoverMedium: t.Album.CoverMedium},
	}
}

// TrackFromEntry rebuilds a browse record from a stored favorite.
func TrackFromEntry(e favorites.TrackEntry) (Track, error) {
	id, err := favorites.ParseKey(e.TrackID)
	if err != nil {
		return Track{}, err
	}
	return Track{
		ID:     id,
		Title:  e.Title,
		Artist: Artist{Name: e.Artist},
		Album:  TrackAlbum{CoverMedium: e.Album.CoverMedium},
	}, nil
}
