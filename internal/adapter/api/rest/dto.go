package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"media-favorites/internal/core/domain/auth"
	"media-favorites/internal/core/domain/favorites"
	"media-favorites/internal/core/ports"
)

const maxBodyBytes = 1 << 20

var errInvalidBody = errors.New("invalid request body")

// flexibleID accepts an item id sent either as a JSON string or a JSON integer.
// Catalog providers hand out numbers while stored entries key by string.
// Fractions and exponents are rejected so 27205 and 27205.0 cannot become two keys.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number")
	}
	id, err := n.Int64()
	if err != nil {
		return fmt.Errorf("id must be an integer, got %s", n)
	}
	*f = flexibleID(strconv.FormatInt(id, 10))
	return nil
}

type signUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string    `json:"token"`
	User  auth.User `json:"user"`
}

type updateProfileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type profileResponse struct {
	userResponse
	Favorites favorites.Collections `json:"favorites"`
}

func newUserResponse(u auth.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

func newProfileResponse(p ports.Profile) profileResponse {
	cols := p.Favorites
	if cols.Movies == nil {
		cols.Movies = []favorites.MovieEntry{}
	}
	if cols.Tracks == nil {
		cols.Tracks = []favorites.TrackEntry{}
	}
	return profileResponse{userResponse: newUserResponse(p.User), Favorites: cols}
}

type addMovieRequest struct {
	MovieID     flexibleID `json:"movieId"`
	Title       string     `json:"title"`
	PosterPath  string     `json:"poster_path"`
	VoteAverage float64    `json:"vote_average"`
	ReleaseDate string     `json:"release_date"`
}

func (r addMovieRequest) entry() favorites.MovieEntry {
	return favorites.MovieEntry{
		MovieID:     string(r.MovieID),
		Title:       r.Title,
		PosterPath:  r.PosterPath,
		VoteAverage: r.VoteAverage,
		ReleaseDate: r.ReleaseDate,
	}
}

type addTrackRequest struct {
	TrackID flexibleID      `json:"trackId"`
	Title   string          `json:"title"`
	Artist  string          `json:"artist"`
	Album   favorites.Album `json:"album"`
}

func (r addTrackRequest) entry() favorites.TrackEntry {
	return favorites.TrackEntry{
		TrackID: string(r.TrackID),
		Title:   r.Title,
		Artist:  r.Artist,
		Album:   r.Album,
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: body is empty", errInvalidBody)
		}
		return fmt.Errorf("%w: %v", errInvalidBody, err)
	}
	return nil
}
