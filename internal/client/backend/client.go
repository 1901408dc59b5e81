// Package backend is the HTTP client of the favorites REST API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"media-favorites/internal/core/domain/auth"
	"media-favorites/internal/core/domain/favorites"
)

// ErrUnavailable is returned when the backend cannot be reached or answers garbage.
var ErrUnavailable = errors.New("backend unavailable")

// Error is a decoded error body. It matches the domain sentinels its code stands for,
// so callers can use errors.Is as they would against the services themselves.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool {
	switch e.Code {
	case "validation":
		return target == favorites.ErrValidation || target == auth.ErrValidation
	case "conflict":
		if strings.HasPrefix(e.Message, favorites.ErrConflict.Error()) {
			return target == favorites.ErrConflict
		}
		return target == auth.ErrDuplicate
	case "unauthorized":
		switch e.Message {
		case auth.ErrInvalidCredentials.Error():
			return target == auth.ErrInvalidCredentials
		case auth.ErrPasswordMismatch.Error():
			return target == auth.ErrPasswordMismatch
		}
		return target == auth.ErrUnauthorized
	case "not_found":
		return target == auth.ErrNotFound
	}
	return false
}

// Profile is the body of GET /api/users/profile.
type Profile struct {
	ID        string                `json:"id"`
	Username  string                `json:"username"`
	Email     string                `json:"email"`
	Favorites favorites.Collections `json:"favorites"`
}

func (p Profile) User() auth.User {
	return auth.User{ID: p.ID, Username: p.Username, Email: p.Email}
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) SignUp(ctx context.Context, username, email, password string) (auth.User, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	var user auth.User
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", "", body, &user)
	return user, err
}

func (c *Client) Login(ctx context.Context, email, password string) (string, auth.User, error) {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		Token string    `json:"token"`
		User  auth.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &resp); err != nil {
		return "", auth.User{}, err
	}
	return resp.Token, resp.User, nil
}

func (c *Client) Profile(ctx context.Context, token string) (Profile, error) {
	var p Profile
	err := c.do(ctx, http.MethodGet, "/api/users/profile", token, nil, &p)
	return p, err
}

func (c *Client) UpdateProfile(ctx context.Context, token, username, email string) (auth.User, error) {
	body := map[string]string{"username": username, "email": email}
	var user auth.User
	err := c.do(ctx, http.MethodPut, "/api/users/profile", token, body, &user)
	return user, err
}

func (c *Client) ChangePassword(ctx context.Context, token, current, next string) error {
	body := map[string]string{"currentPassword": current, "newPassword": next}
	return c.do(ctx, http.MethodPut, "/api/users/change-password", token, body, nil)
}

func (c *Client) Favorites(ctx context.Context, token string) (favorites.Collections, error) {
	var cols favorites.Collections
	err := c.do(ctx, http.MethodGet, "/api/favorites", token, nil, &cols)
	return cols, err
}

func (c *Client) AddMovie(ctx context.Context, token string, entry favorites.MovieEntry) ([]favorites.MovieEntry, error) {
	var movies []favorites.MovieEntry
	err := c.do(ctx, http.MethodPost, "/api/favorites/movies", token, entry, &movies)
	return movies, err
}

func (c *Client) RemoveMovie(ctx context.Context, token, movieID string) ([]favorites.MovieEntry, error) {
	var movies []favorites.MovieEntry
	err := c.do(ctx, http.MethodDelete, "/api/favorites/movies/"+url.PathEscape(movieID), token, nil, &movies)
	return movies, err
}

func (c *Client) AddTrack(ctx context.Context, token string, entry favorites.TrackEntry) ([]favorites.TrackEntry, error) {
	var tracks []favorites.TrackEntry
	err := c.do(ctx, http.MethodPost, "/api/favorites/tracks", token, entry, &tracks)
	return tracks, err
}

func (c *Client) RemoveTrack(ctx context.Context, token, trackID string) ([]favorites.TrackEntry, error) {
	var tracks []favorites.TrackEntry
	err := c.do(ctx, http.MethodDelete, "/api/favorites/tracks/"+url.PathEscape(trackID), token, nil, &tracks)
	return tracks, err
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
		}
		body.Error = resp.Status
	}
	if body.Code == "" && resp.StatusCode == http.StatusUnauthorized {
		body.Code = "unauthorized"
	}
	return &Error{Status: resp.StatusCode, Code: body.Code, Message: body.Error}
}
