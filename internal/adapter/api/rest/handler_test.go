package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"media-favorites/internal/core/domain/auth"
	"media-favorites/internal/core/domain/favorites"
	"media-favorites/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) List(ctx context.Context, userID string) (favorites.Collections, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(favorites.Collections), args.Error(1)
}

func (m *MockService) AddMovie(ctx context.Context, userID string, entry favorites.MovieEntry) ([]favorites.MovieEntry, error) {
	args := m.Called(ctx, userID, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]favorites.MovieEntry), args.Error(1)
}

func (m *MockService) RemoveMovie(ctx context.Context, userID, movieID string) ([]favorites.MovieEntry, error) {
	args := m.Called(ctx, userID, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]favorites.MovieEntry), args.Error(1)
}

func (m *MockService) AddTrack(ctx context.Context, userID string, entry favorites.TrackEntry) ([]favorites.TrackEntry, error) {
	args := m.Called(ctx, userID, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]favorites.TrackEntry), args.Error(1)
}

func (m *MockService) RemoveTrack(ctx context.Context, userID, trackID string) ([]favorites.TrackEntry, error) {
	args := m.Called(ctx, userID, trackID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]favorites.TrackEntry), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) SignUp(ctx context.Context, username, email, password string) (auth.User, error) {
	args := m.Called(ctx, username, email, password)
	return args.Get(0).(auth.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, auth.User, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Get(1).(auth.User), args.Error(2)
}

func (m *MockAuthService) Verify(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Profile(ctx context.Context, userID string) (ports.Profile, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(ports.Profile), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, userID, username, email string) (auth.User, error) {
	args := m.Called(ctx, userID, username, email)
	return args.Get(0).(auth.User), args.Error(1)
}

func (m *MockUserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	args := m.Called(ctx, userID, currentPassword, newPassword)
	return args.Error(0)
}

// staticVerifier accepts exactly one token.
type staticVerifier struct {
	token  string
	userID string
}

func (v staticVerifier) Verify(_ context.Context, token string) (string, error) {
	if token != v.token {
		return "", auth.ErrUnauthorized
	}
	return v.userID, nil
}

type testEnv struct {
	favs    *MockService
	authSvc *MockAuthService
	users   *MockUserService
	router  http.Handler
}

func newTestEnv() *testEnv {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env := &testEnv{
		favs:    new(MockService),
		authSvc: new(MockAuthService),
		users:   new(MockUserService),
	}
	health := Health(logger, nil)
	env.router = NewRouter(
		NewHandler(env.favs, logger),
		NewAuthHandler(env.authSvc, logger),
		NewUserHandler(env.users, logger),
		staticVerifier{token: "good-token", userID: "user-1"},
		health,
		logger,
		RequestID, Recovery(logger),
	)
	return env
}

func (e *testEnv) do(method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

var inception = favorites.MovieEntry{MovieID: "27205", Title: "Inception", PosterPath: "/p.jpg", VoteAverage: 8.4, ReleaseDate: "2010-07-15"}

func TestHandler_List(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		env := newTestEnv()
		env.favs.On("List", mock.Anything, "user-1").Return(favorites.Collections{
			Movies: []favorites.MovieEntry{inception},
			Tracks: []favorites.TrackEntry{},
		}, nil).Once()

		w := env.do(http.MethodGet, "/api/favorites", "good-token", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"movies":[{"movieId":"27205","title":"Inception","poster_path":"/p.jpg","vote_average":8.4,"release_date":"2010-07-15"}],"tracks":[]}`, w.Body.String())
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("missing token", func(t *testing.T) {
		env := newTestEnv()
		w := env.do(http.MethodGet, "/api/favorites", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, errorResponse{Error: "unauthorized", Code: "unauthorized"}, decodeError(t, w))
		env.favs.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("invalid token", func(t *testing.T) {
		env := newTestEnv()
		w := env.do(http.MethodGet, "/api/favorites", "forged", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("store failure is generic", func(t *testing.T) {
		env := newTestEnv()
		env.favs.On("List", mock.Anything, "user-1").Return(favorites.Collections{}, errors.New("pq: connection refused")).Once()

		w := env.do(http.MethodGet, "/api/favorites", "good-token", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, errorResponse{Error: "internal server error", Code: "internal"}, decodeError(t, w))
	})
}

func TestHandler_AddMovie(t *testing.T) {
	t.Run("success with string id", func(t *testing.T) {
		env := newTestEnv()
		env.favs.On("AddMovie", mock.Anything, "user-1", inception).Return([]favorites.MovieEntry{inception}, nil).Once()

		body := `{"movieId":"27205","title":"Inception","poster_path":"/p.jpg","vote_average":8.4,"release_date":"2010-07-15"}`
		w := env.do(http.MethodPost, "/api/favorites/movies", "good-token", body)
		assert.Equal(t, http.StatusOK, w.Code)

		var got []favorites.MovieEntry
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, []favorites.MovieEntry{inception}, got)
	})

	t.Run("numeric id is accepted", func(t *testing.T) {
		env := newTestEnv()
		env.favs.On("AddMovie", mock.Anything, "user-1", mock.MatchedBy(func(e favorites.MovieEntry) bool {
			return e.MovieID == "27205"
		})).Return([]favorites.MovieEntry{inception}, nil).Once()

		w := env.do(http.MethodPost, "/api/favorites/movies", "good-token", `{"movieId":27205,"title":"Inception"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		env.favs.AssertExpectations(t)
	})

	t.Run("duplicate", func(t *testing.T) {
		env := newTestEnv()
		env.favs.On("AddMovie", mock.Anything, "user-1", mock.Anything).Return(nil, favorites.ConflictError(inception)).Once()

		w := env.do(http.MethodPost, "/api/favorites/movies", "good-token", `{"movieId":"27205","title":"Inception"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, errorResponse{Error: "already in favorites: movie 27205", Code: "conflict"}, decodeError(t, w))
	})

	t.Run("validation", func(t *testing.T) {
		env := newTestEnv()
		env.favs.On("AddMovie", mock.Anything, "user-1", mock.Anything).
			Return(nil, errors.Join(favorites.ErrValidation, errors.New("movieId is required"))).Once()

		w := env.do(http.MethodPost, "/api/favorites/movies", "good-token", `{"title":"No id"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation", decodeError(t, w).Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		env := newTestEnv()
		w := env.do(http.MethodPost, "/api/favorites/movies", "good-token", `{"movieId":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation", decodeError(t, w).Code)
		env.favs.AssertNotCalled(t, "AddMovie", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("boolean id is rejected", func(t *testing.T) {
		env := newTestEnv()
		w := env.do(http.MethodPost, "/api/favorites/movies", "good-token", `{"movieId":true}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("fractional id is rejected", func(t *testing.T) {
		for _, body := range []string{`{"movieId":27205.0}`, `{"movieId":2.7205e4}`} {
			env := newTestEnv()
			w := env.do(http.MethodPost, "/api/favorites/movies", "good-token", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, body)
			assert.Equal(t, "validation", decodeError(t, w).Code)
			env.favs.AssertNotCalled(t, "AddMovie", mock.Anything, mock.Anything, mock.Anything)
		}
	})
}

func TestHandler_RemoveMovie(t *testing.T) {
	env := newTestEnv()
	env.favs.On("RemoveMovie", mock.Anything, "user-1", "999").Return([]favorites.MovieEntry{inception}, nil).Once()

	w := env.do(http.MethodDelete, "/api/favorites/movies/999", "good-token", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"movieId":"27205"`)
	env.favs.AssertExpectations(t)
}

func TestHandler_Tracks(t *testing.T) {
	track := favorites.TrackEntry{TrackID: "3135556", Title: "Harder", Artist: "Daft Punk", Album: favorites.Album{CoverMedium: "c.jpg"}}

	t.Run("add", func(t *testing.T) {
		env := newTestEnv()
		env.favs.On("AddTrack", mock.Anything, "user-1", track).Return([]favorites.TrackEntry{track}, nil).Once()

		body, _ := json.Marshal(map[string]any{
			"trackId": 3135556,
			"title":   "Harder",
			"artist":  "Daft Punk",
			"album":   map[string]string{"cover_medium": "c.jpg"},
		})
		w := env.do(http.MethodPost, "/api/favorites/tracks", "good-token", string(body))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"trackId":"3135556","title":"Harder","artist":"Daft Punk","album":{"cover_medium":"c.jpg"}}]`, w.Body.String())
	})

	t.Run("remove absent returns collection", func(t *testing.T) {
		env := newTestEnv()
		env.favs.On("RemoveTrack", mock.Anything, "user-1", "42").Return([]favorites.TrackEntry{}, nil).Once()

		w := env.do(http.MethodDelete, "/api/favorites/tracks/42", "good-token", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})
}

func TestFlexibleID(t *testing.T) {
	tests := []struct {
		in      string
		want    flexibleID
		wantErr bool
	}{
		{`"27205"`, "27205", false},
		{`27205`, "27205", false},
		{`27205.0`, "", true},
		{`2.7205e4`, "", true},
		{`9223372036854775808`, "", true},
		{`null`, "", false},
		{`true`, "", true},
		{`{}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got flexibleID
			err := json.Unmarshal([]byte(tt.in), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		code int
		kind string
	}{
		{favorites.ErrValidation, http.StatusBadRequest, codeValidation},
		{auth.ErrValidation, http.StatusBadRequest, codeValidation},
		{errInvalidBody, http.StatusBadRequest, codeValidation},
		{favorites.ErrConflict, http.StatusBadRequest, codeConflict},
		{auth.DuplicateError("email"), http.StatusBadRequest, codeConflict},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized, codeUnauthorized},
		{auth.ErrPasswordMismatch, http.StatusUnauthorized, codeUnauthorized},
		{auth.ErrNotFound, http.StatusNotFound, codeNotFound},
		{errors.New("boom"), http.StatusInternalServerError, codeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			code, kind := classify(tt.err)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.kind, kind)
		})
	}
}

func TestDecodeJSON_BodyLimit(t *testing.T) {
	big := bytes.Repeat([]byte("a"), maxBodyBytes+10)
	body := `{"title":"` + string(big) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var v addMovieRequest
	err := decodeJSON(httptest.NewRecorder(), req, &v)
	assert.ErrorIs(t, err, errInvalidBody)
}
