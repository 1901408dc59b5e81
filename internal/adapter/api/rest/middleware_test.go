package rest

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Context().Value(requestIDKey)
		assert.NotNil(t, rid, "RequestID should be in context")
		assert.NotEmpty(t, rid.(string), "RequestID should not be empty")

		respRid := w.Header().Get("X-Request-ID")
		assert.Equal(t, rid.(string), respRid, "Header should match context")
	})

	handlerToTest := RequestID(nextHandler)

	t.Run("generates new id when missing", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()
		handlerToTest.ServeHTTP(w, req)
	})

	t.Run("preserves existing id", func(t *testing.T) {
		existingID := "existing-id"
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Request-ID", existingID)
		w := httptest.NewRecorder()

		nextHandlerWithCheck := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, existingID, RequestIDFrom(r.Context()))
		})

		RequestID(nextHandlerWithCheck).ServeHTTP(w, req)
		assert.Equal(t, existingID, w.Header().Get("X-Request-ID"))
	})
}

func TestChain(t *testing.T) {
	var calls []string
	mw1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls = append(calls, "mw1")
			next.ServeHTTP(w, r)
		})
	}
	mw2 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls = append(calls, "mw2")
			next.ServeHTTP(w, r)
		})
	}

	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "final")
	})

	chained := Chain(final, mw1, mw2)
	chained.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, []string{"mw1", "mw2", "final"}, calls, "Middleware should be called in order")
}

func TestAuthMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mw := AuthMiddleware(staticVerifier{token: "good", userID: "user-9"}, logger)

	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFrom(r.Context())
	})

	tests := []struct {
		name   string
		header string
		code   int
		userID string
	}{
		{"valid", "Bearer good", http.StatusOK, "user-9"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
		{"empty token", "Bearer   ", http.StatusUnauthorized, ""},
		{"bad token", "Bearer bad", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			mw(next).ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.userID, seen)
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}), RequestID, Logger(logger))

	req := httptest.NewRequest(http.MethodPost, "/api/favorites/movies", nil)
	req.Header.Set("X-Request-ID", "rid-1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"status":202`)
	assert.Contains(t, out, `"path":"/api/favorites/movies"`)
	assert.Contains(t, out, `"request_id":"rid-1"`)
}

func TestRecovery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := Recovery(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error","code":"internal"}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("ok", func(t *testing.T) {
		h := Health(logger, map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
		})
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	})

	t.Run("degraded", func(t *testing.T) {
		h := Health(logger, map[string]HealthCheck{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("refused") },
		})
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"degraded","redis":"unavailable"}`, w.Body.String())
	})

	t.Run("routed", func(t *testing.T) {
		env := newTestEnv()
		w := env.do(http.MethodGet, "/healthz", "", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
