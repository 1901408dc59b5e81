package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// Health handles GET /healthz. Any failing check turns the response into a 503.
func Health(logger *slog.Logger, checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok"}
		code := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
				status[name] = "unavailable"
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
			}
		}
		respondJSON(w, logger, code, status)
	}
}

// NewRouter initializes the HTTP router and registers routes.
func NewRouter(h *Handler, authH *AuthHandler, userH *UserHandler, verifier TokenVerifier, health http.HandlerFunc, logger *slog.Logger, mws ...Middleware) http.Handler {
	mux := http.NewServeMux()

	// Auth Routes (Public)
	mux.HandleFunc("POST /api/auth/signup", authH.SignUp)
	mux.HandleFunc("POST /api/auth/login", authH.Login)

	// Protected Routes
	authed := AuthMiddleware(verifier, logger)

	mux.Handle("GET /api/users/profile", authed(http.HandlerFunc(userH.GetProfile)))
	mux.Handle("PUT /api/users/profile", authed(http.HandlerFunc(userH.UpdateProfile)))
	mux.Handle("PUT /api/users/change-password", authed(http.HandlerFunc(userH.ChangePassword)))

	mux.Handle("GET /api/favorites", authed(http.HandlerFunc(h.List)))
	mux.Handle("POST /api/favorites/movies", authed(http.HandlerFunc(h.AddMovie)))
	mux.Handle("DELETE /api/favorites/movies/{movieId}", authed(http.HandlerFunc(h.RemoveMovie)))
	mux.Handle("POST /api/favorites/tracks", authed(http.HandlerFunc(h.AddTrack)))
	mux.Handle("DELETE /api/favorites/tracks/{trackId}", authed(http.HandlerFunc(h.RemoveTrack)))

	mux.HandleFunc("GET /healthz", health)

	// Documentation
	mux.HandleFunc("GET /openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "api/openapi.yaml")
	})

	mux.HandleFunc("GET /api-docs", func(w http.ResponseWriter, r *http.Request) {
		html := `<!DOCTYPE html>
				<html lang="en">
				<head>
					<meta charset="utf-8" />
					<meta name="viewport" content="width=device-width, initial-scale=1" />
					<title>Media Favorites API</title>
					<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
				</head>
				<body>
				<div id="swagger-ui"></div>
				<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
				<script>
					window.onload = () => {
						window.ui = SwaggerUIBundle({ url: '/openapi.yaml', dom_id: '#swagger-ui' });
					};
				</script>
				</body>
				</html>`
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(html))
	})

	// Wrap with middleware
	return Chain(mux, mws...)
}
