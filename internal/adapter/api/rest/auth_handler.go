package rest

import (
	"log/slog"
	"net/http"

	"media-favorites/internal/core/ports"
)

type AuthHandler struct {
	service ports.AuthService
	logger  *slog.Logger
}

func NewAuthHandler(service ports.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: service, logger: logger}
}

// SignUp handles POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	user, err := h.service.SignUp(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user signed up", "user_id", user.ID)
	respondJSON(w, h.logger, http.StatusCreated, user)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, loginResponse{Token: token, User: user})
}
