package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"media-favorites/internal/core/domain/auth"
	"media-favorites/internal/core/ports"
)

const DefaultTokenTTL = 2 * time.Hour

type AuthService struct {
	repo      ports.UserRepository
	jwtSecret []byte
	ttl       time.Duration
}

func NewAuthService(repo ports.UserRepository, jwtSecret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &AuthService{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
		ttl:       ttl,
	}
}

func (s *AuthService) SignUp(ctx context.Context, username, email, password string) (auth.User, error) {
	ctx, span := tracer.Start(ctx, "AuthService.SignUp")
	defer span.End()

	user := auth.User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    email,
	}.Normalize()

	if err := user.Validate(); err != nil {
		return auth.User{}, err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return auth.User{}, err
	}

	if err := ensureAvailable(ctx, s.repo, "", user.Username, user.Email); err != nil {
		return auth.User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return auth.User{}, err
	}
	user.PasswordHash = string(hashed)
	user.CreatedAt = time.Now().UTC()

	if err := s.repo.Save(ctx, user); err != nil {
		span.RecordError(err)
		return auth.User{}, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, auth.User, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.repo.FindByEmail(ctx, auth.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return "", auth.User{}, auth.ErrInvalidCredentials
		}
		span.RecordError(err)
		return "", auth.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", auth.User{}, auth.ErrInvalidCredentials
	}

	// Generate JWT
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", auth.User{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, user, nil
}

// Verify returns the user id bound to a bearer token.
func (s *AuthService) Verify(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: missing token", auth.ErrUnauthorized)
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return "", fmt.Errorf("%w: invalid token", auth.ErrUnauthorized)
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: token has no subject", auth.ErrUnauthorized)
	}
	return sub, nil
}

// ensureAvailable rejects a username or email owned by a user other than selfID.
// Empty values are skipped.
func ensureAvailable(ctx context.Context, repo ports.UserRepository, selfID, username, email string) error {
	if email != "" {
		existing, err := repo.FindByEmail(ctx, email)
		switch {
		case err == nil && existing.ID != selfID:
			return auth.DuplicateError("email")
		case err != nil && !errors.Is(err, auth.ErrNotFound):
			return err
		}
	}
	if username != "" {
		existing, err := repo.FindByUsername(ctx, username)
		switch {
		case err == nil && existing.ID != selfID:
			return auth.DuplicateError("username")
		case err != nil && !errors.Is(err, auth.ErrNotFound):
			return err
		}
	}
	return nil
}
