package service

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"media-favorites/internal/core/domain/auth"
	"media-favorites/internal/core/ports"
)

type UserService struct {
	repo      ports.UserRepository
	favorites ports.FavoriteService
	logger    *slog.Logger
}

func NewUserService(repo ports.UserRepository, favorites ports.FavoriteService, logger *slog.Logger) *UserService {
	return &UserService{repo: repo, favorites: favorites, logger: logger}
}

func (s *UserService) Profile(ctx context.Context, userID string) (ports.Profile, error) {
	ctx, span := tracer.Start(ctx, "UserService.Profile")
	defer span.End()

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return ports.Profile{}, err
	}

	cols, err := s.favorites.List(ctx, userID)
	if err != nil {
		return ports.Profile{}, err
	}
	return ports.Profile{User: user, Favorites: cols}, nil
}

// UpdateProfile only checks uniqueness for fields that actually change.
func (s *UserService) UpdateProfile(ctx context.Context, userID, username, email string) (auth.User, error) {
	ctx, span := tracer.Start(ctx, "UserService.UpdateProfile")
	defer span.End()

	current, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return auth.User{}, err
	}

	next := auth.User{ID: userID, Username: username, Email: email}.Normalize()
	if err := next.Validate(); err != nil {
		return auth.User{}, err
	}

	var checkUsername, checkEmail string
	if next.Username != current.Username {
		checkUsername = next.Username
	}
	if next.Email != current.Email {
		checkEmail = next.Email
	}
	if err := ensureAvailable(ctx, s.repo, userID, checkUsername, checkEmail); err != nil {
		return auth.User{}, err
	}

	updated, err := s.repo.UpdateProfile(ctx, userID, next.Username, next.Email)
	if err != nil {
		span.RecordError(err)
		return auth.User{}, err
	}

	s.logger.InfoContext(ctx, "profile updated", "user_id", userID)
	return updated, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	ctx, span := tracer.Start(ctx, "UserService.ChangePassword")
	defer span.End()

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return auth.ErrPasswordMismatch
	}
	if err := auth.ValidatePassword(newPassword); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.repo.UpdatePassword(ctx, userID, string(hashed)); err != nil {
		span.RecordError(err)
		return err
	}

	s.logger.InfoContext(ctx, "password changed", "user_id", userID)
	return nil
}
