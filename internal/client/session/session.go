// Package session keeps the signed-in user's token and profile snapshot on disk.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"media-favorites/internal/client/store"
	"media-favorites/internal/core/domain/auth"
)

const (
	TokenKey = "userToken"
	UserKey  = "userData"
)

// Storage is the key/value persistence the session lives in.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Session struct {
	store Storage
}

func New(s Storage) *Session {
	return &Session{store: s}
}

// Save stores the token and the user snapshot returned at login.
func (s *Session) Save(ctx context.Context, token string, user auth.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	if err := s.store.Set(ctx, TokenKey, []byte(token)); err != nil {
		return err
	}
	if err := s.store.Set(ctx, UserKey, data); err != nil {
		return err
	}
	return nil
}

// SetUser refreshes the cached profile snapshot.
func (s *Session) SetUser(ctx context.Context, user auth.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}
	return s.store.Set(ctx, UserKey, data)
}

// Token returns the stored bearer token, or "" when signed out.
func (s *Session) Token(ctx context.Context) (string, error) {
	data, err := s.store.Get(ctx, TokenKey)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// User returns the cached snapshot. ok is false when none is stored.
func (s *Session) User(ctx context.Context) (user auth.User, ok bool, err error) {
	data, err := s.store.Get(ctx, UserKey)
	if errors.Is(err, store.ErrNotFound) {
		return auth.User{}, false, nil
	}
	if err != nil {
		return auth.User{}, false, err
	}
	if err := json.Unmarshal(data, &user); err != nil {
		return auth.User{}, false, fmt.Errorf("failed to decode user: %w", err)
	}
	return user, true, nil
}

// Clear signs the user out locally.
func (s *Session) Clear(ctx context.Context) error {
	return errors.Join(
		s.store.Delete(ctx, TokenKey),
		s.store.Delete(ctx, UserKey),
	)
}
