package auth

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicate          = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("user not found")
	ErrPasswordMismatch   = errors.New("Current password is incorrect")
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt,omitzero"`
}

// Normalize trims the profile fields and lowercases the email.
func (u User) Normalize() User {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = NormalizeEmail(u.Email)
	return u
}

func (u User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	return ValidateProfile(u.Username, u.Email)
}

// ValidateProfile checks the user-editable profile fields.
func ValidateProfile(username, email string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username is required", ErrValidation)
	}
	if len([]rune(strings.TrimSpace(username))) < MinUsernameLength {
		return fmt.Errorf("%w: username must be at least %d characters long", ErrValidation, MinUsernameLength)
	}
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !ValidEmail(email) {
		return fmt.Errorf("%w: please provide a valid email", ErrValidation)
	}
	return nil
}

// ValidatePassword checks a plain-text password before it is hashed.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("%w: password is required", ErrValidation)
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters long", ErrValidation, MinPasswordLength)
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail accepts a bare address (no display name) with a dotted domain.
func ValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}

// DuplicateError reports which unique profile field is already taken.
func DuplicateError(field string) error {
	switch field {
	case "email":
		return fmt.Errorf("Email %w", ErrDuplicate)
	case "username":
		return fmt.Errorf("Username %w", ErrDuplicate)
	}
	return ErrDuplicate
}
