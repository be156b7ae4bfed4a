// Package user holds the identity entity for marketplace accounts.
package user

import (
	"strings"
	"time"

	apperrors "github.com/tableside/tableside/internal/platform/errors"
)

// Role describes what an account is allowed to do in the marketplace.
type Role string

const (
	// RoleUnspecified represents an invalid role value.
	RoleUnspecified Role = ""
	// RoleParticipant indicates an account that browses and joins sessions.
	RoleParticipant Role = "participant"
	// RoleHost indicates a chef account that creates and runs sessions.
	RoleHost Role = "host"
)

var (
	// ErrEmptyDisplayName indicates a missing display name.
	ErrEmptyDisplayName = apperrors.New(apperrors.CodeUserDisplayNameEmpty, "display name is required")
	// ErrInvalidRole indicates a missing or unknown role.
	ErrInvalidRole = apperrors.New(apperrors.CodeUserInvalidRole, "user role is required")
)

// User represents an identity record. The role is immutable after creation.
type User struct {
	ID          int64
	Role        Role
	DisplayName string
	// Email and Bio are opaque contact/profile fields.
	Email string
	Bio   string
	// Rating is the average review score for hosts (informational).
	Rating float64
	// SessionsHosted counts completed sessions for hosts (informational).
	SessionsHosted int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateInput describes the fields needed to register a user.
type CreateInput struct {
	Role        Role
	DisplayName string
	Email       string
	Bio         string
}

// Create builds a new user with an assigned id and timestamps.
func Create(input CreateInput, now func() time.Time, nextID func() int64) (User, error) {
	if now == nil {
		now = time.Now
	}

	normalized, err := NormalizeCreateInput(input)
	if err != nil {
		return User{}, err
	}

	createdAt := now().UTC()
	return User{
		ID:          nextID(),
		Role:        normalized.Role,
		DisplayName: normalized.DisplayName,
		Email:       normalized.Email,
		Bio:         normalized.Bio,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}, nil
}

// NormalizeCreateInput trims and validates registration input.
func NormalizeCreateInput(input CreateInput) (CreateInput, error) {
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if input.DisplayName == "" {
		return CreateInput{}, ErrEmptyDisplayName
	}
	if input.Role != RoleParticipant && input.Role != RoleHost {
		return CreateInput{}, ErrInvalidRole
	}
	input.Email = strings.TrimSpace(input.Email)
	return input, nil
}

// ParseRole canonicalizes a role label.
func ParseRole(value string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "participant":
		return RoleParticipant, true
	case "host":
		return RoleHost, true
	default:
		return RoleUnspecified, false
	}
}
