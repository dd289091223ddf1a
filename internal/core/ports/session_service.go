package ports

import (
	"context"

	"github.com/froker/lending-system/internal/core/domain"
)

// RegisterInput carries all data needed to open a borrower account.
type RegisterInput struct {
	PhoneNumber   string
	Email         string
	Name          string
	Password      string
	DateOfBirth   string
	MonthlySalary float64
}

// TokenPair is the access/refresh credential pair issued on login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SessionService orchestrates the session token lifecycle.
type SessionService interface {
	// Register validates the application, runs underwriting, and persists
	// the account. A rejected application is persisted with its Rejected
	// status and then surfaced as domain.ErrApplicationRejected.
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)

	// Login verifies credentials and starts a session, replacing any prior
	// refresh token for the user.
	Login(ctx context.Context, email, password string) (*domain.User, TokenPair, error)

	// Logout ends the session by clearing the stored refresh token. Idempotent.
	Logout(ctx context.Context, userID string) error

	// Refresh rotates a valid refresh token into a new token pair. A token
	// that was already rotated out fails with domain.ErrUnauthorized.
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)

	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
}
