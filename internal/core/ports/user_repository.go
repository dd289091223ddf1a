package ports

import (
	"context"

	"github.com/froker/lending-system/internal/core/domain"
)

// UserRepository defines the interface for borrower account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByName(ctx context.Context, name string) (*domain.User, error)

	// SetRefreshToken unconditionally stores the session's refresh token,
	// replacing whatever was there (login starts a fresh rotation chain).
	SetRefreshToken(ctx context.Context, id, token string) error

	// RotateRefreshToken replaces oldToken with newToken only if oldToken
	// is still the stored token. A stale token returns
	// domain.ErrUnauthorized; the compare-and-swap is what keeps two
	// racing refresh calls from both succeeding.
	RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) error

	// ClearRefreshToken removes the stored refresh token. Clearing an
	// already-cleared token is not an error.
	ClearRefreshToken(ctx context.Context, id string) error

	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// ApplyBorrow persists a new outstanding debt together with the
	// purchase power derived from it.
	ApplyBorrow(ctx context.Context, id string, borrowedAmount, purchasePower float64) error
}
