package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/froker/lending-system/internal/core/domain"
	"github.com/froker/lending-system/internal/core/ports"
)

// SessionService orchestrates registration, login, logout, refresh-token
// rotation, and password changes.
type SessionService struct {
	repo   ports.UserRepository
	hasher *PasswordHasher
	codec  *TokenCodec
	guard  ports.ReplayGuard
	policy domain.UnderwritingPolicy
	logger zerolog.Logger
}

func NewSessionService(
	repo ports.UserRepository,
	hasher *PasswordHasher,
	codec *TokenCodec,
	guard ports.ReplayGuard,
	policy domain.UnderwritingPolicy,
	logger zerolog.Logger,
) *SessionService {
	return &SessionService{
		repo:   repo,
		hasher: hasher,
		codec:  codec,
		guard:  guard,
		policy: policy,
		logger: logger,
	}
}

// Register validates the application, underwrites it, and persists the
// account with the decided status. A rejected application is persisted
// first and then surfaced as ErrApplicationRejected, so the rejection is
// on record even though the caller sees an error.
func (s *SessionService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if err := validateRegistration(in); err != nil {
		return nil, err
	}

	email := normalizeEmail(in.Email)

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: lookup email: %w", err)
	}
	if _, err := s.repo.FindByName(ctx, in.Name); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("register: lookup name: %w", err)
	}

	now := time.Now().UTC()
	decision, err := s.policy.Decide(in.DateOfBirth, in.MonthlySalary, now)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user := &domain.User{
		PhoneNumber:        in.PhoneNumber,
		Email:              email,
		Name:               strings.TrimSpace(in.Name),
		PasswordHash:       hash,
		DateOfRegistration: now,
		DateOfBirth:        in.DateOfBirth,
		MonthlySalary:      in.MonthlySalary,
		Status:             decision.Status,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	user.RecomputePurchasePower()

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("register: persist user: %w", err)
	}

	s.logger.Info().Str("user_id", created.ID).Str("status", string(created.Status)).Msg("application underwritten")

	if decision.Status == domain.StatusRejected {
		return created, fmt.Errorf("%w: %s", domain.ErrApplicationRejected, decision.Reason)
	}
	return created, nil
}

// Login verifies credentials and opens a session. Storing the new refresh
// token overwrites any previous one, so at most one rotation chain is
// active per user.
func (s *SessionService) Login(ctx context.Context, email, password string) (*domain.User, ports.TokenPair, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, ports.TokenPair{}, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ports.TokenPair{}, domain.ErrUserNotFound
		}
		return nil, ports.TokenPair{}, fmt.Errorf("login: lookup user: %w", err)
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, ports.TokenPair{}, fmt.Errorf("login: %w", err)
	}
	if !ok {
		return nil, ports.TokenPair{}, domain.ErrInvalidCredentials
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, ports.TokenPair{}, fmt.Errorf("login: %w", err)
	}

	if err := s.repo.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, ports.TokenPair{}, fmt.Errorf("login: store refresh token: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("session opened")
	return user, pair, nil
}

// Logout clears the stored refresh token. Calling it for a user with no
// active session is a no-op.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	if err := s.repo.ClearRefreshToken(ctx, userID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.logger.Info().Str("user_id", userID).Msg("session closed")
	return nil
}

// Refresh rotates a refresh token into a new access/refresh pair. The
// store update is conditioned on the incoming token still being the
// current one, so of two racing refresh calls at most one succeeds.
func (s *SessionService) Refresh(ctx context.Context, refreshToken string) (ports.TokenPair, error) {
	if refreshToken == "" {
		return ports.TokenPair{}, domain.ErrUnauthorized
	}

	userID, err := s.codec.VerifyRefreshToken(refreshToken)
	if err != nil {
		return ports.TokenPair{}, err
	}

	rotated, err := s.guard.IsRotated(ctx, refreshToken)
	if err != nil {
		s.logger.Warn().Err(err).Msg("replay guard unavailable, falling back to store check")
	} else if rotated {
		s.logger.Warn().Str("user_id", userID).Msg("rotated-out refresh token replayed")
		return ports.TokenPair{}, domain.ErrUnauthorized
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return ports.TokenPair{}, domain.ErrUnauthorized
		}
		return ports.TokenPair{}, fmt.Errorf("refresh: lookup user: %w", err)
	}

	if user.RefreshToken != refreshToken {
		s.logger.Warn().Str("user_id", userID).Msg("refresh token does not match stored token")
		return ports.TokenPair{}, domain.ErrUnauthorized
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return ports.TokenPair{}, fmt.Errorf("refresh: %w", err)
	}

	if err := s.repo.RotateRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return ports.TokenPair{}, domain.ErrUnauthorized
		}
		return ports.TokenPair{}, fmt.Errorf("refresh: rotate token: %w", err)
	}

	if err := s.guard.MarkRotated(ctx, refreshToken); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to mark token as rotated")
	}

	s.logger.Info().Str("user_id", userID).Msg("session refreshed")
	return pair, nil
}

// ChangePassword verifies the old password before storing a new hash.
func (s *SessionService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: old and new passwords are required", domain.ErrValidation)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("change password: lookup user: %w", err)
	}

	ok, err := s.hasher.Verify(oldPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !ok {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if err := s.repo.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("change password: persist hash: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Msg("password changed")
	return nil
}

func (s *SessionService) issuePair(user *domain.User) (ports.TokenPair, error) {
	access, err := s.codec.IssueAccessToken(user)
	if err != nil {
		return ports.TokenPair{}, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.codec.IssueRefreshToken(user.ID)
	if err != nil {
		return ports.TokenPair{}, fmt.Errorf("issue refresh token: %w", err)
	}
	return ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func validateRegistration(in ports.RegisterInput) error {
	switch {
	case strings.TrimSpace(in.PhoneNumber) == "",
		strings.TrimSpace(in.Email) == "",
		strings.TrimSpace(in.Name) == "",
		in.Password == "",
		strings.TrimSpace(in.DateOfBirth) == "":
		return fmt.Errorf("%w: all fields are required", domain.ErrValidation)
	case !strings.Contains(in.Email, "@"):
		return fmt.Errorf("%w: email must contain @", domain.ErrValidation)
	case !isTenDigits(in.PhoneNumber):
		return fmt.Errorf("%w: phone number must be 10 digits", domain.ErrValidation)
	case in.MonthlySalary < 0:
		return fmt.Errorf("%w: monthly salary must not be negative", domain.ErrValidation)
	}
	return nil
}

func isTenDigits(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
