package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/froker/lending-system/internal/core/domain"
	"github.com/froker/lending-system/internal/core/ports"
)

// LoanService runs the amortization arithmetic over persisted accounts.
type LoanService struct {
	repo   ports.UserRepository
	terms  domain.LoanTerms
	logger zerolog.Logger
}

func NewLoanService(repo ports.UserRepository, terms domain.LoanTerms, logger zerolog.Logger) *LoanService {
	if terms.RecommendTenureMonths <= 0 {
		terms.RecommendTenureMonths = 12
	}
	return &LoanService{repo: repo, terms: terms, logger: logger}
}

// Profile returns the account for the authenticated user.
func (s *LoanService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("profile: %w", err)
	}
	return user, nil
}

// Borrow checks the requested amount against the user's purchase power,
// applies it to the outstanding debt, and reports the monthly repayment
// over the requested tenure.
func (s *LoanService) Borrow(ctx context.Context, in ports.BorrowInput) (*ports.BorrowResult, error) {
	if in.BorrowAmount <= 0 {
		return nil, fmt.Errorf("%w: borrow amount must be greater than zero", domain.ErrValidation)
	}
	if in.TenureMonths <= 0 {
		return nil, fmt.Errorf("%w: tenure must be a positive number of months", domain.ErrValidation)
	}

	user, err := s.repo.FindByID(ctx, in.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("borrow: lookup user: %w", err)
	}

	if in.BorrowAmount > user.PurchasePower {
		return nil, fmt.Errorf("%w: borrow amount exceeds purchase power of %.2f", domain.ErrPolicyViolation, user.PurchasePower)
	}

	repayment, err := domain.MonthlyRepayment(in.BorrowAmount, s.terms.AnnualInterestRate, in.TenureMonths)
	if err != nil {
		return nil, err
	}

	user.BorrowedAmount += in.BorrowAmount
	user.RecomputePurchasePower()

	if err := s.repo.ApplyBorrow(ctx, user.ID, user.BorrowedAmount, user.PurchasePower); err != nil {
		return nil, fmt.Errorf("borrow: persist: %w", err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Float64("amount", in.BorrowAmount).
		Int("tenure_months", in.TenureMonths).
		Msg("loan disbursed")

	return &ports.BorrowResult{
		MonthlyRepayment: domain.Round2(repayment),
		PurchasePower:    domain.Round2(user.PurchasePower),
		BorrowedAmount:   domain.Round2(user.BorrowedAmount),
		TenureMonths:     in.TenureMonths,
	}, nil
}

// Recommend computes the largest loan the user can safely take on given
// their declared monthly expenses. Read-only.
func (s *LoanService) Recommend(ctx context.Context, userID string, monthlyExpenses float64) (*ports.RecommendationResult, error) {
	if monthlyExpenses <= 0 {
		return nil, fmt.Errorf("%w: monthly expenses are required", domain.ErrValidation)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("recommend: lookup user: %w", err)
	}

	maxLoan, maxRepayment, err := domain.MaxRecommendedLoan(
		user.MonthlySalary,
		monthlyExpenses,
		user.BorrowedAmount,
		s.terms.AnnualInterestRate,
		s.terms.SafeExpenseFraction,
		s.terms.RecommendTenureMonths,
	)
	if err != nil {
		return nil, err
	}

	maxLoan = domain.Round2(maxLoan)
	maxRepayment = domain.Round2(maxRepayment)

	return &ports.RecommendationResult{
		ExistingDebt:        domain.Round2(user.BorrowedAmount),
		MonthlySalary:       domain.Round2(user.MonthlySalary),
		MaxLoanAmount:       maxLoan,
		MaxMonthlyRepayment: maxRepayment,
		TenureMonths:        s.terms.RecommendTenureMonths,
		Narrative: fmt.Sprintf(
			"Based on your financial data, you can afford a loan of up to %.2f so that your monthly repayments do not exceed %.2f.",
			maxLoan, maxRepayment,
		),
	}, nil
}
