package ports

import (
	"context"

	"github.com/froker/lending-system/internal/core/domain"
)

// BorrowInput carries a borrow request for an authenticated user.
type BorrowInput struct {
	UserID       string
	BorrowAmount float64
	TenureMonths int
}

// BorrowResult reports the repayment schedule and the purchase power left
// after the borrow was applied. Amounts are rounded for presentation.
type BorrowResult struct {
	MonthlyRepayment float64
	PurchasePower    float64
	BorrowedAmount   float64
	TenureMonths     int
}

// RecommendationResult is the borrowing-limit recommendation for a user.
type RecommendationResult struct {
	ExistingDebt        float64
	MonthlySalary       float64
	MaxLoanAmount       float64
	MaxMonthlyRepayment float64
	TenureMonths        int
	Narrative           string
}

// LoanService exposes the underwriting arithmetic over persisted accounts.
type LoanService interface {
	Profile(ctx context.Context, userID string) (*domain.User, error)
	Borrow(ctx context.Context, in BorrowInput) (*BorrowResult, error)
	Recommend(ctx context.Context, userID string, monthlyExpenses float64) (*RecommendationResult, error)
}
