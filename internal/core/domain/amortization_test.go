package domain

import (
	"errors"
	"math"
	"testing"
)

func TestMonthlyRepayment_StandardCase(t *testing.T) {
	// 1000 at 12% annual over 12 months: classic amortization reference value.
	got, err := MonthlyRepayment(1000, 0.12, 12)
	if err != nil {
		t.Fatalf("MonthlyRepayment returned error: %v", err)
	}
	if math.Abs(got-88.8488) > 0.001 {
		t.Fatalf("expected ~88.85, got %f", got)
	}
}

func TestMonthlyRepayment_ZeroRate(t *testing.T) {
	got, err := MonthlyRepayment(1200, 0, 12)
	if err != nil {
		t.Fatalf("MonthlyRepayment returned error: %v", err)
	}
	if got != 100 {
		t.Fatalf("expected straight-line 100, got %f", got)
	}
}

func TestMonthlyRepayment_InvalidArguments(t *testing.T) {
	if _, err := MonthlyRepayment(1000, 0.12, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for zero periods, got %v", err)
	}
	if _, err := MonthlyRepayment(1000, 0.12, -3); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for negative periods, got %v", err)
	}
	if _, err := MonthlyRepayment(0, 0.12, 12); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for zero principal, got %v", err)
	}
	if _, err := MonthlyRepayment(1000, -0.1, 12); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for negative rate, got %v", err)
	}
}

func TestMaxRecommendedLoan_ReferenceValue(t *testing.T) {
	// Income 50000, expenses 20000, no debt, 12% annual, 35% safe fraction,
	// 12-month tenure. Repayment ceiling is 10500; the loan that ceiling
	// services is ceiling / payment-per-unit from the standard formula.
	maxLoan, maxRepayment, err := MaxRecommendedLoan(50000, 20000, 0, 0.12, 0.35, 12)
	if err != nil {
		t.Fatalf("MaxRecommendedLoan returned error: %v", err)
	}
	if maxRepayment != 10500 {
		t.Fatalf("expected repayment ceiling 10500, got %f", maxRepayment)
	}

	// Cross-check: the recommended loan's monthly repayment equals the ceiling.
	repay, err := MonthlyRepayment(maxLoan, 0.12, 12)
	if err != nil {
		t.Fatalf("MonthlyRepayment returned error: %v", err)
	}
	if math.Abs(repay-maxRepayment) > 0.0001 {
		t.Fatalf("recommended loan repays %f per month, ceiling is %f", repay, maxRepayment)
	}
}

func TestMaxRecommendedLoan_DeductsExistingDebt(t *testing.T) {
	base, _, err := MaxRecommendedLoan(50000, 20000, 0, 0.12, 0.35, 12)
	if err != nil {
		t.Fatalf("MaxRecommendedLoan returned error: %v", err)
	}
	indebted, _, err := MaxRecommendedLoan(50000, 20000, 5000, 0.12, 0.35, 12)
	if err != nil {
		t.Fatalf("MaxRecommendedLoan returned error: %v", err)
	}
	if math.Abs(base-indebted-5000) > 0.0001 {
		t.Fatalf("existing debt should reduce recommendation by its amount: %f vs %f", base, indebted)
	}
}

func TestMaxRecommendedLoan_ExpensesExceedIncome(t *testing.T) {
	if _, _, err := MaxRecommendedLoan(20000, 30000, 0, 0.12, 0.35, 12); !errors.Is(err, ErrPolicyViolation) {
		t.Fatalf("expected ErrPolicyViolation, got %v", err)
	}
}

func TestRecomputePurchasePower(t *testing.T) {
	u := &User{MonthlySalary: 50000, BorrowedAmount: 10000}
	u.RecomputePurchasePower()
	if u.PurchasePower != 15000 {
		t.Fatalf("expected purchase power 15000, got %f", u.PurchasePower)
	}

	u.BorrowedAmount = 30000
	u.RecomputePurchasePower()
	if u.PurchasePower != -5000 {
		t.Fatalf("purchase power may go negative, expected -5000, got %f", u.PurchasePower)
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(88.84879); got != 88.85 {
		t.Fatalf("expected 88.85, got %f", got)
	}
	if got := Round2(100); got != 100 {
		t.Fatalf("expected 100, got %f", got)
	}
}
