package domain

import (
	"fmt"
	"math"
)

// LoanTerms holds the lending parameters injected from configuration.
// AnnualInterestRate is a decimal fraction (0.12 means 12% per year);
// SafeExpenseFraction is the share of disposable income considered safe
// to commit to repayments (0.35 means 35%).
type LoanTerms struct {
	AnnualInterestRate    float64
	SafeExpenseFraction   float64
	RecommendTenureMonths int
}

// MonthlyRepayment computes the level monthly payment that fully repays
// principal plus interest over the given number of monthly periods, using
// the standard amortization formula
//
//	r = annualRate/12
//	payment = principal * r / (1 - (1+r)^-periods)
//
// A zero interest rate degenerates to straight-line repayment, where the
// generic formula would divide by zero. Results are not rounded; rounding
// belongs at the presentation boundary.
func MonthlyRepayment(principal, annualRate float64, periods int) (float64, error) {
	if periods <= 0 {
		return 0, fmt.Errorf("%w: tenure must be a positive number of months", ErrValidation)
	}
	if principal <= 0 {
		return 0, fmt.Errorf("%w: principal must be greater than zero", ErrValidation)
	}
	if annualRate < 0 {
		return 0, fmt.Errorf("%w: interest rate must not be negative", ErrValidation)
	}

	if annualRate == 0 {
		return principal / float64(periods), nil
	}

	r := annualRate / 12
	return principal * r / (1 - math.Pow(1+r, -float64(periods))), nil
}

// MaxRecommendedLoan computes the largest new loan whose repayments stay
// within a safe fraction of disposable income, net of existing debt. It
// returns both the recommended principal and the monthly repayment ceiling
// the recommendation is based on.
func MaxRecommendedLoan(monthlyIncome, monthlyExpenses, existingDebt, annualRate, safeFraction float64, tenureMonths int) (maxLoan, maxRepayment float64, err error) {
	if monthlyExpenses > monthlyIncome {
		return 0, 0, fmt.Errorf("%w: monthly expenses exceed monthly income", ErrPolicyViolation)
	}
	if tenureMonths <= 0 {
		return 0, 0, fmt.Errorf("%w: tenure must be a positive number of months", ErrValidation)
	}
	if annualRate <= 0 {
		return 0, 0, fmt.Errorf("%w: interest rate must be greater than zero", ErrValidation)
	}

	maxRepayment = (monthlyIncome - monthlyExpenses) * safeFraction
	r := annualRate / 12
	maxLoan = maxRepayment*(1-math.Pow(1+r, -float64(tenureMonths)))/r - existingDebt
	return maxLoan, maxRepayment, nil
}

// Round2 rounds to two decimal places. Applied only when amounts are
// rendered to the client, never inside a calculation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
