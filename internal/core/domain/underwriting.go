package domain

import (
	"fmt"
	"time"
)

// UnderwritingPolicy holds the thresholds applied to every new application.
// Values are injected from configuration; the policy itself never reads
// ambient process state.
type UnderwritingPolicy struct {
	MinAge           int
	MinMonthlySalary float64
}

// Decision is the outcome of underwriting a single application.
type Decision struct {
	Status ApplicationStatus
	Reason string
}

// Decide evaluates an application against the policy. Rules run in order:
// age first, then salary; the first failing rule rejects the application.
//
// Age is the calendar-year difference between now and the birth year, not
// the number of fully elapsed years. An applicant born in December counts
// a year older from the following January 1st onward.
func (p UnderwritingPolicy) Decide(dateOfBirth string, monthlySalary float64, now time.Time) (Decision, error) {
	birth, err := ParseDateOfBirth(dateOfBirth)
	if err != nil {
		return Decision{}, err
	}

	age := now.Year() - birth.Year()

	switch {
	case age <= p.MinAge:
		return Decision{
			Status: StatusRejected,
			Reason: fmt.Sprintf("applicant must be older than %d years", p.MinAge),
		}, nil
	case monthlySalary < p.MinMonthlySalary:
		return Decision{
			Status: StatusRejected,
			Reason: fmt.Sprintf("monthly salary must be at least %.0f", p.MinMonthlySalary),
		}, nil
	default:
		return Decision{Status: StatusApproved}, nil
	}
}

// ParseDateOfBirth parses a DD.MM.YYYY date string.
func ParseDateOfBirth(s string) (time.Time, error) {
	t, err := time.Parse(DateOfBirthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date of birth must be in DD.MM.YYYY format", ErrValidation)
	}
	return t, nil
}
