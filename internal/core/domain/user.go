package domain

import "time"

// ApplicationStatus represents the underwriting state of a borrower account.
type ApplicationStatus string

const (
	StatusPending  ApplicationStatus = "Pending"
	StatusApproved ApplicationStatus = "Approved"
	StatusRejected ApplicationStatus = "Rejected"
)

// validTransitions defines the allowed state machine transitions. The
// underwriting decision is made exactly once: a Pending account becomes
// Approved or Rejected and never moves again.
var validTransitions = map[ApplicationStatus][]ApplicationStatus{
	StatusPending: {StatusApproved, StatusRejected},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// DateOfBirthLayout is the wire format for dates of birth (day.month.year).
const DateOfBirthLayout = "02.01.2006"

// User models a borrower account. PasswordHash only ever holds a bcrypt
// hash; RefreshToken is non-empty only while a session is active.
type User struct {
	ID                 string            `json:"id"`
	PhoneNumber        string            `json:"phone_number"`
	Email              string            `json:"email"`
	Name               string            `json:"name"`
	PasswordHash       string            `json:"-"`
	DateOfRegistration time.Time         `json:"date_of_registration"`
	DateOfBirth        string            `json:"date_of_birth"`
	MonthlySalary      float64           `json:"monthly_salary"`
	Status             ApplicationStatus `json:"status"`
	PurchasePower      float64           `json:"purchase_power"`
	BorrowedAmount     float64           `json:"borrowed_amount"`
	RefreshToken       string            `json:"-"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// RecomputePurchasePower refreshes the derived purchase power from the
// current salary and outstanding debt. Callers must invoke it after any
// change to MonthlySalary or BorrowedAmount, before persisting.
func (u *User) RecomputePurchasePower() {
	u.PurchasePower = u.MonthlySalary*0.5 - u.BorrowedAmount
}
