package handler

// --- Request / Response types ---

type registerRequest struct {
	PhoneNumber   string  `json:"phone_number"   validate:"required,len=10,numeric"`
	Email         string  `json:"email"          validate:"required"`
	Name          string  `json:"name"           validate:"required"`
	Password      string  `json:"password"       validate:"required"`
	DateOfBirth   string  `json:"date_of_birth"  validate:"required,dob"`
	MonthlySalary float64 `json:"monthly_salary" validate:"required,gt=0"`
}

type registerResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	User         string `json:"user,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type profileResponse struct {
	PurchasePower      float64 `json:"purchase_power"`
	PhoneNumber        string  `json:"phone_number"`
	Email              string  `json:"email"`
	Name               string  `json:"name"`
	DateOfRegistration string  `json:"date_of_registration"`
	DateOfBirth        string  `json:"date_of_birth"`
	MonthlySalary      float64 `json:"monthly_salary"`
	Status             string  `json:"status"`
	BorrowedAmount     float64 `json:"borrowed_amount"`
}

type borrowRequest struct {
	BorrowAmount float64 `json:"borrow_amount" validate:"required,gt=0"`
	TenureMonths int     `json:"tenure_months" validate:"required,gt=0"`
}

type borrowResponse struct {
	MonthlyRepayment float64 `json:"monthly_repayment"`
	PurchasePower    float64 `json:"purchase_power"`
	BorrowedAmount   float64 `json:"borrowed_amount"`
	TenureMonths     int     `json:"tenure_months"`
}

type recommendRequest struct {
	MonthlyExpenses float64 `json:"monthly_expenses" validate:"required,gt=0"`
}

type recommendResponse struct {
	ExistingDebt        float64 `json:"existing_debt"`
	MonthlySalary       float64 `json:"monthly_salary"`
	MaxLoanAmount       float64 `json:"max_loan_amount"`
	MaxMonthlyRepayment float64 `json:"max_monthly_repayment"`
	TenureMonths        int     `json:"tenure_months"`
	Recommendation      string  `json:"recommendation"`
}

type messageResponse struct {
	Message string `json:"message"`
}
